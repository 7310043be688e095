package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())
	assert.Equal(t, "v1", r.apiVersion)
	assert.Empty(t, r.registrars)

	r = NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "v2", r.apiVersion)
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()

	var order []string
	group := NewDomainGroup("cart", "/cart").Use(func(c *gin.Context) {
		order = append(order, "middleware")
		c.Next()
	})
	ok := func(name string) gin.HandlerFunc {
		return func(c *gin.Context) {
			order = append(order, name)
			c.String(http.StatusOK, name)
		}
	}
	group.GET("", ok("get")).
		POST("/items", ok("post")).
		PUT("/notes", ok("put")).
		PATCH("/items/:id", ok("patch")).
		DELETE("/items/:id", ok("delete"))
	group.Group("tenders", "/tenders").GET("", ok("sub"))

	NewRouter(engine).Register(group).Setup()

	tests := []struct {
		method string
		path   string
		want   string
	}{
		{http.MethodGet, "/api/v1/cart", "get"},
		{http.MethodPost, "/api/v1/cart/items", "post"},
		{http.MethodPut, "/api/v1/cart/notes", "put"},
		{http.MethodPatch, "/api/v1/cart/items/1", "patch"},
		{http.MethodDelete, "/api/v1/cart/items/1", "delete"},
		{http.MethodGet, "/api/v1/cart/tenders", "sub"},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			order = nil
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.want, w.Body.String())
			assert.Equal(t, []string{"middleware", tt.want}, order)
		})
	}

	assert.Equal(t, "cart", group.Name())
}
