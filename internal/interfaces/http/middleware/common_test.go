package middleware

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

func newCORSRouter(cfg CORSConfig) *gin.Engine {
	router := gin.New()
	router.Use(CORSWithConfig(cfg))
	router.GET("/state", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return router
}

func TestCORSWithConfig(t *testing.T) {
	tests := []struct {
		name       string
		cfg        CORSConfig
		method     string
		origin     string
		wantStatus int
		wantOrigin string
	}{
		{
			name:       "same-origin only ignores cross-origin request",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodGet,
			origin:     "http://malicious.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "request without origin passes",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
		},
		{
			name:       "allowed origin",
			cfg:        DefaultCORSConfig("http://localhost:5173"),
			method:     http.MethodGet,
			origin:     "http://localhost:5173",
			wantStatus: http.StatusOK,
			wantOrigin: "http://localhost:5173",
		},
		{
			name:       "origin not in list",
			cfg:        DefaultCORSConfig("http://localhost:5173"),
			method:     http.MethodGet,
			origin:     "http://other.example",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wildcard",
			cfg:        DefaultCORSConfig("*"),
			method:     http.MethodGet,
			origin:     "app://pos-shell",
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:       "preflight is answered without reaching handlers",
			cfg:        DefaultCORSConfig("http://localhost:5173"),
			method:     http.MethodOptions,
			origin:     "http://localhost:5173",
			wantStatus: http.StatusNoContent,
			wantOrigin: "http://localhost:5173",
		},
		{
			name:       "preflight from unknown origin gets no headers",
			cfg:        DefaultCORSConfig(),
			method:     http.MethodOptions,
			origin:     "http://other.example",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/state", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()
			newCORSRouter(tt.cfg).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			if tt.wantOrigin != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "X-Request-ID")
				assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
			}
		})
	}
}

func TestCORSWithConfig_Credentials(t *testing.T) {
	cfg := DefaultCORSConfig("http://localhost:5173")
	cfg.AllowCredentials = true

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	newCORSRouter(cfg).ServeHTTP(w, req)
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	cfg = DefaultCORSConfig("*")
	cfg.AllowCredentials = true
	w = httptest.NewRecorder()
	newCORSRouter(cfg).ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestNoStore(t *testing.T) {
	router := gin.New()
	router.Use(NoStore())
	router.GET("/state", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/state", nil))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
}
