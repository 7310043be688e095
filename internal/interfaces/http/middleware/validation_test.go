package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/pos/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type customerBody struct {
	FirstName string `json:"first_name" binding:"required,max=5"`
	Email     string `json:"email" binding:"omitempty,email"`
}

func newValidationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/customers", func(c *gin.Context) {
		c.Set(RequestIDKey, "req-42")
		var req customerBody
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(req))
	})
	return router
}

func TestHandleValidationError(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name        string
		body        string
		wantStatus  int
		wantCode    string
		wantDetails []dto.ValidationDetail
	}{
		{
			name:       "field errors use json names",
			body:       `{"first_name": "", "email": "nope"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantDetails: []dto.ValidationDetail{
				{Field: "first_name", Message: "This field is required"},
				{Field: "email", Message: "Invalid email format"},
			},
		},
		{
			name:       "string length",
			body:       `{"first_name": "Alexandra"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeValidation,
			wantDetails: []dto.ValidationDetail{
				{Field: "first_name", Message: "Must be at most 5 characters"},
			},
		},
		{
			name:       "malformed json",
			body:       `{"first_name":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   dto.ErrCodeBadRequest,
		},
		{
			name:       "valid",
			body:       `{"first_name": "Ana"}`,
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode == "" {
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-42", resp.Error.RequestID)
			assert.Equal(t, tt.wantDetails, resp.Error.Details)
		})
	}
}

func TestRequestIDFrom(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, RequestIDFrom(c))

	c.Request.Header.Set("X-Request-ID", "from-header")
	assert.Equal(t, "from-header", RequestIDFrom(c))

	c.Set(RequestIDKey, "from-logger")
	assert.Equal(t, "from-logger", RequestIDFrom(c))
}
