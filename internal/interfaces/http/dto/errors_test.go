package dto

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/erp/pos/internal/domain/checkout"
	"github.com/erp/pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		kind     shared.ErrorKind
		code     string
		expected int
	}{
		{shared.KindValidation, "EMPTY_CART", http.StatusUnprocessableEntity},
		{shared.KindNotFound, "PRODUCT_NOT_FOUND", http.StatusNotFound},
		{shared.KindConflict, "CHECKOUT_IN_PROGRESS", http.StatusConflict},
		{shared.KindNetwork, "NETWORK_ERROR", http.StatusServiceUnavailable},
		{shared.KindNetwork, "TIMEOUT", http.StatusGatewayTimeout},
		{shared.KindNetwork, "UPSTREAM_ERROR", http.StatusBadGateway},
		{shared.KindInternal, "HTTP_418", http.StatusInternalServerError},
		{"", ErrCodeBadRequest, http.StatusBadRequest},
		{"SOMETHING_ELSE", "X", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.kind, tt.code))
		})
	}
}

func TestErrorBody(t *testing.T) {
	t.Run("wrapped domain error keeps its code", func(t *testing.T) {
		err := fmt.Errorf("complete sale: %w", shared.ErrTimeout)
		status, resp := ErrorBody(err, "req-1")

		assert.Equal(t, http.StatusGatewayTimeout, status)
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "TIMEOUT", resp.Error.Code)
		assert.Equal(t, "NETWORK", resp.Error.Kind)
		assert.True(t, resp.Error.Retryable)
		assert.Equal(t, "req-1", resp.Error.RequestID)
	})

	t.Run("validation error is not retryable", func(t *testing.T) {
		status, resp := ErrorBody(checkout.ErrPaymentIncomplete, "")
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "PAYMENT_INCOMPLETE", resp.Error.Code)
		assert.False(t, resp.Error.Retryable)
	})

	t.Run("plain error is hidden", func(t *testing.T) {
		status, resp := ErrorBody(errors.New("db path /var/lib/pos is locked"), "")
		assert.Equal(t, http.StatusInternalServerError, status)
		assert.Equal(t, ErrCodeInternal, resp.Error.Code)
		assert.NotContains(t, resp.Error.Message, "/var/lib")
	})

	t.Run("canceled request", func(t *testing.T) {
		status, resp := ErrorBody(context.Canceled, "")
		assert.Equal(t, 499, status)
		assert.Equal(t, ErrCodeCanceled, resp.Error.Code)
	})
}

func TestNewValidationErrorResponse(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "r", []ValidationDetail{{Field: "phone", Message: "This field is required"}})
	assert.False(t, resp.Success)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Len(t, resp.Error.Details, 1)
}
