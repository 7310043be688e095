package dto

import (
	"context"
	"errors"
	"net/http"

	"github.com/erp/pos/internal/domain/shared"
)

// Error codes produced by the HTTP layer itself. Domain errors keep their own codes.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeNotFound        = "ERR_NOT_FOUND"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
	ErrCodeCanceled        = "ERR_CANCELED"
)

// kindHTTPStatus maps error kinds to HTTP status codes
var kindHTTPStatus = map[shared.ErrorKind]int{
	shared.KindValidation: http.StatusUnprocessableEntity,
	shared.KindNotFound:   http.StatusNotFound,
	shared.KindConflict:   http.StatusConflict,
	shared.KindNetwork:    http.StatusServiceUnavailable,
	shared.KindInternal:   http.StatusInternalServerError,
}

// codeHTTPStatus overrides the kind mapping for specific codes
var codeHTTPStatus = map[string]int{
	shared.ErrTimeout.Code:  http.StatusGatewayTimeout,
	shared.ErrUpstream.Code: http.StatusBadGateway,
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeValidation:       http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status for a domain error kind and code.
// Unknown kinds map to 500.
func GetHTTPStatus(kind shared.ErrorKind, code string) int {
	if status, ok := codeHTTPStatus[code]; ok {
		return status
	}
	if status, ok := kindHTTPStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorBody classifies err into a status code and response payload.
// Errors without a DomainError in their chain are reported as internal
// and their text is not exposed.
func ErrorBody(err error, requestID string) (int, Response) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		kind := shared.KindOf(domainErr)
		resp := NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID)
		resp.Error.Kind = string(kind)
		resp.Error.Retryable = kind == shared.KindNetwork
		return GetHTTPStatus(kind, domainErr.Code), resp
	}
	if errors.Is(err, context.Canceled) {
		// nginx convention for a client that went away
		return 499, NewErrorResponseWithRequestID(ErrCodeCanceled, "Request canceled", requestID)
	}
	resp := NewErrorResponseWithRequestID(ErrCodeInternal, "An unexpected error occurred", requestID)
	resp.Error.Kind = string(shared.KindInternal)
	return http.StatusInternalServerError, resp
}
