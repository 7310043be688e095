package shared

import "errors"

// ErrorKind groups domain errors by how the terminal should react to them
type ErrorKind string

const (
	// KindValidation errors are rejected synchronously and never reach the network
	KindValidation ErrorKind = "VALIDATION"
	// KindNetwork errors are transient; the operator may retry
	KindNetwork ErrorKind = "NETWORK"
	// KindNotFound errors mean a referenced record no longer exists
	KindNotFound ErrorKind = "NOT_FOUND"
	// KindConflict errors mean the request clashes with current state
	KindConflict ErrorKind = "CONFLICT"
	// KindInternal is used for anything unclassified
	KindInternal ErrorKind = "INTERNAL"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string    `json:"code"`
	Message string    `json:"message"`
	Kind    ErrorKind `json:"kind"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new validation-kind domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    KindValidation,
	}
}

// NewDomainErrorOfKind creates a domain error with an explicit kind
func NewDomainErrorOfKind(kind ErrorKind, code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Kind:    kind,
	}
}

// Common domain errors
var (
	ErrNotFound     = NewDomainErrorOfKind(KindNotFound, "NOT_FOUND", "Resource not found")
	ErrInvalidInput = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrInvalidState = NewDomainErrorOfKind(KindConflict, "INVALID_STATE", "Operation not allowed in current state")
	ErrNetwork      = NewDomainErrorOfKind(KindNetwork, "NETWORK_ERROR", "Backend is unreachable, please retry")
	ErrTimeout      = NewDomainErrorOfKind(KindNetwork, "TIMEOUT", "Backend did not respond in time, please retry")
	ErrUpstream     = NewDomainErrorOfKind(KindNetwork, "UPSTREAM_ERROR", "Backend rejected the request")
)

// KindOf classifies an error chain. Errors that carry no DomainError are internal.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		if domainErr.Kind == "" {
			return KindValidation
		}
		return domainErr.Kind
	}
	return KindInternal
}

// IsTransient reports whether an error is worth a manual retry by the operator
func IsTransient(err error) bool {
	return KindOf(err) == KindNetwork
}
