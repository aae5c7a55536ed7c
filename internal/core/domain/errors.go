// Package domain provides canonical error types for the service layer.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of an API error.
type ErrorType string

const (
	// ErrorTypeInvalidRequest indicates a malformed or invalid request.
	ErrorTypeInvalidRequest ErrorType = "invalid_request"

	// ErrorTypeForbidden indicates the operation is not permitted on the target.
	ErrorTypeForbidden ErrorType = "forbidden"

	// ErrorTypeNotFound indicates a resource was not found.
	ErrorTypeNotFound ErrorType = "not_found"

	// ErrorTypeMethodNotAllowed indicates the service does not expose the method.
	ErrorTypeMethodNotAllowed ErrorType = "method_not_allowed"

	// ErrorTypeConflict indicates the request conflicts with the record's state.
	ErrorTypeConflict ErrorType = "conflict"

	// ErrorTypeServer indicates an internal server error.
	ErrorTypeServer ErrorType = "server"
)

// ErrorCode provides additional specificity beyond the error type.
type ErrorCode string

const (
	ErrorCodeProofRevoked       ErrorCode = "proof_revoked"
	ErrorCodeProofNotFound      ErrorCode = "proof_not_found"
	ErrorCodeInvalidTransition  ErrorCode = "invalid_status_transition"
	ErrorCodeRevocationUnknown  ErrorCode = "revocation_status_unknown"
	ErrorCodeMissingID          ErrorCode = "missing_id"
	ErrorCodeValidation         ErrorCode = "validation_failed"
	ErrorCodeUnsupportedPayload ErrorCode = "unsupported_payload"
)

// APIError represents a canonical API error that services and hooks return and
// the transport renders.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Code is an optional specific error code
	Code ErrorCode `json:"code,omitempty"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Param is the field that caused the error (if applicable)
	Param string `json:"param,omitempty"`

	// StatusCode is the suggested HTTP status code
	StatusCode int `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorTypeConflict:
		return http.StatusConflict
	case ErrorTypeServer:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithCode adds an error code to the error.
func (e *APIError) WithCode(code ErrorCode) *APIError {
	e.Code = code
	return e
}

// WithParam adds a parameter name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// Convenience constructors for common errors

// ErrInvalidRequest creates an invalid request error.
func ErrInvalidRequest(message string) *APIError {
	return NewAPIError(ErrorTypeInvalidRequest, message)
}

// ErrForbidden creates a forbidden error.
func ErrForbidden(message string) *APIError {
	return NewAPIError(ErrorTypeForbidden, message)
}

// ErrNotFound creates a not found error.
func ErrNotFound(message string) *APIError {
	return NewAPIError(ErrorTypeNotFound, message)
}

// ErrMethodNotAllowed creates a method not allowed error.
func ErrMethodNotAllowed(message string) *APIError {
	return NewAPIError(ErrorTypeMethodNotAllowed, message)
}

// ErrConflict creates a conflict error.
func ErrConflict(message string) *APIError {
	return NewAPIError(ErrorTypeConflict, message)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}

// ErrProofRevoked creates the error returned when a write targets a revoked proof.
func ErrProofRevoked(id, reason string) *APIError {
	msg := fmt.Sprintf("vaccine proof %s has been revoked", id)
	if reason != "" {
		msg += ": " + reason
	}
	return ErrForbidden(msg).WithCode(ErrorCodeProofRevoked)
}

// AsAPIError returns the first *APIError in err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsRevoked returns true if the cause of the error is a write against a revoked proof.
func IsRevoked(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Code == ErrorCodeProofRevoked
}

// IsNotFound returns true if the cause of the error is a missing record.
func IsNotFound(err error) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type == ErrorTypeNotFound
}
