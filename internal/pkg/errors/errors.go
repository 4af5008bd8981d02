// Package errors provides the client-facing API error set.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// APIError is the error half of the response envelope.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Details    any    `json:"details,omitempty"`
}

func newAPIError(status int, code, message string) *APIError {
	return &APIError{Code: code, Message: message, StatusCode: status}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error with a custom message.
func (e *APIError) WithMessage(message string) *APIError {
	c := *e
	c.Message = message
	return &c
}

// WithDetails returns a copy of the error carrying details.
func (e *APIError) WithDetails(details any) *APIError {
	c := *e
	c.Details = details
	return &c
}

var (
	ErrBadRequest         = newAPIError(http.StatusBadRequest, "bad_request", "Invalid request")
	ErrUnauthorized       = newAPIError(http.StatusUnauthorized, "unauthorized", "Please sign in")
	ErrForbidden          = newAPIError(http.StatusForbidden, "forbidden", "You don't have permission to perform this action")
	ErrNotFound           = newAPIError(http.StatusNotFound, "not_found", "Resource not found")
	ErrRateLimited        = newAPIError(http.StatusTooManyRequests, "rate_limited", "Too many requests. Please try again later.")
	ErrQuotaExceeded      = newAPIError(http.StatusTooManyRequests, "quota_exceeded", "Daily limit reached. It resets at midnight UTC.")
	ErrInternal           = newAPIError(http.StatusInternalServerError, "internal_error", "An internal error occurred")
	ErrServiceUnavailable = newAPIError(http.StatusServiceUnavailable, "service_unavailable", "Service temporarily unavailable")
)

// NewValidationError reports a single invalid field.
func NewValidationError(field, message string) *APIError {
	return newAPIError(http.StatusBadRequest, "validation_error", "Validation failed: "+message).
		WithDetails(map[string]string{"field": field, "error": message})
}

// NewValidationErrors reports several invalid fields keyed by name.
func NewValidationErrors(fields map[string]string) *APIError {
	return newAPIError(http.StatusBadRequest, "validation_error", "One or more fields failed validation").
		WithDetails(fields)
}

// NewNotFoundError names the missing resource.
func NewNotFoundError(resource string) *APIError {
	return newAPIError(http.StatusNotFound, "not_found", resource+" not found")
}

// NewQuotaExceededError names the daily ceiling that was hit.
func NewQuotaExceededError(used, limit int) *APIError {
	msg := fmt.Sprintf("Daily message limit of %d reached. It resets at midnight UTC.", limit)
	return ErrQuotaExceeded.WithMessage(msg).WithDetails(map[string]int{"used": used, "limit": limit})
}

// AsAPIError unwraps err to its APIError, or ErrInternal when there is none.
func AsAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}
	return ErrInternal
}
