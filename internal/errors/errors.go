package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypePayloadTooLarge  ErrorType = "payload_too_large"
	ErrorTypeInvalidBuffer    ErrorType = "invalid_buffer"
	ErrorTypeUnsupportedMedia ErrorType = "unsupported_media"
	ErrorTypeNetwork          ErrorType = "network"
	ErrorTypeProcessing       ErrorType = "processing"
	ErrorTypeTimeout          ErrorType = "timeout"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches a human readable detail string and returns the same error.
func (e *AppError) WithDetails(format string, args ...interface{}) *AppError {
	e.Details = fmt.Sprintf(format, args...)
	return e
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewPayloadTooLargeError creates an error for request bodies over the size limit
func NewPayloadTooLargeError(message string, cause error) *AppError {
	return newAppError(ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge, message, cause)
}

// NewInvalidBufferError reports a pixel buffer whose length disagrees with its
// declared dimensions. It is raised before any scan starts.
func NewInvalidBufferError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInvalidBuffer, http.StatusUnprocessableEntity, message, cause)
}

// NewUnsupportedMediaError creates an error for payloads that cannot be decoded as images
func NewUnsupportedMediaError(message string, cause error) *AppError {
	return newAppError(ErrorTypeUnsupportedMedia, http.StatusUnsupportedMediaType, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// IsType checks if the error, or any error it wraps, is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
