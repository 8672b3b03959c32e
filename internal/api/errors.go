package api

import (
	"fmt"
	"net/http"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ErrorCode represents error codes used in API responses
type ErrorCode string

const (
	// ErrorCodeInvalidRequest represents invalid request parameters
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"

	// ErrorCodeNotFound represents a not found error
	ErrorCodeNotFound ErrorCode = "NOT_FOUND"

	// ErrorCodeConflict represents an operation rejected by a graph invariant
	ErrorCodeConflict ErrorCode = "CONFLICT"

	// ErrorCodeUpstreamError represents a failed backend fetch
	ErrorCodeUpstreamError ErrorCode = "UPSTREAM_ERROR"

	// ErrorCodeInternalError represents an internal server error
	ErrorCodeInternalError ErrorCode = "INTERNAL_ERROR"
)

// APIError represents an API error with status code and message
type APIError struct {
	Code       ErrorCode
	StatusCode int
	Message    string
}

// NewAPIError creates a new API error
func NewAPIError(code ErrorCode, statusCode int, message string) *APIError {
	return &APIError{
		Code:       code,
		StatusCode: statusCode,
		Message:    message,
	}
}

// Error returns the error message
func (e *APIError) Error() string {
	return e.Message
}

// GetResponse returns the error response
func (e *APIError) GetResponse() ErrorResponse {
	return ErrorResponse{
		Error:   string(e.Code),
		Message: e.Message,
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string, args ...interface{}) *APIError {
	return NewAPIError(
		ErrorCodeInvalidRequest,
		http.StatusBadRequest,
		fmt.Sprintf(message, args...),
	)
}

// NewNotFoundError creates a not found error
func NewNotFoundError(message string, args ...interface{}) *APIError {
	return NewAPIError(
		ErrorCodeNotFound,
		http.StatusNotFound,
		fmt.Sprintf(message, args...),
	)
}

// NewConflictError creates a conflict error
func NewConflictError(message string, args ...interface{}) *APIError {
	return NewAPIError(
		ErrorCodeConflict,
		http.StatusConflict,
		fmt.Sprintf(message, args...),
	)
}

// NewInternalServerError creates an internal server error
func NewInternalServerError(message string, args ...interface{}) *APIError {
	return NewAPIError(
		ErrorCodeInternalError,
		http.StatusInternalServerError,
		fmt.Sprintf(message, args...),
	)
}
