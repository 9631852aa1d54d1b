package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// NewInvalidIdentifierError is returned when a path id is not an integer
func NewInvalidIdentifierError(raw string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidIdentifier,
		Message: "Invalid task ID",
		Code:    "INVALID_IDENTIFIER",
		Context: map[string]interface{}{
			"identifier": raw,
		},
	}
}

// NewInvalidPayloadError wraps a request body decoding failure
func NewInvalidPayloadError(cause error) *AppError {
	msg := "Invalid task data"
	if cause != nil {
		msg = fmt.Sprintf("Invalid task data: %v", cause)
	}
	return &AppError{
		Type:    ErrorTypeInvalidPayload,
		Message: msg,
		Code:    "INVALID_PAYLOAD",
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(id int) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: "Task not found",
		Code:    "NOT_FOUND",
		Context: map[string]interface{}{
			"id": id,
		},
	}
}

// NewDuplicateIdentifierError is returned when create meets an existing id
func NewDuplicateIdentifierError(id int) *AppError {
	return &AppError{
		Type:    ErrorTypeDuplicateIdentifier,
		Message: "Task with this ID already exists",
		Code:    "DUPLICATE_IDENTIFIER",
		Context: map[string]interface{}{
			"id": id,
		},
	}
}

// NewStorageError creates a new storage backend error
func NewStorageError(operation string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStorage,
		Message: fmt.Sprintf("storage operation failed: %s", operation),
		Code:    "STORAGE_ERROR",
		Cause:   cause,
		Context: map[string]interface{}{
			"operation": operation,
		},
	}
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsErrorType checks if the error is of the specified type
func IsErrorType(err error, errorType ErrorType) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.IsType(errorType)
	}
	return false
}

// HTTPStatus maps any error to a response status. Unknown errors are 500.
func HTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Type.HTTPStatus()
	}
	return http.StatusInternalServerError
}

// GetUserMessage returns a message safe to show to the client
func GetUserMessage(err error) string {
	if appErr, ok := AsAppError(err); ok {
		if appErr.Type == ErrorTypeStorage {
			return "Internal server error"
		}
		return appErr.Message
	}
	return "Internal server error"
}

// GetErrorCode returns the error code for the error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return "UNKNOWN_ERROR"
}

// ShouldLogError reports whether the error is a system error rather than a bad request
func ShouldLogError(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		switch appErr.Type {
		case ErrorTypeInvalidIdentifier, ErrorTypeInvalidPayload,
			ErrorTypeNotFound, ErrorTypeDuplicateIdentifier:
			return false
		}
	}
	return true
}
