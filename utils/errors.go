package utils

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError couples an HTTP status with the message a caller is allowed
// to see. The wrapped cause stays server-side; it is logged at the
// boundary and never serialized into a response.
type AppError struct {
	Status  int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error { return e.Err }

// ValidationError reports malformed or insufficient input (400).
func ValidationError(message string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: message}
}

// NotFoundError reports a lookup that matched nothing (404).
func NotFoundError(message string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: message}
}

// ConflictError reports a duplicate unique field (409).
func ConflictError(message string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: message}
}

// UnauthorizedError reports a failed credential check (401).
func UnauthorizedError(message string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: message}
}

// ServerError wraps an internal failure behind a generic message (500).
func ServerError(err error) *AppError {
	return &AppError{Status: http.StatusInternalServerError, Message: SERVER_ERROR, Err: err}
}

// AsAppError returns err as an AppError, treating anything untyped as a
// server fault.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return ServerError(err)
}
