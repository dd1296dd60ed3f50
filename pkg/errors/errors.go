package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors for boundary translation
type ErrorCode int

const (
	CodeValidation ErrorCode = iota + 1000
	CodeUnauthenticated
	CodeForbidden
	CodeNotFound
	CodeConflict
	CodeInternal
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode         `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
	Err     error             `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Code extracts the ErrorCode from any error, defaulting to CodeInternal.
func Code(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// Validation rejects malformed input; fields carries per-field detail.
func Validation(message string, fields map[string]string) *AppError {
	return &AppError{
		Code:    CodeValidation,
		Message: message,
		Fields:  fields,
	}
}

// Unauthenticated means no caller identity could be resolved.
func Unauthenticated(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthenticated,
		Message: message,
	}
}

// Forbidden means the caller is authenticated but lacks a required role.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    CodeForbidden,
		Message: message,
	}
}

// NotFound is the uniform precondition-failure class: a record that does not
// exist, belongs to another caller, or is in the wrong state all produce the
// same error so nothing leaks about other callers' records.
func NotFound(message string) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: message,
	}
}

// Conflict rejects a duplicate unique value submitted by the caller.
func Conflict(message string) *AppError {
	return &AppError{
		Code:    CodeConflict,
		Message: message,
	}
}

// Internal wraps an unexpected failure; the message shown to clients is generic.
func Internal(err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: "internal server error",
		Err:     err,
	}
}
