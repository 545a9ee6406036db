// Package apperrors defines the error kinds surfaced by the catalog and
// auth packages and maps each of them to an HTTP status.
//
// Services return typed errors, handlers match them with errors.Is:
//
//	if errors.Is(err, apperrors.ErrPermissionDenied) {
//	    ...
//	}
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a machine-readable error code.
type Code string

const (
	CodeValidation       Code = "VALIDATION"
	CodePermissionDenied Code = "PERMISSION_DENIED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeTooManyRequests  Code = "TOO_MANY_REQUESTS"
	CodeConflict         Code = "CONFLICT"
)

// PermissionDeniedMessage is returned verbatim to clients that may not modify a book.
const PermissionDeniedMessage = "You do not have permission to perform this action."

// HTTPStatus returns the HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message and optional field details.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error carrying the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying per-field messages.
func (e *Error) WithDetails(details map[string]string) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: details, cause: e.cause}
}

// WithCause returns a copy of the error wrapping err.
func (e *Error) WithCause(err error) *Error {
	return &Error{Code: e.Code, Message: e.Message, Details: e.Details, cause: err}
}

// Sentinels for errors.Is.
var (
	ErrValidation       = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrPermissionDenied = &Error{Code: CodePermissionDenied, Message: PermissionDeniedMessage}
	ErrNotFound         = &Error{Code: CodeNotFound, Message: "not found"}
	ErrUnauthorized     = &Error{Code: CodeUnauthorized, Message: "authentication required"}
	ErrTooManyRequests  = &Error{Code: CodeTooManyRequests, Message: "too many requests"}
)

// Validation creates a validation error for a single field.
func Validation(field, msg string) *Error {
	return ErrValidation.WithDetails(map[string]string{field: msg})
}

// ValidationWithDetails creates a validation error for several fields at once.
func ValidationWithDetails(details map[string]string) *Error {
	return ErrValidation.WithDetails(details)
}

// NotFound creates a not found error naming the missing resource.
func NotFound(resource string) *Error {
	return &Error{Code: CodeNotFound, Message: resource + " not found"}
}

// Conflict creates an error for a request that clashes with work in progress.
func Conflict(msg string) *Error {
	return &Error{Code: CodeConflict, Message: msg}
}

// PermissionDenied creates a permission error with the standard client message.
func PermissionDenied() *Error {
	return &Error{Code: CodePermissionDenied, Message: PermissionDeniedMessage}
}

// StatusOf returns the HTTP status for err, or 500 when err is not a domain error.
func StatusOf(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.HTTPStatus()
	}
	return http.StatusInternalServerError
}
