package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of application error
type Kind string

const (
	// KindValidation represents malformed input or business-rule violations
	KindValidation Kind = "VALIDATION_ERROR"
	// KindAuthentication represents bad credentials or missing/invalid tokens
	KindAuthentication Kind = "AUTHENTICATION_ERROR"
	// KindNotFound represents absent entities, including access-scoped absence
	KindNotFound Kind = "NOT_FOUND"
	// KindConflict represents uniqueness violations
	KindConflict Kind = "CONFLICT"
	// KindServer represents unexpected infrastructure failures
	KindServer Kind = "SERVER_ERROR"
)

// Error is the application error type mapped onto HTTP responses
type Error struct {
	Kind    Kind
	Message string
	Field   string   // offending field for validation/conflict errors, if known
	Details []string // per-field messages for validation errors
	Err     error    // wrapped cause
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status for this error kind
func (e *Error) StatusCode() int {
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Validation creates a validation error
func Validation(message string, details ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: details}
}

// ValidationField creates a validation error naming the offending field
func ValidationField(field, message string) *Error {
	return &Error{Kind: KindValidation, Message: message, Field: field, Details: []string{message}}
}

// Authentication creates an authentication error
func Authentication(message string) *Error {
	return &Error{Kind: KindAuthentication, Message: message}
}

// NotFound creates a not-found error
func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

// Conflict creates a conflict error
func Conflict(message, field string) *Error {
	return &Error{Kind: KindConflict, Message: message, Field: field}
}

// Server wraps an unexpected failure
func Server(message string, err error) *Error {
	return &Error{Kind: KindServer, Message: message, Err: err}
}

// KindOf extracts the error kind, defaulting to KindServer for foreign errors
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindServer
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// AsError converts err into an *Error, wrapping foreign errors as server errors
func AsError(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Server("Internal server error", err)
}
