package services

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned by stores when no document matches.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUser is returned by stores on a unique index violation.
	ErrDuplicateUser = errors.New("duplicate user")
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgInvalidResetCode   = "Invalid or expired reset code"
	msgInternal           = "Server error, please try again later"
)

// ValidationError reports missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError reports a duplicate unique field.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError reports bad credentials. The message never says which part was
// wrong.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// InternalError wraps a store, hashing or signing failure. Its Error text is
// safe to show to callers; the cause is kept for logging.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string { return msgInternal }

func (e *InternalError) Unwrap() error { return e.Err }

// Cause renders the operation and underlying error for server logs.
func (e *InternalError) Cause() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func validation(msg string) error { return &ValidationError{Message: msg} }

func internal(op string, err error) error { return &InternalError{Op: op, Err: err} }

var errInvalidCredentials = &AuthError{Message: msgInvalidCredentials}

// HTTPStatus maps a service error to its response status and code.
func HTTPStatus(err error) (int, string) {
	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthError
	)
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, "VALIDATION_ERROR"
	case errors.As(err, &ce):
		return http.StatusConflict, "CONFLICT"
	case errors.As(err, &ae):
		return http.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, ErrUserNotFound):
		return http.StatusNotFound, "NOT_FOUND"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
