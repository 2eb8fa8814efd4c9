// Package apperrors defines the error taxonomy shared by the storefront services.
package apperrors

import "errors"

// Error kinds. Callers match them with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrAccountNotFound    = errors.New("account not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrStorage            = errors.New("storage failure")
)

// Error carries a kind, a message that is safe to show to a client and an optional cause.
type Error struct {
	Kind    error
	Message string
	Err     error
}

// New returns an *Error of the given kind.
func New(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Wrap returns an *Error of the given kind wrapping cause.
func Wrap(kind error, message string, cause error) error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Validation is shorthand for New(ErrValidation, message).
func Validation(message string) error {
	return New(ErrValidation, message)
}

// Storage wraps a persistence error. The cause is never shown to clients.
func Storage(message string, cause error) error {
	return Wrap(ErrStorage, message, cause)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// Message returns the client-safe message of err, or fallback when err carries none.
func Message(err error, fallback string) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
