package domain

import (
	"errors"
	"strings"
)

// Storage errors.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
)

// Protocol and surface errors.
var (
	// ErrUnknownMessage is returned for protocol messages whose kind is not recognised.
	ErrUnknownMessage = errors.New("unknown message")
	// ErrSurfaceClosed is returned when a delivery targets a display surface that is gone.
	ErrSurfaceClosed = errors.New("display surface closed")
	// ErrNoRequest is returned when an operation needs a previous analysis request.
	ErrNoRequest = errors.New("no analysis request")
)

// FieldError is one rejected field of a message or request.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string { return f.Field + ": " + f.Message }

// ValidationError collects every rejected field. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, f := range e.Errors {
		parts[i] = f.String()
	}
	return "validation: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
