package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")

	// ErrNotConfigured is returned when a component is constructed without
	// required credentials (e.g. the model provider API key is empty).
	ErrNotConfigured = errors.New("not configured")

	// ErrModelUnavailable wraps transport failures talking to the model
	// provider: network errors, timeouts, auth rejection, provider outage.
	ErrModelUnavailable = errors.New("model provider unavailable")

	// ErrInvalidModelOutput is returned when the model's reply cannot be
	// parsed into the expected structure. It is surfaced immediately and
	// never retried: re-asking the same ambiguous prompt rarely helps.
	ErrInvalidModelOutput = errors.New("invalid model output")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}
