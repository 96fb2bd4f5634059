package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestValidationError_Unwrap(t *testing.T) {
	t.Parallel()

	err := NewValidationError("image", "must not be empty")
	if !errors.Is(err, ErrValidation) {
		t.Error("ValidationError should unwrap to ErrValidation")
	}
	if got := err.Error(); got != "validation: image: must not be empty" {
		t.Errorf("Error() = %q", got)
	}
}

func TestSentinelWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("estimate photo: %w", ErrInvalidModelOutput)
	if !errors.Is(wrapped, ErrInvalidModelOutput) {
		t.Error("wrapped error should match ErrInvalidModelOutput")
	}
	if errors.Is(wrapped, ErrModelUnavailable) {
		t.Error("wrapped error should not match ErrModelUnavailable")
	}
}
