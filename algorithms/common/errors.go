package common

import (
	"errors"
	"fmt"
)

// ErrInvalidInput marks caller contract violations: empty buffers, mismatched shapes,
// non-positive sizes, malformed configuration. These are never patched silently.
var ErrInvalidInput = errors.New("invalid input")

// InvalidInputError describes which operation rejected its input and why
type InvalidInputError struct {
	Op     string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Op, ErrInvalidInput, e.Reason)
}

func (e *InvalidInputError) Unwrap() error {
	return ErrInvalidInput
}

// InvalidInput creates an InvalidInputError with a formatted reason
func InvalidInput(op, format string, args ...any) error {
	return &InvalidInputError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// IsInvalidInput reports whether err is or wraps ErrInvalidInput
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
