package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when caller-supplied data fails validation.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when a referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrNoReadingAvailable is returned when a risk assessment is requested
	// for a patient without any health readings.
	ErrNoReadingAvailable = errors.New("no health reading available")
	// ErrAssessmentFailed wraps a failure of the risk assessment that follows
	// a stored health reading.
	ErrAssessmentFailed = errors.New("risk assessment failed")
)

// ValidationError describes a single rejected field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports ErrInvalidInput so callers can branch with errors.Is.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
