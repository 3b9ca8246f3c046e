package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a calculation input was rejected
type ErrorKind string

const (
	KindMissingInput      ErrorKind = "missing_input"
	KindOrderingViolation ErrorKind = "ordering_violation"
	KindNonPositiveValue  ErrorKind = "non_positive_value"
)

// Sentinel errors matched with errors.Is against a *ValidationError
var (
	ErrMissingInput      = errors.New("missing input")
	ErrOrderingViolation = errors.New("ordering violation")
	ErrNonPositiveValue  = errors.New("non-positive value")
)

// ValidationError reports the first input check that failed for a calculation.
// No partial result accompanies it.
type ValidationError struct {
	Kind    ErrorKind `json:"kind"`
	Field   string    `json:"field"`
	Message string    `json:"message"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, e.Field, e.Message)
}

// Unwrap maps the kind onto its sentinel error
func (e *ValidationError) Unwrap() error {
	switch e.Kind {
	case KindMissingInput:
		return ErrMissingInput
	case KindOrderingViolation:
		return ErrOrderingViolation
	case KindNonPositiveValue:
		return ErrNonPositiveValue
	default:
		return nil
	}
}

// NewMissingInput creates a MissingInput error for a field
func NewMissingInput(field, message string) *ValidationError {
	return &ValidationError{Kind: KindMissingInput, Field: field, Message: message}
}

// NewOrderingViolation creates an OrderingViolation error for a field
func NewOrderingViolation(field, message string) *ValidationError {
	return &ValidationError{Kind: KindOrderingViolation, Field: field, Message: message}
}

// NewNonPositiveValue creates a NonPositiveValue error for a field
func NewNonPositiveValue(field, message string) *ValidationError {
	return &ValidationError{Kind: KindNonPositiveValue, Field: field, Message: message}
}

// AsValidationError extracts a *ValidationError from err, if any
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
