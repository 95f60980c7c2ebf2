package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy. Every mutating operation either fully applies or returns
// one of these; handlers map them to HTTP statuses.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidState = errors.New("operation not allowed in current state")
	ErrConflict     = errors.New("concurrent modification detected")
	ErrIneligible   = errors.New("business precondition not met")
	ErrDeclined     = errors.New("payment declined")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports malformed or incomplete input, naming the
// offending field so the caller can render a specific message.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidationError reports whether err is (or wraps) a ValidationError and
// returns it for field extraction.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
