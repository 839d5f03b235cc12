package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for run-level failure classification
var (
	// ErrPanelUnavailable wraps a panel-lookup failure for a panel that is
	// not blacklisted. Silent omission would corrupt gene-set comparisons,
	// so this aborts the run.
	ErrPanelUnavailable = errors.New("panel unavailable from panel source")

	// ErrMalformedIndication marks an indication key without the expected
	// code_name structure. Logged and skipped, never fatal.
	ErrMalformedIndication = errors.New("malformed indication key")
)

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
