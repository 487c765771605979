// Package catalog holds the value types and error kinds shared by every
// catalog entity (manufacturers, liquids, devices, components, stock).
package catalog

import (
	"errors"
	"fmt"
)

// Error kinds. Entity packages wrap these so callers can match with errors.Is
// without knowing which entity produced the failure.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
	ErrConflict  = errors.New("conflict")
)

var (
	ErrLinkExists   = fmt.Errorf("compatibility link %w", ErrConflict)
	ErrLinkNotFound = fmt.Errorf("device or component %w", ErrNotFound)
)

// ValidationError reports a single rejected input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Invalid is shorthand for returning a ValidationError.
func Invalid(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr ValidationError
	return errors.As(err, &verr)
}
