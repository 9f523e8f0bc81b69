package validation

import (
	"errors"
	"fmt"
)

// Error is a precondition failure detected before any network call.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func newError(field, format string, args ...any) *Error {
	return &Error{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds a validation error for callers outside this package.
func Errorf(field, format string, args ...any) error {
	return newError(field, format, args...)
}

// IsValidation reports whether err carries a *Error.
func IsValidation(err error) bool {
	var ve *Error
	return errors.As(err, &ve)
}
