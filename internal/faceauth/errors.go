package faceauth

import (
	"errors"
	"fmt"
)

// ValidationError is a domain failure with a human-readable reason:
// bad input images, duplicate identities, unknown sessions. The transport
// layer maps these to client errors; anything else is a backend fault.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// IsValidationError reports whether err is a domain validation failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
