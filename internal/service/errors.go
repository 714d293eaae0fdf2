package service

import "errors"

// ValidationError reports bad caller input; handlers map it to 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ErrNoDatabase is returned by operations that need persistence when none is configured.
var ErrNoDatabase = errors.New("database not configured")
