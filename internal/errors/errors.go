package errors

import (
	"errors"
	"fmt"
)

// Common error types shared across the mail server packages
var (
	// Request errors
	ErrInvalidRequest = errors.New("invalid request")
	ErrUnauthorized   = errors.New("unauthorized")

	// General errors
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
