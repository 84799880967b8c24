package errors

import (
	"errors"
	"fmt"
)

// Common error types for the finance client
var (
	// Local validation errors
	ErrValidation  = errors.New("validation failed")
	ErrInvalidRole = errors.New("invalid role")

	// Session errors
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSessionExpired   = errors.New("session expired")

	// Screen errors
	ErrSubmissionInFlight = errors.New("submission already in flight")
	ErrCancelled          = errors.New("cancelled by user")

	// General errors
	ErrNotFound = errors.New("not found")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
