package errors

import (
	"errors"
	"fmt"
)

// Common error types for the inventory client
var (
	// Session errors
	ErrNotLoggedIn    = errors.New("not logged in")
	ErrSessionExpired = errors.New("session expired")

	// Token errors
	ErrInvalidToken = errors.New("invalid token")

	// Storage errors
	ErrNotFound = errors.New("not found")
	ErrCorrupt  = errors.New("corrupt stored value")

	// Request errors
	ErrInvalidRequest  = errors.New("invalid request")
	ErrUnexpectedReply = errors.New("unexpected response")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
