// Package errors defines the sentinel errors shared by every feature module.
// Domain packages wrap these sentinels with business context and the HTTP
// layer maps them to status codes, so callers branch on intent instead of
// infrastructure details.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates a clash with existing state, such as a duplicate
	// key or a lost optimistic concurrency race.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or invalid authentication credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller lacks permission for the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable indicates a required external dependency is temporarily
	// unavailable and the operation may succeed if retried later.
	ErrUnavailable = errors.New("service unavailable")
)

// New creates an error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap adds context to err while preserving the error chain. Returns nil when
// err is nil so call sites can wrap unconditionally.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
