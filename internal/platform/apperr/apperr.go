// Package apperr defines the two failure kinds every operation can surface:
// validation failures, which are recoverable user-input errors, and
// persistence failures, which mean the store rejected a write or read.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a patient or test does not exist in the store.
var ErrNotFound = errors.New("not found")

// ValidationError reports a required-field or format check failure. The
// triggering operation is aborted with no partial effect.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError from a format string.
func Validation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// PersistenceError reports that the store rejected an operation, e.g. a
// constraint violation or a connection failure. In-memory state is left
// unchanged because the failing write never committed.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *PersistenceError) Unwrap() error { return e.Err }

// Persistence wraps a store error with the failing operation name.
func Persistence(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is (or wraps) a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
