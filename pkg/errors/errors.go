// Package errors provides common domain error types for lingomeet.
//
// This package defines sentinel errors for common domain conditions like
// "not found" or "invalid state" that can be used across all packages. Using
// typed errors enables consistent error handling patterns with errors.Is()
// checks.
//
// Usage:
//
//	import lmerrors "github.com/lingomeet/lingomeet/pkg/errors"
//
//	// Return a domain error
//	return nil, lmerrors.ErrNotFound
//
//	// Check for domain errors
//	if lmerrors.IsNotFound(err) {
//	    // handle not found case
//	}
package errors

import (
	"errors"
	"fmt"
)

// Domain errors - common sentinel errors for domain conditions.
var (
	// ErrNotFound indicates the requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrValidation indicates invalid input or validation failure.
	ErrValidation = errors.New("validation error")

	// ErrInvalidState indicates the operation is not valid for the current state.
	ErrInvalidState = errors.New("invalid state")

	// ErrUnsupported indicates a required capability is unavailable.
	ErrUnsupported = errors.New("capability unsupported")

	// ErrConflict indicates a conflict with existing data (e.g., duplicate key).
	ErrConflict = errors.New("conflict")
)

// IsNotFound reports whether any error in err's chain is ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation reports whether any error in err's chain is ErrValidation.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidState reports whether any error in err's chain is ErrInvalidState.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState)
}

// IsUnsupported reports whether any error in err's chain is ErrUnsupported.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnsupported)
}

// IsConflict reports whether any error in err's chain is ErrConflict.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// Validation wraps ErrValidation with a formatted message.
func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}

// InvalidTransitionError reports an illegal meeting lifecycle transition.
// It identifies the current and the requested status so callers can render
// a precise message.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s -> %s", e.From, e.To)
}

// Unwrap makes the error match ErrInvalidState via errors.Is.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidState
}

// TransientError marks a failure as retryable. The translation pipeline and
// other remote-call sites use it to decide between retry and permanent
// failure.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + ": transient failure"
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// Transient wraps err as a retryable failure of the named operation.
func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

// IsTransient reports whether any error in err's chain is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
