// Package reschedule computes new intervals for records and applies them to
// the record store with optimistic update and rollback.
package reschedule

import (
	"context"
	"errors"
)

var (
	// ErrInvalidTarget is returned for a target slot in the past or outside the window.
	ErrInvalidTarget = errors.New("invalid reschedule target")
	// ErrPersistenceFailure wraps a store error after the in-memory change was rolled back.
	ErrPersistenceFailure = errors.New("failed to persist reschedule")
	// ErrRecordNotFound is returned when the record is not in the working set.
	ErrRecordNotFound = errors.New("record not found")
)

// ErrorKind returns a short label for err, for log fields and exit messages.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTarget):
		return "invalid_target"
	case errors.Is(err, ErrRecordNotFound):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence_failure"
	default:
		return "unknown"
	}
}
