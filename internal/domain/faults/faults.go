package faults

import (
	"context"
	"errors"
	"fmt"
)

// Shared error taxonomy for the RAG pipeline. Lower layers classify once,
// callers decide the retry policy.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrEmptyIndex    = errors.New("vector index is empty")
)

// DimensionMismatchError is returned when an embedding's dimension disagrees
// with the index's configured dimension. Rejected at insertion.
type DimensionMismatchError struct {
	Want int
	Got  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("embedding dimension mismatch: index wants %d, got %d", e.Want, e.Got)
}

// TransientError marks provider failures the caller may retry with backoff:
// rate limits, 5xx responses, timeouts.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: transient provider error: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// PermanentError marks provider failures that must not be retried:
// malformed input, auth failures.
type PermanentError struct {
	Op  string
	Err error
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("%s: permanent provider error: %v", e.Op, e.Err)
}

func (e *PermanentError) Unwrap() error { return e.Err }

func Transient(op string, err error) error {
	return &TransientError{Op: op, Err: err}
}

func Permanent(op string, err error) error {
	return &PermanentError{Op: op, Err: err}
}

// IsTransient reports whether the caller is allowed to retry the operation.
// Context deadline expiry counts as transient: a timed-out provider call is
// indistinguishable from a slow one.
func IsTransient(err error) bool {
	var te *TransientError
	if errors.As(err, &te) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// IsPermanent reports whether the error must be surfaced without retrying.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}
