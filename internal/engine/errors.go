package engine

import "errors"

// ErrLocked reports that the fail-safe lockout is engaged. It halts all
// isolation activity until an administrator clears the lock; every other
// error in this package is scoped to the current batch.
var ErrLocked = errors.New("agent is locked")

// ValidationError rejects a batch before per-threat processing.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "batch validation failed: " + e.Reason
}

// RateLimitError reports a rate-limit denial that aborted the remainder
// of a batch. It is non-fatal to the agent process.
type RateLimitError struct {
	Reason string
	Count  int
}

func (e *RateLimitError) Error() string {
	return "isolation rate limit: " + e.Reason
}
