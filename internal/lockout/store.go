// Package lockout implements the fail-safe lock that halts all automated
// isolation until an administrator intervenes.
package lockout

import (
	"context"

	"socguard/pkg/models"
)

// StateStore persists the singleton lock state. Engage must be atomic and
// idempotent under concurrent callers; Clear exists for the administrative
// unlock path only and is never reachable through the Guard.
type StateStore interface {
	// Get returns the current lock state. An unlocked store returns a
	// zero state, not an error.
	Get(ctx context.Context) (models.LockState, error)

	// Engage persists the lock state if no lock exists. It reports
	// whether this call created the lock.
	Engage(ctx context.Context, state models.LockState) (bool, error)

	// Clear removes the lock state.
	Clear(ctx context.Context) error

	Close() error
}
