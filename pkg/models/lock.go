package models

import "time"

// LockState is the persisted fail-safe flag. There is exactly one per
// engine instance; while locked, no isolation is ever authorized.
type LockState struct {
	Locked    bool      `json:"locked"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}
