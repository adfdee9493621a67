// Package audit persists isolation events and audit records. The store is
// append-only and durable; it is the sole source of truth for rate-limit
// counting. No in-memory counters are trusted across calls.
package audit

import (
	"context"
	"time"

	"socguard/pkg/models"
)

// Store is the read/write contract the governance engine depends on.
type Store interface {
	// AppendEvent appends one isolation event and returns its id.
	AppendEvent(ctx context.Context, event *models.IsolationEvent) (string, error)

	// CountSuccessfulSince counts isolation events with a success result
	// and a timestamp at or after cutoff. An empty actor counts events
	// for every actor scope.
	CountSuccessfulSince(ctx context.Context, cutoff time.Time, actor string) (int, error)

	// AppendRecord appends one audit record and returns its id.
	AppendRecord(ctx context.Context, record *models.AuditRecord) (string, error)

	// Stats reports event totals for operator tooling.
	Stats(ctx context.Context) (Stats, error)

	Close() error
}

// Stats summarizes store contents.
type Stats struct {
	TotalEvents  int            `json:"total_events"`
	TotalRecords int            `json:"total_records"`
	ByResult     map[string]int `json:"by_result"`
}
