package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"socguard/pkg/models"
)

// MemoryStore keeps events and records in memory. It backs dry runs and
// tests; production deployments use the Redis store for durability.
type MemoryStore struct {
	mu      sync.Mutex
	events  []models.IsolationEvent
	records []models.AuditRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// AppendEvent appends one isolation event.
func (s *MemoryStore) AppendEvent(ctx context.Context, event *models.IsolationEvent) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	s.events = append(s.events, *event)
	return event.ID, nil
}

// CountSuccessfulSince counts successful isolations since cutoff.
func (s *MemoryStore) CountSuccessfulSince(ctx context.Context, cutoff time.Time, actor string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, ev := range s.events {
		if ev.ActionResult != models.ResultSuccess {
			continue
		}
		if actor != "" && ev.Actor != actor {
			continue
		}
		if ev.Timestamp.Before(cutoff) {
			continue
		}
		count++
	}
	return count, nil
}

// AppendRecord appends one audit record.
func (s *MemoryStore) AppendRecord(ctx context.Context, record *models.AuditRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}
	s.records = append(s.records, *record)
	return record.ID, nil
}

// Stats reports event totals.
func (s *MemoryStore) Stats(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := Stats{
		TotalEvents:  len(s.events),
		TotalRecords: len(s.records),
		ByResult:     make(map[string]int),
	}
	for _, ev := range s.events {
		out.ByResult[string(ev.ActionResult)]++
	}
	return out, nil
}

// Events returns a copy of all isolation events, oldest first.
func (s *MemoryStore) Events() []models.IsolationEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.IsolationEvent, len(s.events))
	copy(out, s.events)
	return out
}

// Records returns a copy of all audit records, oldest first.
func (s *MemoryStore) Records() []models.AuditRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AuditRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
