package audit

import (
	"context"
	"testing"
	"time"

	"socguard/pkg/models"
)

func TestMemoryStoreAppendEventAssignsID(t *testing.T) {
	s := NewMemoryStore()

	id, err := s.AppendEvent(context.Background(), &models.IsolationEvent{
		DeviceName:   "ws-01",
		ActionResult: models.ResultSuccess,
	})
	if err != nil {
		t.Fatalf("AppendEvent: %v", err)
	}
	if id == "" {
		t.Fatalf("expected a generated event id")
	}

	events := s.Events()
	if len(events) != 1 || events[0].ID != id {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Timestamp.IsZero() {
		t.Fatalf("expected a default timestamp")
	}
}

func TestMemoryStoreCountSuccessfulSince(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	events := []models.IsolationEvent{
		{Timestamp: base.Add(-time.Minute), Actor: "agent", ActionResult: models.ResultSuccess},
		{Timestamp: base.Add(-time.Minute), Actor: "agent", ActionResult: models.ResultFailed},
		{Timestamp: base.Add(-time.Minute), Actor: "other", ActionResult: models.ResultSuccess},
		{Timestamp: base.Add(-2 * time.Hour), Actor: "agent", ActionResult: models.ResultSuccess},
	}
	for i := range events {
		if _, err := s.AppendEvent(ctx, &events[i]); err != nil {
			t.Fatalf("AppendEvent: %v", err)
		}
	}

	count, err := s.CountSuccessfulSince(ctx, base.Add(-5*time.Minute), "agent")
	if err != nil {
		t.Fatalf("CountSuccessfulSince: %v", err)
	}
	if count != 1 {
		t.Fatalf("actor-scoped count = %d, want 1", count)
	}

	count, err = s.CountSuccessfulSince(ctx, base.Add(-5*time.Minute), "")
	if err != nil {
		t.Fatalf("CountSuccessfulSince: %v", err)
	}
	if count != 2 {
		t.Fatalf("all-actor count = %d, want 2", count)
	}

	count, err = s.CountSuccessfulSince(ctx, base.Add(-24*time.Hour), "agent")
	if err != nil {
		t.Fatalf("CountSuccessfulSince: %v", err)
	}
	if count != 2 {
		t.Fatalf("daily count = %d, want 2", count)
	}
}

func TestMemoryStoreStats(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	s.AppendEvent(ctx, &models.IsolationEvent{ActionResult: models.ResultSuccess})
	s.AppendEvent(ctx, &models.IsolationEvent{ActionResult: models.ResultSuccess})
	s.AppendEvent(ctx, &models.IsolationEvent{ActionResult: models.ResultDeclined})
	s.AppendRecord(ctx, &models.AuditRecord{ActionType: models.AuditAgentLockout})

	stats, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalEvents != 3 || stats.TotalRecords != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	if stats.ByResult["success"] != 2 || stats.ByResult["declined"] != 1 {
		t.Fatalf("ByResult = %v", stats.ByResult)
	}
}
