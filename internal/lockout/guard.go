package lockout

import (
	"context"
	"time"

	"socguard/internal/audit"
	"socguard/internal/logger"
	"socguard/internal/metrics"
	"socguard/pkg/models"
)

// Guard is the engine-facing view of the lock. It can read the lock and
// engage it; clearing is an administrative action outside the governance
// boundary, so the Guard deliberately has no unlock method.
type Guard struct {
	store StateStore
	audit audit.Store
	now   func() time.Time
}

// NewGuard creates a lockout guard over a state store.
func NewGuard(store StateStore, auditStore audit.Store) *Guard {
	return &Guard{
		store: store,
		audit: auditStore,
		now:   time.Now,
	}
}

// IsLocked reports whether the agent is locked. A store read failure is
// treated as locked: when the lock state cannot be confirmed, isolation
// stays off.
func (g *Guard) IsLocked(ctx context.Context) bool {
	state, err := g.store.Get(ctx)
	if err != nil {
		logger.Errorf("Failed to read lock state, refusing isolation: %v", err)
		return true
	}
	return state.Locked
}

// Engage locks the agent. It is idempotent: if the lock already exists
// this is a no-op and no second audit record is written.
func (g *Guard) Engage(ctx context.Context, actor, reason string) {
	engaged, err := g.store.Engage(ctx, models.LockState{
		Locked:    true,
		Reason:    reason,
		Timestamp: g.now().UTC(),
	})
	if err != nil {
		logger.Errorf("Failed to persist lock state: %v", err)
		return
	}
	if !engaged {
		return
	}

	logger.Warnf("Agent locked: %s", reason)
	metrics.Lockouts.Inc()

	if _, err := g.audit.AppendRecord(ctx, &models.AuditRecord{
		Timestamp:  g.now().UTC(),
		ActionType: models.AuditAgentLockout,
		Actor:      actor,
		Success:    true,
		Details:    map[string]string{"reason": reason},
	}); err != nil {
		logger.Errorf("Failed to record lockout: %v", err)
	}
}

// State returns the persisted lock state for operator tooling.
func (g *Guard) State(ctx context.Context) (models.LockState, error) {
	return g.store.Get(ctx)
}
