// Package ratelimit gates isolation actions behind three sliding windows
// computed from the audit store. Counts are derived on demand from
// persisted events and never cached across calls.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"socguard/internal/audit"
	"socguard/internal/lockout"
	"socguard/internal/logger"
	"socguard/internal/metrics"
	"socguard/internal/notify"
)

// The lockout trip point is a fixed multiple of the 5-minute limit. It is
// deliberately not configurable.
const lockoutMultiplier = 2

// Limits holds the per-window isolation caps.
type Limits struct {
	Per5Minutes int
	PerHour     int
	PerDay      int
}

// Result is the outcome of one rate-limit check.
type Result struct {
	Allowed      bool
	Locked       bool
	Reason       string
	CurrentCount int
}

// Limiter evaluates the isolation rate windows in escalating order.
type Limiter struct {
	store    audit.Store
	guard    *lockout.Guard
	notifier notify.Notifier
	limits   Limits
	now      func() time.Time
}

// New creates a rate limiter.
func New(store audit.Store, guard *lockout.Guard, notifier notify.Notifier, limits Limits) *Limiter {
	if limits.Per5Minutes <= 0 {
		limits.Per5Minutes = 5
	}
	if limits.PerHour <= 0 {
		limits.PerHour = 10
	}
	if limits.PerDay <= 0 {
		limits.PerDay = 15
	}
	return &Limiter{
		store:    store,
		guard:    guard,
		notifier: notifier,
		limits:   limits,
		now:      time.Now,
	}
}

// Check evaluates the lockout flag and the three windows for one actor
// scope. The windows use distinct boundary operators on purpose: the
// 5-minute window denies at the limit (>=) while the hourly and daily
// windows deny only past it (>). Each operator changes which isolation is
// the one that trips the limit, and both behaviors are pinned by tests.
func (l *Limiter) Check(ctx context.Context, actor string) (Result, error) {
	if l.guard.IsLocked(ctx) {
		return Result{Locked: true, Reason: "agent is locked"}, nil
	}

	now := l.now()

	count5, err := l.store.CountSuccessfulSince(ctx, now.Add(-5*time.Minute), actor)
	if err != nil {
		return Result{}, fmt.Errorf("count 5-minute window: %w", err)
	}
	if count5 >= l.limits.Per5Minutes {
		logger.Warnf("Rate limit exceeded: %d isolations in last 5 minutes", count5)
		metrics.RateLimitDenials.WithLabelValues("5m").Inc()
		l.notifier.RateLimitExceeded(count5, "5 minutes")

		// Significantly over the limit means something is driving
		// isolations faster than any analyst workflow; lock the agent.
		if count5 > l.limits.Per5Minutes*lockoutMultiplier {
			l.guard.Engage(ctx, actor, fmt.Sprintf("excessive isolation rate: %d in 5 minutes", count5))
			l.notifier.MassIsolationAttempt(count5, actor)
		}

		return Result{
			Reason:       fmt.Sprintf("5-minute limit exceeded (%d/%d)", count5, l.limits.Per5Minutes),
			CurrentCount: count5,
		}, nil
	}

	count1h, err := l.store.CountSuccessfulSince(ctx, now.Add(-time.Hour), actor)
	if err != nil {
		return Result{}, fmt.Errorf("count hourly window: %w", err)
	}
	if count1h > l.limits.PerHour {
		logger.Warnf("Rate limit exceeded: %d isolations in last hour", count1h)
		metrics.RateLimitDenials.WithLabelValues("1h").Inc()
		l.notifier.RateLimitExceeded(count1h, "1 hour")
		return Result{
			Reason:       fmt.Sprintf("hourly limit exceeded (%d/%d)", count1h, l.limits.PerHour),
			CurrentCount: count1h,
		}, nil
	}

	count24h, err := l.store.CountSuccessfulSince(ctx, now.Add(-24*time.Hour), actor)
	if err != nil {
		return Result{}, fmt.Errorf("count daily window: %w", err)
	}
	if count24h > l.limits.PerDay {
		logger.Warnf("Daily limit reached: %d isolations in last 24 hours", count24h)
		metrics.RateLimitDenials.WithLabelValues("24h").Inc()
		l.notifier.DailyLimitReached(actor)
		return Result{
			Reason:       fmt.Sprintf("daily limit reached (%d/%d), SOC lead approval required", count24h, l.limits.PerDay),
			CurrentCount: count24h,
		}, nil
	}

	return Result{Allowed: true, Reason: "within rate limits", CurrentCount: count5}, nil
}

// WindowCounts reports the current counts for operator tooling.
func (l *Limiter) WindowCounts(ctx context.Context, actor string) (count5, count1h, count24h int, err error) {
	now := l.now()
	if count5, err = l.store.CountSuccessfulSince(ctx, now.Add(-5*time.Minute), actor); err != nil {
		return 0, 0, 0, err
	}
	if count1h, err = l.store.CountSuccessfulSince(ctx, now.Add(-time.Hour), actor); err != nil {
		return 0, 0, 0, err
	}
	if count24h, err = l.store.CountSuccessfulSince(ctx, now.Add(-24*time.Hour), actor); err != nil {
		return 0, 0, 0, err
	}
	return count5, count1h, count24h, nil
}
