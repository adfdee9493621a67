// Package arbiter detects the widespread-incident exception across a hunt
// batch and runs the deliberately delayed human confirmation workflow.
package arbiter

import (
	"context"
	"strings"
	"time"

	"socguard/internal/confirm"
	"socguard/pkg/models"
)

const (
	summaryMaxThreats = 10
	summaryMaxIOCs    = 3
)

// Config controls the arbiter.
type Config struct {
	// Threshold is the HIGH+CRITICAL count at which the exception
	// applies.
	Threshold int

	// Phrase must be typed exactly, case-sensitively, to approve.
	Phrase string

	// Delay is the mandatory wait before any answer is accepted.
	Delay time.Duration
}

// Arbiter evaluates mass-isolation exceptions and collects confirmations.
type Arbiter struct {
	cfg   Config
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an arbiter.
func New(cfg Config) *Arbiter {
	if cfg.Threshold <= 0 {
		cfg.Threshold = 10
	}
	if cfg.Phrase == "" {
		cfg.Phrase = "CONFIRM MASS ISOLATION"
	}
	return &Arbiter{
		cfg:   cfg,
		sleep: sleepContext,
		now:   time.Now,
	}
}

// Evaluate tallies the batch and builds the exception aggregate. It is a
// pure function of its inputs: no I/O, no state.
func (a *Arbiter) Evaluate(threats []models.Threat, deviceNameHint string) models.MassException {
	var critical, high []models.Threat
	devices := make(map[string]struct{})

	for _, t := range threats {
		switch strings.ToLower(t.Confidence) {
		case "critical":
			critical = append(critical, t)
		case "high":
			high = append(high, t)
		}
		device := t.DeviceName
		if device == "" {
			device = deviceNameHint
		}
		if device != "" {
			devices[device] = struct{}{}
		}
	}

	exc := models.MassException{
		HighCount:         len(high),
		CriticalCount:     len(critical),
		TotalHighCritical: len(high) + len(critical),
		DeviceCount:       len(devices),
	}
	exc.Applies = exc.TotalHighCritical >= a.cfg.Threshold

	// Summary lists critical threats first, then high, capped at ten
	// entries of three indicators each.
	for _, t := range append(append([]models.Threat{}, critical...), high...) {
		if len(exc.Summary) >= summaryMaxThreats {
			break
		}
		device := t.DeviceName
		if device == "" {
			device = deviceNameHint
		}
		if device == "" {
			device = "unknown"
		}
		iocs := t.IOCs
		if len(iocs) > summaryMaxIOCs {
			iocs = iocs[:summaryMaxIOCs]
		}
		exc.Summary = append(exc.Summary, models.ThreatSummary{
			Title:      t.Title,
			Confidence: t.Confidence,
			DeviceName: device,
			IOCs:       iocs,
		})
	}

	return exc
}

// RequestConfirmation runs the blocking confirmation workflow. The
// mandatory delay elapses before the prompter is consulted, so no adapter
// can resolve the step early. Approval requires an exact, case-sensitive
// match of the configured phrase; anything else, including a cancelled
// context or prompter failure, declines. The decision is returned without
// side effects; logging and notification belong to the caller.
func (a *Arbiter) RequestConfirmation(ctx context.Context, exc models.MassException, prompter confirm.Prompter) models.ConfirmationDecision {
	decision := models.ConfirmationDecision{Timestamp: a.now().UTC()}

	if err := a.sleep(ctx, a.cfg.Delay); err != nil {
		decision.Timestamp = a.now().UTC()
		return decision
	}

	raw, err := prompter.PromptMassIsolation(ctx, exc)
	decision.Timestamp = a.now().UTC()
	if err != nil {
		return decision
	}

	decision.RawInput = raw
	decision.Approved = strings.TrimSpace(raw) == a.cfg.Phrase
	return decision
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
