// Package engine orchestrates the per-batch isolation decision pipeline:
// batch validation, the mass-isolation exception workflow, and the
// ordered per-threat loop behind the lockout, rate-limit and confidence
// gates.
package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"socguard/internal/arbiter"
	"socguard/internal/audit"
	"socguard/internal/confirm"
	"socguard/internal/executor"
	"socguard/internal/lockout"
	"socguard/internal/logger"
	"socguard/internal/metrics"
	"socguard/internal/notify"
	"socguard/internal/policy"
	"socguard/internal/ratelimit"
	"socguard/pkg/models"
)

// Deps wires the engine's collaborators. All fields are required.
type Deps struct {
	Actor      string
	BatchGuard *policy.BatchSizeGuard
	Confidence *policy.ConfidencePolicy
	Allowlist  *policy.QueryAllowlist
	Limiter    *ratelimit.Limiter
	Guard      *lockout.Guard
	Arbiter    *arbiter.Arbiter
	Prompter   confirm.Prompter
	Executor   executor.ActionExecutor
	Store      audit.Store
	Notifier   notify.Notifier
}

// Engine is the governance core. One instance governs one deployment;
// its mutex serializes batches so the read-count-then-isolate sequence
// in the rate limiter is atomic.
type Engine struct {
	mu   sync.Mutex
	deps Deps
	now  func() time.Time
}

// New creates a governance engine after checking that every collaborator
// is present. A missing dependency is a construction error, never a nil
// dereference mid-batch.
func New(deps Deps) (*Engine, error) {
	if deps.Actor == "" {
		deps.Actor = "system"
	}
	if deps.BatchGuard == nil || deps.Confidence == nil || deps.Allowlist == nil ||
		deps.Limiter == nil || deps.Guard == nil || deps.Arbiter == nil ||
		deps.Prompter == nil || deps.Executor == nil || deps.Store == nil ||
		deps.Notifier == nil {
		return nil, fmt.Errorf("engine: all dependencies are required")
	}
	return &Engine{deps: deps, now: time.Now}, nil
}

// ProcessBatch runs one hunt batch through the full decision pipeline.
// Threats are processed in hunt-result order and never reordered. The
// returned report is valid even when an error is returned alongside it.
func (e *Engine) ProcessBatch(ctx context.Context, hunt *models.HuntResult) (*models.BatchReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if hunt.HuntID == "" {
		hunt.HuntID = uuid.NewString()[:8]
	}
	report := &models.BatchReport{HuntID: hunt.HuntID, State: models.BatchAborted}

	if hunt.TableName != "" {
		tableErr := e.deps.Allowlist.Validate(hunt.TableName, "")
		if _, err := e.deps.Store.AppendRecord(ctx, &models.AuditRecord{
			Timestamp:  e.now().UTC(),
			ActionType: models.AuditHuntQuery,
			Actor:      e.deps.Actor,
			DeviceName: hunt.DeviceName,
			Success:    tableErr == nil,
			Details:    map[string]string{"table": hunt.TableName, "hunt_id": hunt.HuntID},
		}); err != nil {
			logger.Errorf("Failed to record hunt query: %v", err)
		}
		if tableErr != nil {
			logger.Errorf("Batch rejected: %v", tableErr)
			metrics.BatchesProcessed.WithLabelValues(string(models.BatchAborted)).Inc()
			return report, &ValidationError{Reason: tableErr.Error()}
		}
	}

	check := e.deps.BatchGuard.Validate(len(hunt.Threats))
	if !check.Allowed {
		logger.Errorf("Batch rejected: %s", check.Reason)
		metrics.BatchesProcessed.WithLabelValues(string(models.BatchAborted)).Inc()
		return report, &ValidationError{Reason: check.Reason}
	}
	if check.Warning {
		logger.Warnf("Batch accepted with warning: %s", check.Reason)
	}

	exc := e.deps.Arbiter.Evaluate(hunt.Threats, hunt.DeviceName)
	report.Exception = &exc

	massApproved := false
	if exc.Applies {
		logger.Warnf("Mass isolation exception triggered: %d HIGH/CRITICAL threats across %d devices",
			exc.TotalHighCritical, exc.DeviceCount)

		decision := e.deps.Arbiter.RequestConfirmation(ctx, exc, e.deps.Prompter)
		massApproved = decision.Approved

		decisionText := "declined"
		if massApproved {
			decisionText = "approved"
		}
		metrics.MassDecisions.WithLabelValues(decisionText).Inc()
		e.deps.Notifier.MassIsolationDecision(exc.DeviceCount, exc.TotalHighCritical, decisionText, e.deps.Actor, exc.Summary)

		if _, err := e.deps.Store.AppendRecord(ctx, &models.AuditRecord{
			Timestamp:  decision.Timestamp,
			ActionType: models.AuditUserDecision,
			Actor:      e.deps.Actor,
			DeviceName: hunt.DeviceName,
			Success:    true,
			Details: map[string]string{
				"threat_title": fmt.Sprintf("Mass isolation: %d threats", exc.TotalHighCritical),
				"decision":     decisionText,
				"confidence":   "high/critical",
			},
		}); err != nil {
			logger.Errorf("Failed to record mass isolation decision: %v", err)
		}

		if !massApproved {
			logger.Warnf("Mass isolation declined; no devices will be isolated")
			metrics.BatchesProcessed.WithLabelValues(string(models.BatchAborted)).Inc()
			return report, nil
		}
		report.MassApproved = true
	}

	if !hunt.AboutIndividualHost && !massApproved {
		// User-account and NSG response workflows are accepted but not
		// governed here; they remain open extension points.
		switch {
		case hunt.AboutIndividualUser:
			logger.Infof("User account workflow not implemented; no action taken")
		case hunt.AboutNetworkSecurityGroup:
			logger.Infof("NSG workflow not implemented; no action taken")
		default:
			logger.Infof("Batch is not host-scoped; no isolation applies")
		}
		report.State = models.BatchCompleted
		report.Skipped = len(hunt.Threats)
		metrics.BatchesProcessed.WithLabelValues(string(models.BatchCompleted)).Inc()
		return report, nil
	}

	err := e.processThreats(ctx, hunt, report)
	report.State = models.BatchCompleted
	metrics.BatchesProcessed.WithLabelValues(string(models.BatchCompleted)).Inc()
	return report, err
}

// processThreats runs the ordered per-threat loop. Rate limits apply to
// every isolation, mass-approved or not, and a denial fails closed: the
// remaining batch is abandoned, never skipped past.
func (e *Engine) processThreats(ctx context.Context, hunt *models.HuntResult, report *models.BatchReport) error {
	isolated := make(map[string]bool)

	for i, threat := range hunt.Threats {
		device := threat.DeviceName
		if device == "" {
			device = hunt.DeviceName
		}
		outcome := models.ThreatOutcome{Index: i, Title: threat.Title, DeviceName: device}

		if device == "" {
			outcome.Detail = "no target device"
			report.Skipped++
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}
		if isolated[device] {
			// At most one isolation per device per run.
			outcome.Detail = "device already isolated in this batch"
			report.Skipped++
			report.Outcomes = append(report.Outcomes, outcome)
			continue
		}

		limit, err := e.deps.Limiter.Check(ctx, e.deps.Actor)
		if err != nil {
			report.RateLimited = true
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !limit.Allowed {
			report.RateLimited = true
			outcome.Detail = limit.Reason
			report.Outcomes = append(report.Outcomes, outcome)
			if limit.Locked {
				return ErrLocked
			}
			return &RateLimitError{Reason: limit.Reason, Count: limit.CurrentCount}
		}

		directive := e.deps.Confidence.Classify(threat.Confidence)
		outcome.Directive = directive.String()

		switch directive {
		case policy.AutoIsolate:
			logger.Warnf("CRITICAL threat, auto-isolating %s: %s", device, threat.Title)
			result := e.isolate(ctx, hunt, threat, device, "auto_approved")
			e.tally(report, &outcome, result)
			if result == models.ResultSuccess {
				isolated[device] = true
			}

		case policy.RequireConfirmation:
			approved, err := e.deps.Prompter.ConfirmIsolation(ctx, device, threat)
			if err != nil {
				logger.Warnf("Confirmation unavailable, declining isolation of %s: %v", device, err)
				approved = false
			}
			if approved {
				result := e.isolate(ctx, hunt, threat, device, "approved")
				e.tally(report, &outcome, result)
				if result == models.ResultSuccess {
					isolated[device] = true
				}
			} else {
				e.decline(ctx, hunt, threat, device)
				e.tally(report, &outcome, models.ResultDeclined)
			}

		case policy.Skip:
			logger.Infof("LOW confidence threat, skipping automatic isolation: %s", threat.Title)
			outcome.Detail = "low confidence"
			report.Skipped++
		}

		report.Outcomes = append(report.Outcomes, outcome)
	}

	return nil
}

// isolate performs one isolation attempt and appends exactly one event
// whose result mirrors the executor's real outcome. Executor failures are
// reported and do not halt the batch.
func (e *Engine) isolate(ctx context.Context, hunt *models.HuntResult, threat models.Threat, device, decision string) models.ActionResult {
	result := models.ResultSuccess
	machineID, err := e.deps.Executor.ResolveDeviceID(ctx, device)
	if err != nil {
		logger.Errorf("Failed to resolve device %s: %v", device, err)
		result = models.ResultFailed
	} else if err := e.deps.Executor.Isolate(ctx, machineID); err != nil {
		logger.Errorf("Isolation of %s failed: %v", device, err)
		result = models.ResultFailed
	} else {
		logger.Infof("Device %s successfully isolated", device)
	}

	metrics.IsolationAttempts.WithLabelValues(string(result)).Inc()
	e.appendEvent(ctx, &models.IsolationEvent{
		Timestamp:    e.now().UTC(),
		Actor:        e.deps.Actor,
		MachineID:    machineID,
		DeviceName:   device,
		ThreatID:     hunt.HuntID,
		ThreatTitle:  threat.Title,
		ActionResult: result,
		UserDecision: decision,
	})
	return result
}

// decline records a refused isolation and alerts the SOC lead; declining
// a confirmable threat is itself reportable.
func (e *Engine) decline(ctx context.Context, hunt *models.HuntResult, threat models.Threat, device string) {
	logger.Infof("Isolation of %s declined by %s", device, e.deps.Actor)
	e.deps.Notifier.IsolationDeclined(device, threat.Title, threat.Confidence, e.deps.Actor)

	metrics.IsolationAttempts.WithLabelValues(string(models.ResultDeclined)).Inc()
	e.appendEvent(ctx, &models.IsolationEvent{
		Timestamp:    e.now().UTC(),
		Actor:        e.deps.Actor,
		DeviceName:   device,
		ThreatID:     hunt.HuntID,
		ThreatTitle:  threat.Title,
		ActionResult: models.ResultDeclined,
		UserDecision: "declined",
		AlertSent:    true,
	})
}

func (e *Engine) appendEvent(ctx context.Context, event *models.IsolationEvent) {
	if _, err := e.deps.Store.AppendEvent(ctx, event); err != nil {
		logger.Errorf("Failed to append isolation event for %s: %v", event.DeviceName, err)
	}
}

func (e *Engine) tally(report *models.BatchReport, outcome *models.ThreatOutcome, result models.ActionResult) {
	outcome.Result = result
	switch result {
	case models.ResultSuccess:
		report.Isolated++
	case models.ResultFailed:
		report.Failed++
	case models.ResultDeclined:
		report.Declined++
	}
}
