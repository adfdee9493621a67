// Package notify delivers best-effort alerts to the SOC lead. Every
// method is fire-and-forget: delivery failure is logged and swallowed and
// never blocks or fails a governance decision.
package notify

import (
	"socguard/internal/logger"
	"socguard/pkg/models"
)

// Notifier is the alerting surface the governance engine calls into.
type Notifier interface {
	RateLimitExceeded(count int, window string)
	MassIsolationAttempt(count int, actor string)
	DailyLimitReached(actor string)
	IsolationDeclined(device, threatTitle, confidence, actor string)
	MassIsolationDecision(deviceCount, threatCount int, decision, actor string, summary []models.ThreatSummary)
}

// LogNotifier writes alerts to the agent log only. It is the fallback
// when no delivery channel is configured.
type LogNotifier struct{}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) RateLimitExceeded(count int, window string) {
	logger.Warnf("ALERT rate limit exceeded: %d isolations in %s", count, window)
}

func (n *LogNotifier) MassIsolationAttempt(count int, actor string) {
	logger.Errorf("ALERT potential mass isolation attack: %d attempts by %s, agent locked", count, actor)
}

func (n *LogNotifier) DailyLimitReached(actor string) {
	logger.Warnf("ALERT daily isolation limit reached by %s, SOC lead approval required", actor)
}

func (n *LogNotifier) IsolationDeclined(device, threatTitle, confidence, actor string) {
	logger.Warnf("ALERT %s-confidence isolation declined by %s: device=%s threat=%s", confidence, actor, device, threatTitle)
}

func (n *LogNotifier) MassIsolationDecision(deviceCount, threatCount int, decision, actor string, summary []models.ThreatSummary) {
	logger.Warnf("ALERT mass isolation %s by %s: %d devices, %d threats", decision, actor, deviceCount, threatCount)
}

// Multi fans one alert out to several notifiers.
type Multi []Notifier

func (m Multi) RateLimitExceeded(count int, window string) {
	for _, n := range m {
		n.RateLimitExceeded(count, window)
	}
}

func (m Multi) MassIsolationAttempt(count int, actor string) {
	for _, n := range m {
		n.MassIsolationAttempt(count, actor)
	}
}

func (m Multi) DailyLimitReached(actor string) {
	for _, n := range m {
		n.DailyLimitReached(actor)
	}
}

func (m Multi) IsolationDeclined(device, threatTitle, confidence, actor string) {
	for _, n := range m {
		n.IsolationDeclined(device, threatTitle, confidence, actor)
	}
}

func (m Multi) MassIsolationDecision(deviceCount, threatCount int, decision, actor string, summary []models.ThreatSummary) {
	for _, n := range m {
		n.MassIsolationDecision(deviceCount, threatCount, decision, actor, summary)
	}
}
