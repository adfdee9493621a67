// Package policy holds the static decision tables of the governance
// engine: the confidence-to-directive mapping, the batch-size guard, and
// the query-target allowlist. All tables are validated at construction
// and never re-validated per call.
package policy

import "strings"

// Directive tells the engine what to do with one threat.
type Directive int

const (
	AutoIsolate Directive = iota
	RequireConfirmation
	Skip
)

// String returns the directive name.
func (d Directive) String() string {
	switch d {
	case AutoIsolate:
		return "auto_isolate"
	case RequireConfirmation:
		return "require_confirmation"
	case Skip:
		return "skip"
	default:
		return "unknown"
	}
}

// ConfidencePolicy maps a threat's confidence tier to a directive.
type ConfidencePolicy struct {
	rules map[string]Directive
}

// NewConfidencePolicy builds the fixed confidence table. Only critical
// auto-isolates; unrecognized tiers fall back to human confirmation, never
// to automatic isolation.
func NewConfidencePolicy() *ConfidencePolicy {
	return &ConfidencePolicy{
		rules: map[string]Directive{
			"critical": AutoIsolate,
			"high":     RequireConfirmation,
			"medium":   RequireConfirmation,
			"low":      Skip,
		},
	}
}

// Classify returns the directive for a confidence tier.
func (p *ConfidencePolicy) Classify(tier string) Directive {
	directive, ok := p.rules[strings.ToLower(strings.TrimSpace(tier))]
	if !ok {
		return RequireConfirmation
	}
	return directive
}
