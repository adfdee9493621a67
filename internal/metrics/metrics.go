package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	IsolationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socguard_isolation_attempts_total",
			Help: "Isolation attempts by action result",
		},
		[]string{"result"},
	)

	RateLimitDenials = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socguard_rate_limit_denials_total",
			Help: "Isolation rate-limit denials by window",
		},
		[]string{"window"},
	)

	Lockouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "socguard_lockouts_total",
			Help: "Fail-safe lockout engagements",
		},
	)

	MassDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socguard_mass_isolation_decisions_total",
			Help: "Mass-isolation confirmation outcomes",
		},
		[]string{"decision"},
	)

	BatchesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "socguard_batches_processed_total",
			Help: "Hunt batches processed by terminal state",
		},
		[]string{"state"},
	)
)
