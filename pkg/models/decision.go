package models

import "time"

// ThreatSummary is one display entry in a mass-isolation summary.
type ThreatSummary struct {
	Title      string   `json:"title"`
	Confidence string   `json:"confidence"`
	DeviceName string   `json:"device_name"`
	IOCs       []string `json:"iocs,omitempty"`
}

// MassException is the per-batch widespread-incident aggregate. It is a
// pure function of the input batch and carries no side effects.
type MassException struct {
	Applies           bool            `json:"exception_applies"`
	HighCount         int             `json:"high_count"`
	CriticalCount     int             `json:"critical_count"`
	TotalHighCritical int             `json:"total_high_critical"`
	DeviceCount       int             `json:"total_devices"`
	Summary           []ThreatSummary `json:"threat_summary,omitempty"`
}

// ConfirmationDecision is the outcome of a human confirmation step.
type ConfirmationDecision struct {
	Approved  bool      `json:"approved"`
	RawInput  string    `json:"raw_input"`
	Timestamp time.Time `json:"timestamp"`
}
