package models

// BatchState is the terminal state of a processed hunt batch.
type BatchState string

const (
	BatchCompleted BatchState = "completed"
	BatchAborted   BatchState = "aborted"
)

// ThreatOutcome records what the engine did with one threat in a batch.
type ThreatOutcome struct {
	Index      int          `json:"index"`
	Title      string       `json:"title"`
	DeviceName string       `json:"device_name,omitempty"`
	Directive  string       `json:"directive"`
	Result     ActionResult `json:"result,omitempty"`
	Detail     string       `json:"detail,omitempty"`
}

// BatchReport summarizes one run of the governance pipeline.
type BatchReport struct {
	HuntID       string          `json:"hunt_id"`
	State        BatchState      `json:"state"`
	MassApproved bool            `json:"mass_approved"`
	RateLimited  bool            `json:"rate_limited"`
	Exception    *MassException  `json:"exception,omitempty"`
	Outcomes     []ThreatOutcome `json:"outcomes,omitempty"`
	Isolated     int             `json:"isolated"`
	Failed       int             `json:"failed"`
	Declined     int             `json:"declined"`
	Skipped      int             `json:"skipped"`
}
