package models

import "time"

// ActionResult is the terminal outcome of one isolation attempt.
type ActionResult string

const (
	ResultSuccess  ActionResult = "success"
	ResultFailed   ActionResult = "failed"
	ResultDeclined ActionResult = "declined"
)

// IsolationEvent records exactly one isolation attempt. Events are
// append-only and are the sole ground truth for rate-limit counting.
type IsolationEvent struct {
	ID           string       `json:"id"`
	Timestamp    time.Time    `json:"timestamp"`
	Actor        string       `json:"actor"`
	MachineID    string       `json:"machine_id,omitempty"`
	DeviceName   string       `json:"device_name"`
	ThreatID     string       `json:"threat_id,omitempty"`
	ThreatTitle  string       `json:"threat_title,omitempty"`
	ActionResult ActionResult `json:"action_result"`
	ApprovedBy   string       `json:"approved_by,omitempty"`
	UserDecision string       `json:"user_decision,omitempty"`
	AlertSent    bool         `json:"alert_sent"`
}

// AuditRecord is a generic entry in the append-only audit log.
type AuditRecord struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	ActionType string            `json:"action_type"`
	Actor      string            `json:"actor"`
	DeviceName string            `json:"device_name,omitempty"`
	Success    bool              `json:"success"`
	Details    map[string]string `json:"details,omitempty"`
}

// Audit record action types.
const (
	AuditAgentLockout = "agent_lockout"
	AuditAgentUnlock  = "agent_unlock"
	AuditUserDecision = "user_decision"
	AuditHuntQuery    = "hunt_query"
)
