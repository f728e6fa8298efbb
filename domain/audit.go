package domain

import "time"

// AuditRecord is one immutable entry in the transaction audit trail.
// Written after execution (success or business failure), best-effort.
type AuditRecord struct {
	RequestID  string    `json:"request_id"`
	UserID     int64     `json:"user_id"`
	ProfileID  int64     `json:"profile_id"`
	ObjectName string    `json:"object_name"`
	MethodName string    `json:"method_name"`
	TX         int64     `json:"tx"`
	Action     string    `json:"action"`
	Details    string    `json:"details,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Audit actions recorded by the orchestrator.
const (
	AuditActionOK     = "ok"
	AuditActionFailed = "failed"
)
