package domain

import "time"

// Session audit event kinds.
const (
	AuditLogin           = "login"
	AuditLogout          = "logout"
	AuditRestoreExpired  = "restore_expired"
	AuditRestoreRejected = "restore_rejected"
)

// SessionEvent records one session lifecycle transition for the audit trail.
type SessionEvent struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id,omitempty"`
	Email     string    `json:"email,omitempty"`
	Kind      string    `json:"kind"`
	Remember  bool      `json:"remember,omitempty"`
	At        time.Time `json:"at"`
}
