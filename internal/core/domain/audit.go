package domain

import "time"

// AuthEventType enumerates the actions recorded in the auth audit trail.
type AuthEventType string

const (
	EventLogin        AuthEventType = "login"
	EventLoginFailed  AuthEventType = "login_failed"
	EventLogout       AuthEventType = "logout"
	EventRegistered   AuthEventType = "registered"
	EventProvisioned  AuthEventType = "provisioned"
	EventUserDeleted  AuthEventType = "user_deleted"
	EventSessionEnded AuthEventType = "session_invalid"
)

// AuthEvent is a single audit record.
type AuthEvent struct {
	ID         string        `json:"id"`
	Type       AuthEventType `json:"type"`
	UserID     string        `json:"user_id,omitempty"`
	Username   string        `json:"username,omitempty"`
	Strategy   string        `json:"strategy,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}
