package model

import "time"

// AuthEventType classifies a best-effort audit event.
type AuthEventType string

const (
	AuthEventLoginFailed       AuthEventType = "login_failed"
	AuthEventTokenRejected     AuthEventType = "token_rejected"
	AuthEventUserDisabled      AuthEventType = "user_disabled"
	AuthEventPolicyDenied      AuthEventType = "policy_denied"
	AuthEventPermissionGranted AuthEventType = "permission_granted"
	AuthEventPermissionRevoked AuthEventType = "permission_revoked"
)

// AuthEvent is an observability record, not authorization state: losing one
// never affects a decision, and writing one never blocks a request.
type AuthEvent struct {
	ID        string        `json:"id"`
	EventType AuthEventType `json:"event_type"`
	UserID    *int64        `json:"user_id,omitempty"`
	Username  string        `json:"username,omitempty"`
	Detail    string        `json:"detail,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}
