package domain

import "time"

// Session is the live, authenticated binding between a user identity and
// one transport connection. A user may hold several concurrent sessions
// (one per device).
type Session struct {
	UserID       string
	ConnectionID string
	JoinedAt     time.Time
}
