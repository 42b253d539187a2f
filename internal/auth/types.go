package auth

import "time"

// User is the normalized authenticated identity. Email may be absent for
// some OAuth providers.
type User struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
}

// Session is the authenticated-identity state at a point in time.
type Session struct {
	User             *User     `json:"user"`
	SessionID        string    `json:"-"`
	AccessToken      string    `json:"access_token,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at,omitempty"`
	RefreshToken     string    `json:"refresh_token,omitempty"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

// EventKind identifies an auth-state transition.
type EventKind string

const (
	EventInitialSession EventKind = "INITIAL_SESSION"
	EventSignedIn       EventKind = "SIGNED_IN"
	EventSignedOut      EventKind = "SIGNED_OUT"
	EventTokenRefreshed EventKind = "TOKEN_REFRESHED"
	EventUserUpdated    EventKind = "USER_UPDATED"
)

// Event is a discrete auth-state change pushed to subscribers. Session is
// optional; SIGNED_OUT events carry none. UserID names the subject so
// per-user consumers can filter a shared stream.
type Event struct {
	Kind    EventKind
	UserID  string
	Session *Session
}
