package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrOAuthNotConfigured = errors.New("oauth provider not configured")
)

// ErrorResponse carries the transport-level status when an auth error was
// produced by an upstream HTTP exchange.
type ErrorResponse struct {
	Status int
}

// Error is the structured auth error surfaced by the backend. Status and
// Code both exist because upstream providers report either; Message is the
// human-readable text clients may match on.
type Error struct {
	Status   int
	Code     string
	Message  string
	Response *ErrorResponse
}

func (e *Error) Error() string { return e.Message }

// NewSessionMissingError reports the goal state a sign-out caller already
// reached: there is no session to terminate.
func NewSessionMissingError() *Error {
	return &Error{Status: 403, Message: "Auth session missing!"}
}
