package auth

import "context"

// Backend is the narrow auth capability the session layer consumes: read
// the current session, terminate it, and watch for state changes. The
// production implementation is a Service bound to one access token; tests
// substitute fakes.
type Backend interface {
	// GetSession returns the current session, or (nil, nil) when signed out.
	GetSession(ctx context.Context) (*Session, error)
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(Event)) *Subscription
}

// BoundClient adapts a Service to the Backend interface for a single
// access token, filtering the shared event stream down to that principal.
type BoundClient struct {
	svc    *Service
	token  string
	userID string
}

// BindToken builds a Backend view of the service for one access token. An
// unparsable token still yields a usable client; it just reports no session.
func (s *Service) BindToken(token string) *BoundClient {
	uid := ""
	if token != "" {
		if claims, err := s.JWT.ParseAccessToken(token); err == nil {
			uid = claims.UserID
		}
	}
	return &BoundClient{svc: s, token: token, userID: uid}
}

func (c *BoundClient) GetSession(ctx context.Context) (*Session, error) {
	return c.svc.GetSession(ctx, c.token)
}

func (c *BoundClient) SignOut(ctx context.Context) error {
	return c.svc.SignOut(ctx, c.token)
}

func (c *BoundClient) OnAuthStateChange(fn func(Event)) *Subscription {
	return c.svc.OnAuthStateChange(func(ev Event) {
		if ev.UserID == c.userID {
			fn(ev)
		}
	})
}

var _ Backend = (*BoundClient)(nil)
