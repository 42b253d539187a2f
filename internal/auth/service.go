package auth

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/profilehub/profilehub/internal/domain/entity"
	repo "github.com/profilehub/profilehub/internal/domain/repository"
	"github.com/profilehub/profilehub/pkg/helpers"
)

// Service implements the auth backend: Postgres accounts, bcrypt password
// checks, JWT access/refresh tokens, and Redis session records. State
// transitions are pushed to subscribers through an in-process broadcaster.
type Service struct {
	Accounts repo.AccountRepository
	JWT      *helpers.JWTManager
	Redis    *redis.Client
	Logger   *logrus.Logger

	SessionTTL time.Duration

	google *OAuthProvider
	events *broadcaster
}

func NewService(accounts repo.AccountRepository, jwt *helpers.JWTManager, rdb *redis.Client, logger *logrus.Logger, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &Service{
		Accounts:   accounts,
		JWT:        jwt,
		Redis:      rdb,
		Logger:     logger,
		SessionTTL: sessionTTL,
		events:     newBroadcaster(),
	}
}

func sessionKey(sid string) string { return "auth:session:" + sid }

// OnAuthStateChange registers a callback for every auth-state event in the
// process. Per-user filtering is done by BoundClient.
func (s *Service) OnAuthStateChange(fn func(Event)) *Subscription {
	return s.events.subscribe(fn)
}

// SignUp registers a new email/password account and opens a session.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Session, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	acct := &entity.Account{Email: email, PasswordHash: hash, Provider: "email"}
	if err := s.Accounts.Create(ctx, acct); err != nil {
		return nil, err
	}
	return s.openSession(ctx, acct, EventSignedIn)
}

// SignInWithPassword validates credentials and opens a session.
func (s *Service) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	acct, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil || acct == nil {
		return nil, ErrInvalidCredentials
	}
	if acct.PasswordHash == "" || !helpers.CompareHashAndPassword(acct.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.openSession(ctx, acct, EventSignedIn)
}

// GetSession resolves an access token to its session. A missing, invalid,
// or expired token reports signed-out as (nil, nil), not an error.
func (s *Service) GetSession(ctx context.Context, accessToken string) (*Session, error) {
	if accessToken == "" {
		return nil, nil
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return nil, nil
	}
	data, err := s.Redis.HGetAll(ctx, sessionKey(claims.SessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}
	return &Session{
		User:        userFromRecord(data),
		SessionID:   claims.SessionID,
		AccessToken: accessToken,
	}, nil
}

// SignOut terminates the session behind the access token. When the session
// is already gone it reports a 403 "Auth session missing!" *Error, which
// callers are expected to treat as the goal state.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	if accessToken == "" {
		return NewSessionMissingError()
	}
	claims, err := s.JWT.ParseAccessToken(accessToken)
	if err != nil {
		return NewSessionMissingError()
	}
	key := sessionKey(claims.SessionID)
	data, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return NewSessionMissingError()
	}
	if err := s.Redis.Del(ctx, key).Err(); err != nil {
		return err
	}
	s.events.publish(Event{Kind: EventSignedOut, UserID: claims.UserID})
	return nil
}

// Refresh rotates the session id and token pair behind a refresh token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	key := sessionKey(claims.SessionID)
	data, err := s.Redis.HGetAll(ctx, key).Result()
	if err != nil || len(data) == 0 {
		return nil, ErrInvalidCredentials
	}
	acct, err := s.Accounts.GetByID(ctx, claims.UserID)
	if err != nil || acct == nil {
		return nil, ErrInvalidCredentials
	}
	// Rotate: the old session record is replaced, not kept alongside.
	if err := s.Redis.Del(ctx, key).Err(); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("key", key).Warn("stale session delete failed")
	}
	return s.openSession(ctx, acct, EventTokenRefreshed)
}

// DeleteSessionsFor force-expires the session record for a user id as part
// of account deletion. Best effort; the caller logs failures.
func (s *Service) DeleteSessionsFor(ctx context.Context, sessionID, userID string) error {
	if sessionID == "" {
		return nil
	}
	err := s.Redis.Del(ctx, sessionKey(sessionID)).Err()
	s.events.publish(Event{Kind: EventSignedOut, UserID: userID})
	return err
}

func (s *Service) openSession(ctx context.Context, acct *entity.Account, kind EventKind) (*Session, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(acct.ID, sid)
	if err != nil {
		return nil, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(acct.ID, sid)
	if err != nil {
		return nil, err
	}

	key := sessionKey(sid)
	pipe := s.Redis.Pipeline()
	pipe.HSet(ctx, key, map[string]any{
		"user_id":    acct.ID,
		"email":      acct.Email,
		"sid":        sid,
		"created_at": time.Now().UTC().Format(time.RFC3339Nano),
	})
	pipe.Expire(ctx, key, s.SessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	email := acct.Email
	sess := &Session{
		User:             &User{ID: acct.ID, Email: &email},
		SessionID:        sid,
		AccessToken:      access,
		AccessExpiresAt:  aexp,
		RefreshToken:     refresh,
		RefreshExpiresAt: rexp,
	}
	s.events.publish(Event{Kind: kind, UserID: acct.ID, Session: sess})
	return sess, nil
}

func userFromRecord(data map[string]string) *User {
	u := &User{ID: data["user_id"]}
	if email, ok := data["email"]; ok && email != "" {
		u.Email = &email
	}
	return u
}
