package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// OAuthOptions mirrors the provider sign-in options the public API accepts.
type OAuthOptions struct {
	RedirectTo  string
	QueryParams map[string]string
}

// OAuthProvider holds the credentials for one upstream provider.
type OAuthProvider struct {
	ClientID     string
	ClientSecret string
}

func keyOAuthState(tok string) string { return "oauth:state:" + tok }

// ConfigureGoogle enables the google provider. Leaving it unconfigured makes
// SignInWithOAuth fail with ErrOAuthNotConfigured.
func (s *Service) ConfigureGoogle(clientID, clientSecret string) {
	s.google = &OAuthProvider{ClientID: clientID, ClientSecret: clientSecret}
}

func (s *Service) oauthConfig(provider, redirectTo string) (*oauth2.Config, error) {
	if provider != "google" {
		return nil, ErrUnknownProvider
	}
	if s.google == nil || s.google.ClientID == "" {
		return nil, ErrOAuthNotConfigured
	}
	return &oauth2.Config{
		ClientID:     s.google.ClientID,
		ClientSecret: s.google.ClientSecret,
		RedirectURL:  redirectTo,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

// SignInWithOAuth builds the provider authorization URL. The state token is
// parked in Redis and must round-trip through the callback.
func (s *Service) SignInWithOAuth(ctx context.Context, provider string, opts OAuthOptions) (string, error) {
	cfg, err := s.oauthConfig(provider, opts.RedirectTo)
	if err != nil {
		return "", err
	}
	state := uuid.NewString()
	if err := s.Redis.Set(ctx, keyOAuthState(state), provider, 10*time.Minute).Err(); err != nil {
		return "", err
	}
	extra := make([]oauth2.AuthCodeOption, 0, len(opts.QueryParams))
	for k, v := range opts.QueryParams {
		extra = append(extra, oauth2.SetAuthURLParam(k, v))
	}
	return cfg.AuthCodeURL(state, extra...), nil
}

// ExchangeOAuthCode completes the callback: validates state, swaps the code
// for provider tokens, resolves the user's email, upserts the account, and
// opens a session.
func (s *Service) ExchangeOAuthCode(ctx context.Context, provider, code, state, redirectTo string) (*Session, error) {
	stored, err := s.Redis.GetDel(ctx, keyOAuthState(state)).Result()
	if err != nil || stored != provider {
		return nil, &Error{Status: 403, Message: "invalid oauth state"}
	}
	cfg, err := s.oauthConfig(provider, redirectTo)
	if err != nil {
		return nil, err
	}
	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, &Error{Status: 401, Message: "oauth code exchange failed: " + err.Error()}
	}
	email, err := fetchGoogleEmail(ctx, cfg, tok)
	if err != nil {
		return nil, err
	}
	acct, err := s.Accounts.UpsertOAuth(ctx, email, provider)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, acct, EventSignedIn)
}

func fetchGoogleEmail(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token) (string, error) {
	client := cfg.Client(ctx, tok)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://www.googleapis.com/oauth2/v2/userinfo", nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", &Error{Status: resp.StatusCode, Message: "userinfo fetch failed", Response: &ErrorResponse{Status: resp.StatusCode}}
	}
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.Email == "" {
		return "", &Error{Status: 400, Message: "oauth provider returned no email"}
	}
	return body.Email, nil
}
