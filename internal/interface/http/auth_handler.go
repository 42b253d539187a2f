package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/profilehub/profilehub/internal/auth"
	"github.com/profilehub/profilehub/internal/session"
	"github.com/profilehub/profilehub/pkg/helpers"
	"github.com/profilehub/profilehub/pkg/response"
	"github.com/profilehub/profilehub/pkg/validation"
)

type AuthHandler struct {
	Svc        *auth.Service
	Logger     *logrus.Logger
	Cookies    *helpers.Manager
	ServiceURL string
}

func NewAuthHandler(svc *auth.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool, serviceURL string) *AuthHandler {
	return &AuthHandler{
		Svc:        svc,
		Logger:     logger,
		Cookies:    helpers.NewCookie(cookieDomain, cookieSecure),
		ServiceURL: serviceURL,
	}
}

type credentialsRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
}

func sessionPayload(sess *auth.Session) gin.H {
	return gin.H{
		"user":               sess.User,
		"session_id":         sess.SessionID,
		"access_expires_at":  sess.AccessExpiresAt,
		"refresh_expires_at": sess.RefreshExpiresAt,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	sess, err := h.Svc.SignUp(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			response.Error[any](c, http.StatusConflict, "email already registered", nil)
			return
		}
		h.Logger.WithError(err).Error("sign up failed")
		response.Error[any](c, http.StatusInternalServerError, "sign up failed", nil)
		return
	}
	h.Cookies.SetPair(c, sess.AccessToken, sess.AccessExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	response.Success(c, http.StatusCreated, sessionPayload(sess), "account created", nil)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	sess, err := h.Svc.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}
	h.Cookies.SetPair(c, sess.AccessToken, sess.AccessExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	response.Success(c, http.StatusOK, sessionPayload(sess), "login successful", nil)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	refresh, err := c.Cookie("refresh_token")
	if err != nil || refresh == "" {
		response.Error[any](c, http.StatusUnauthorized, "missing refresh token", nil)
		return
	}
	sess, err := h.Svc.Refresh(c.Request.Context(), refresh)
	if err != nil {
		response.Error[any](c, http.StatusUnauthorized, "invalid refresh token", nil)
		return
	}
	h.Cookies.SetPair(c, sess.AccessToken, sess.AccessExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	response.Success(c, http.StatusOK, sessionPayload(sess), "token refreshed", nil)
}

// Session reports the caller's current session state without requiring one.
func (h *AuthHandler) Session(c *gin.Context) {
	token, _ := c.Cookie("access_token")
	sess, err := h.Svc.GetSession(c.Request.Context(), token)
	if err != nil {
		h.Logger.WithError(err).Error("session lookup failed")
		response.Error[any](c, http.StatusInternalServerError, "session lookup failed", nil)
		return
	}
	if sess == nil {
		response.Success[any](c, http.StatusOK, gin.H{"user": nil}, "signed out", nil)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"user": sess.User, "session_id": sess.SessionID}, "session", nil)
}

// Logout signs the caller out. It is deliberately reachable without the Auth
// middleware: a request whose session is already gone must still succeed and
// clear cookies, not bounce with 401.
func (h *AuthHandler) Logout(c *gin.Context) {
	token, _ := c.Cookie("access_token")

	r := session.NewResolver(c.Request.Context(), h.Svc.BindToken(token), h.Logger)
	defer r.Close()

	if err := r.SignOut(c.Request.Context()); err != nil {
		response.Error[any](c, http.StatusBadGateway, "sign out failed", err.Error())
		return
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"logged_out": true}, "logged out", nil)
}

// Watch streams session-state snapshots over SSE until the client hangs up.
func (h *AuthHandler) Watch(c *gin.Context) {
	token, _ := c.Cookie("access_token")

	r := session.NewResolver(c.Request.Context(), h.Svc.BindToken(token), h.Logger)
	defer r.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	c.SSEvent("session", r.Snapshot())
	c.Writer.Flush()

	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case st, ok := <-r.Updates():
			if !ok {
				return false
			}
			c.SSEvent("session", st)
			return true
		case <-clientGone:
			return false
		}
	})
}

// OAuthStart redirects the browser to the provider's consent screen.
func (h *AuthHandler) OAuthStart(c *gin.Context) {
	provider := c.Param("provider")
	url, err := h.Svc.SignInWithOAuth(c.Request.Context(), provider, auth.OAuthOptions{
		RedirectTo: h.ServiceURL + "/api/auth/oauth/" + provider + "/callback",
	})
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUnknownProvider):
			response.Error[any](c, http.StatusBadRequest, "unknown oauth provider", nil)
		case errors.Is(err, auth.ErrOAuthNotConfigured):
			response.Error[any](c, http.StatusServiceUnavailable, "oauth provider not configured", nil)
		default:
			h.Logger.WithError(err).Error("oauth start failed")
			response.Error[any](c, http.StatusInternalServerError, "oauth start failed", nil)
		}
		return
	}
	c.Redirect(http.StatusFound, url)
}

// OAuthCallback completes the provider flow and opens a session.
func (h *AuthHandler) OAuthCallback(c *gin.Context) {
	provider := c.Param("provider")
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		response.Error[any](c, http.StatusBadRequest, "missing code or state", nil)
		return
	}
	redirectTo := h.ServiceURL + "/api/auth/oauth/" + provider + "/callback"
	sess, err := h.Svc.ExchangeOAuthCode(c.Request.Context(), provider, code, state, redirectTo)
	if err != nil {
		var ae *auth.Error
		if errors.As(err, &ae) {
			status := ae.Status
			if status == 0 {
				status = http.StatusBadRequest
			}
			response.Error[any](c, status, ae.Message, nil)
			return
		}
		h.Logger.WithError(err).Error("oauth callback failed")
		response.Error[any](c, http.StatusInternalServerError, "oauth sign-in failed", nil)
		return
	}
	h.Cookies.SetPair(c, sess.AccessToken, sess.AccessExpiresAt, sess.RefreshToken, sess.RefreshExpiresAt)
	c.Redirect(http.StatusFound, h.ServiceURL+"/")
}
