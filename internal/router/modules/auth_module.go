package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/profilehub/profilehub/internal/container"
	handlers "github.com/profilehub/profilehub/internal/interface/http"
	"github.com/profilehub/profilehub/internal/interface/middleware"
)

// AuthModule registers the authentication surface.
// Everything here is public: sign-up, login, OAuth, refresh, session
// inspection, the session watch stream, and logout. Logout in particular
// must stay outside the Auth middleware so a caller whose session is
// already gone can still converge to signed-out and clear cookies.
type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	signupLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIP(), nil)
	refreshLimiter := middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyByIP(), nil)
	oauthLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/signup", signupLimiter, m.Handler.SignUp)
	rg.POST("/auth/login", loginLimiter, m.Handler.Login)
	rg.POST("/auth/refresh", refreshLimiter, m.Handler.Refresh)
	rg.GET("/auth/oauth/:provider", oauthLimiter, m.Handler.OAuthStart)
	rg.GET("/auth/oauth/:provider/callback", oauthLimiter, m.Handler.OAuthCallback)

	rg.GET("/session", m.Handler.Session)
	rg.GET("/session/watch", m.Handler.Watch)
	rg.POST("/auth/logout", m.Handler.Logout)
}
