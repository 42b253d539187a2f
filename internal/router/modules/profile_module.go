package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/profilehub/profilehub/internal/container"
	handlers "github.com/profilehub/profilehub/internal/interface/http"
	"github.com/profilehub/profilehub/internal/interface/middleware"
	"github.com/profilehub/profilehub/pkg/helpers"
)

// ProfileModule registers the profile surface. All routes require an
// authenticated session.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	JWT     *helpers.JWTManager
}

func NewProfileModule(h *handlers.ProfileHandler, jwt *helpers.JWTManager) *ProfileModule {
	return &ProfileModule{Handler: h, JWT: jwt}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(container.GetRedis(), m.JWT))
	auth.Use(
		middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP()),
		middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByUserID(), nil),
	)

	uploadLimiter := middleware.RateLimit(container.GetRedis(), 20, time.Minute, middleware.KeyByUserID(), nil)

	{
		auth.GET("/profile", m.Handler.Get)
		auth.PUT("/profile", m.Handler.Save)
		auth.POST("/profile/avatar", uploadLimiter, m.Handler.UploadAvatar)
		auth.POST("/profile/cover", uploadLimiter, m.Handler.UploadCover)
		auth.POST("/profile/gallery", uploadLimiter, m.Handler.AddGalleryImage)
		auth.DELETE("/profile/gallery", m.Handler.RemoveGalleryImage)
		auth.GET("/profiles/search", m.Handler.Search)
		auth.DELETE("/account", m.Handler.DeleteAccount)
	}
}
