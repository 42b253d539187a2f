package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/profilehub/profilehub/internal/application"
	"github.com/profilehub/profilehub/internal/auth"
	"github.com/profilehub/profilehub/internal/infrastructure/gcstore"
	"github.com/profilehub/profilehub/internal/infrastructure/postgres"
	"github.com/profilehub/profilehub/pkg/helpers"
	"github.com/profilehub/profilehub/pkg/response"
	"github.com/profilehub/profilehub/pkg/validation"
)

type ProfileHandler struct {
	Svc     *application.ProfileService
	Auth    *auth.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewProfileHandler(svc *application.ProfileService, authSvc *auth.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *ProfileHandler {
	return &ProfileHandler{
		Svc:     svc,
		Auth:    authSvc,
		Logger:  logger,
		Cookies: helpers.NewCookie(cookieDomain, cookieSecure),
	}
}

// renderProfileError maps service errors onto HTTP responses. User-facing
// messages pass through verbatim; anything else is logged and masked.
func (h *ProfileHandler) renderProfileError(c *gin.Context, err error) {
	var ve *application.ValidationError
	if errors.As(err, &ve) {
		response.Error[any](c, http.StatusUnprocessableEntity, ve.Message, nil)
		return
	}
	var ue *gcstore.UploadError
	if errors.As(err, &ue) {
		response.Error[any](c, http.StatusUnprocessableEntity, ue.Message, nil)
		return
	}
	var fe *postgres.UserFacingError
	if errors.As(err, &fe) {
		response.Error[any](c, http.StatusConflict, fe.Message, nil)
		return
	}
	if errors.Is(err, application.ErrProfileNotFound) {
		response.Error[any](c, http.StatusNotFound, "profile not found", nil)
		return
	}
	h.Logger.WithError(err).Error("profile operation failed")
	response.Error[any](c, http.StatusInternalServerError, "something went wrong", nil)
}

// Get returns the caller's profile, creating a default row on first login.
func (h *ProfileHandler) Get(c *gin.Context) {
	uid := c.GetString("userID")
	email := c.GetString("userEmail")
	p, err := h.Svc.LoadOrCreate(c.Request.Context(), uid, email)
	if err != nil {
		h.renderProfileError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile", nil)
}

func (h *ProfileHandler) Save(c *gin.Context) {
	uid := c.GetString("userID")
	var req application.SaveInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.Save(c.Request.Context(), uid, req)
	if err != nil {
		h.renderProfileError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "profile updated", nil)
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	h.upload(c, gcstore.CategoryAvatar)
}

func (h *ProfileHandler) UploadCover(c *gin.Context) {
	h.upload(c, gcstore.CategoryCover)
}

func (h *ProfileHandler) AddGalleryImage(c *gin.Context) {
	h.upload(c, gcstore.CategoryGallery)
}

func (h *ProfileHandler) upload(c *gin.Context, category string) {
	uid := c.GetString("userID")
	fh, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "missing file field", nil)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "unreadable file", nil)
		return
	}
	defer func() { _ = f.Close() }()

	ctx := c.Request.Context()
	var p any
	switch category {
	case gcstore.CategoryAvatar:
		p, err = h.Svc.UploadAvatar(ctx, uid, fh.Filename, fh.Size, f)
	case gcstore.CategoryCover:
		p, err = h.Svc.UploadCover(ctx, uid, fh.Filename, fh.Size, f)
	default:
		p, err = h.Svc.AddGalleryImage(ctx, uid, fh.Filename, fh.Size, f)
	}
	if err != nil {
		h.renderProfileError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "image uploaded", nil)
}

type removeGalleryRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *ProfileHandler) RemoveGalleryImage(c *gin.Context) {
	uid := c.GetString("userID")
	var req removeGalleryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}
	p, err := h.Svc.RemoveGalleryImage(c.Request.Context(), uid, req.URL)
	if err != nil {
		h.renderProfileError(c, err)
		return
	}
	response.Success(c, http.StatusOK, p, "image removed", nil)
}

func (h *ProfileHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		response.Error[any](c, http.StatusBadRequest, "missing query", nil)
		return
	}
	size := 10
	if s := c.Query("size"); s != "" {
		if n, err := parsePositive(s); err == nil {
			size = n
		}
	}
	hits, err := h.Svc.SearchProfiles(c.Request.Context(), q, size)
	if err != nil {
		h.Logger.WithError(err).Error("profile search failed")
		response.Error[any](c, http.StatusBadGateway, "search unavailable", nil)
		return
	}
	response.Success(c, http.StatusOK, hits, "search results", map[string]any{"count": len(hits)})
}

// DeleteAccount removes the profile, its media, and the account, then tears
// down the caller's session and cookies.
func (h *ProfileHandler) DeleteAccount(c *gin.Context) {
	uid := c.GetString("userID")
	sid := c.GetString("sessionID")

	if err := h.Svc.DeleteAccount(c.Request.Context(), uid); err != nil {
		h.renderProfileError(c, err)
		return
	}
	if err := h.Auth.DeleteSessionsFor(c.Request.Context(), sid, uid); err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Warn("session cleanup after account deletion failed")
	}
	h.Cookies.Clear(c)
	response.Success[any](c, http.StatusOK, gin.H{"deleted": true}, "account deleted", nil)
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, errors.New("not positive")
	}
	return n, nil
}
