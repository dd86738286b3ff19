package user

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/mediastore"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

// Handler processes user account HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	media  *mediastore.Client
}

// NewHandler constructs a user handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, media *mediastore.Client) *Handler {
	return &Handler{db: db, logger: logger, media: media}
}

// CurrentUser returns the authenticated user's account.
func (h *Handler) CurrentUser(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	usr, err := Get(h.db.WithContext(c.Request.Context()), currentUser.ID)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	response.Success(c, http.StatusOK, usr, "", nil)
}

// UpdateAccount changes the authenticated user's full name or email.
func (h *Handler) UpdateAccount(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		FullName *string `json:"fullName"`
		Email    *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid account payload", err)
		return
	}

	usr, err := UpdateAccount(h.db.WithContext(c.Request.Context()), currentUser.ID, UpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		h.respondError(c, err, "failed to update account")
		return
	}

	response.Success(c, http.StatusOK, usr, "Account details updated.", nil)
}

// ChangePassword verifies and replaces the authenticated user's password.
func (h *Handler) ChangePassword(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		OldPassword string `json:"oldPassword" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid password payload", err)
		return
	}

	if err := UpdatePassword(h.db.WithContext(c.Request.Context()), currentUser.ID, req.OldPassword, req.NewPassword); err != nil {
		h.respondError(c, err, "failed to change password")
		return
	}

	response.Success(c, http.StatusOK, true, "Password changed.", nil)
}

// UpdateAvatar replaces the authenticated user's avatar image.
func (h *Handler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", "avatars", func(id uuid.UUID, url, assetID string) (string, error) {
		usr, err := Get(h.db, id)
		if err != nil {
			return "", err
		}
		old := usr.AvatarID
		return old, SetAvatar(h.db.WithContext(c.Request.Context()), id, url, assetID)
	})
}

// UpdateCoverImage replaces the authenticated user's channel cover image.
func (h *Handler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", "covers", func(id uuid.UUID, url, assetID string) (string, error) {
		usr, err := Get(h.db, id)
		if err != nil {
			return "", err
		}
		old := usr.CoverImageID
		return old, SetCoverImage(h.db.WithContext(c.Request.Context()), id, url, assetID)
	})
}

// ChannelProfile returns a channel's public profile with subscriber counts.
func (h *Handler) ChannelProfile(c *gin.Context) {
	username := c.Param("username")
	if username == "" {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "username is required", nil)
		return
	}

	var viewerID *uuid.UUID
	if viewer, ok := middleware.GetUserFromContext(c); ok {
		viewerID = &viewer.ID
	}

	profile, err := GetChannelProfile(h.db.WithContext(c.Request.Context()), username, viewerID)
	if err != nil {
		h.respondError(c, err, "failed to load channel profile")
		return
	}

	// Anonymous profile views are identical for everyone, so let clients
	// cache them briefly. Authenticated views carry isSubscribed.
	if viewerID == nil {
		response.SuccessWithCache(c, http.StatusOK, profile, "", 60)
		return
	}
	response.SuccessNoCache(c, http.StatusOK, profile, "")
}

// watchHistoryRow is a read-only projection of videos referenced by a
// user's watch history.
type watchHistoryRow struct {
	ID           uuid.UUID `gorm:"column:id" json:"id"`
	Title        string    `gorm:"column:title" json:"title"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail"`
	Duration     float64   `gorm:"column:duration" json:"duration"`
	Views        int64     `gorm:"column:views" json:"views"`
	OwnerID      uuid.UUID `gorm:"column:owner_id" json:"ownerId"`
	IsPremium    bool      `gorm:"column:is_premium" json:"isPremium"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
}

func (watchHistoryRow) TableName() string { return "videos" }

// WatchHistory returns the videos the authenticated user has watched.
func (h *Handler) WatchHistory(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	usr, err := Get(h.db.WithContext(c.Request.Context()), currentUser.ID)
	if err != nil {
		h.respondError(c, err, "failed to load user")
		return
	}

	if len(usr.WatchHistory) == 0 {
		response.Success(c, http.StatusOK, []watchHistoryRow{}, "", nil)
		return
	}

	var rows []watchHistoryRow
	if err := h.db.WithContext(c.Request.Context()).
		Where("id = ANY(?::uuid[])", usr.WatchHistory).
		Find(&rows).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load watch history", err)
		return
	}

	// Preserve history order (most recent last in the stored array).
	byID := make(map[uuid.UUID]watchHistoryRow, len(rows))
	for _, row := range rows {
		byID[row.ID] = row
	}

	ordered := make([]watchHistoryRow, 0, len(rows))
	for _, raw := range usr.WatchHistory {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if row, found := byID[id]; found {
			ordered = append(ordered, row)
		}
	}

	response.Success(c, http.StatusOK, ordered, "", nil)
}

func (h *Handler) updateImage(c *gin.Context, field, folder string, apply func(id uuid.UUID, url, assetID string) (string, error)) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	file, err := c.FormFile(field)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, field+" file is required", err)
		return
	}

	tempPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, tempPath); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to store upload", err)
		return
	}
	defer os.Remove(tempPath)

	uploaded, err := h.media.UploadFile(c.Request.Context(), tempPath, folder, mediastore.ResourceImage)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload "+field, err)
		return
	}

	oldAssetID, err := apply(currentUser.ID, uploaded.URL, uploaded.PublicID)
	if err != nil {
		h.respondError(c, err, "failed to update "+field)
		return
	}

	if oldAssetID != "" {
		if err := h.media.Delete(c.Request.Context(), oldAssetID, mediastore.ResourceImage); err != nil {
			h.logger.Warn("failed to delete previous asset",
				slog.String("asset_id", oldAssetID),
				slog.String("error", err.Error()),
			)
		}
	}

	response.Success(c, http.StatusOK, gin.H{field: uploaded.URL}, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrUserNotFound):
		status = http.StatusNotFound
		message = "User not found."
	case errors.Is(err, ErrEmailTaken):
		status = http.StatusConflict
		message = "Email is already registered."
	case errors.Is(err, ErrUsernameTaken):
		status = http.StatusConflict
		message = "Username is already taken."
	case errors.Is(err, ErrInvalidPassword):
		status = http.StatusBadRequest
		message = "Current password is incorrect."
	case errors.Is(err, ErrMissingFields):
		status = http.StatusBadRequest
		message = "Required fields are missing."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
