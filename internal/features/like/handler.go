package like

import (
	"errors"
	"net/http"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

// Handler processes like HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a like handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// ToggleVideo flips the caller's like on a video.
func (h *Handler) ToggleVideo(c *gin.Context) {
	h.toggle(c, "videoId", ToggleVideoLike)
}

// ToggleComment flips the caller's like on a comment.
func (h *Handler) ToggleComment(c *gin.Context) {
	h.toggle(c, "commentId", ToggleCommentLike)
}

// LikedVideos returns videos the caller has liked.
func (h *Handler) LikedVideos(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	rows, total, err := LikedVideos(h.db.WithContext(c.Request.Context()), currentUser.ID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load liked videos", err)
		return
	}

	response.Success(c, http.StatusOK, rows, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) toggle(c *gin.Context, param string, fn func(*gorm.DB, uuid.UUID, uuid.UUID) (bool, error)) {
	targetID, err := uuid.Parse(c.Param(param))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid "+param, err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	liked, err := fn(h.db.WithContext(c.Request.Context()), targetID, currentUser.ID)
	if err != nil {
		h.respondError(c, err, "failed to toggle like")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"liked": liked}, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	if errors.Is(err, ErrTargetNotFound) {
		status = http.StatusNotFound
		message = "Like target not found."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
