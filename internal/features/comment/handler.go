package comment

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

// Handler processes comment HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a comment handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// List returns comments for a video, paginated.
func (h *Handler) List(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	params := pagination.Extract(c)

	comments, total, err := ListByVideo(h.db.WithContext(c.Request.Context()), videoID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load comments", err)
		return
	}

	response.Success(c, http.StatusOK, comments, "", pagination.MetadataFrom(total, params))
}

// Create adds a comment to a video.
func (h *Handler) Create(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid comment payload", err)
		return
	}

	comment, err := Create(h.db.WithContext(c.Request.Context()), videoID, currentUser.ID, req.Content)
	if err != nil {
		h.respondError(c, err, "failed to create comment")
		return
	}

	response.Created(c, comment, "")
}

// Update changes a comment's content.
func (h *Handler) Update(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid comment id", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid comment payload", err)
		return
	}

	comment, err := Update(h.db.WithContext(c.Request.Context()), commentID, currentUser.ID, req.Content)
	if err != nil {
		h.respondError(c, err, "failed to update comment")
		return
	}

	response.Success(c, http.StatusOK, comment, "", nil)
}

// Delete removes a comment.
func (h *Handler) Delete(c *gin.Context) {
	commentID, err := uuid.Parse(c.Param("commentId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid comment id", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	if err := Delete(h.db.WithContext(c.Request.Context()), commentID, currentUser.ID); err != nil {
		h.respondError(c, err, "failed to delete comment")
		return
	}

	response.Success(c, http.StatusOK, true, "", nil)
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrCommentNotFound):
		status = http.StatusNotFound
		message = "Comment not found."
	case errors.Is(err, ErrContentRequired):
		status = http.StatusBadRequest
		message = "Comment content is required."
	case errors.Is(err, ErrNotOwner):
		status = http.StatusForbidden
		message = "Only the owner can modify this comment."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
