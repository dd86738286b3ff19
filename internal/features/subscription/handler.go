package subscription

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

// Handler processes subscription HTTP requests.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewHandler constructs a subscription handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger) *Handler {
	return &Handler{db: db, logger: logger}
}

// Toggle flips the caller's subscription to a channel.
func (h *Handler) Toggle(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("channelId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid channelId", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	subscribed, err := Toggle(h.db.WithContext(c.Request.Context()), currentUser.ID, channelID)
	if err != nil {
		h.respondError(c, err, "failed to toggle subscription")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"subscribed": subscribed}, "", nil)
}

// Subscribers lists the users subscribed to a channel.
func (h *Handler) Subscribers(c *gin.Context) {
	channelID, err := uuid.Parse(c.Param("channelId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid channelId", err)
		return
	}

	params := pagination.Extract(c)

	rows, total, err := Subscribers(h.db.WithContext(c.Request.Context()), channelID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load subscribers", err)
		return
	}

	response.Success(c, http.StatusOK, rows, "", pagination.MetadataFrom(total, params))
}

// Subscribed lists the channels the caller follows.
func (h *Handler) Subscribed(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	rows, total, err := SubscribedChannels(h.db.WithContext(c.Request.Context()), currentUser.ID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load subscribed channels", err)
		return
	}

	response.Success(c, http.StatusOK, rows, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrChannelNotFound):
		status = http.StatusNotFound
		message = "Channel not found."
	case errors.Is(err, ErrSelfSubscribe):
		status = http.StatusBadRequest
		message = "You cannot subscribe to your own channel."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
