package message

import (
	"errors"
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/cache"
	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

const (
	globalHistoryCacheKey = "chat:global:recent"
	globalHistoryCacheTTL = 30 * time.Second
)

// DirectNotifier pushes a realtime event to a recipient's connected sockets.
type DirectNotifier interface {
	NotifyDirectMessage(recipientID string, payload map[string]any)
}

// Handler processes messaging HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	cache    cache.Client
	notifier DirectNotifier
}

// NewHandler constructs a message handler instance. notifier may be nil when
// no realtime server is running.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client, notifier DirectNotifier) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient, notifier: notifier}
}

type sendRequest struct {
	Content string `json:"content" binding:"required"`
}

// Send delivers a direct message to another user.
func (h *Handler) Send(c *gin.Context) {
	recipientID, err := uuid.Parse(c.Param("recipientId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid recipientId", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "content is required", err)
		return
	}

	msg, err := SendDirect(h.db.WithContext(c.Request.Context()), currentUser.ID, recipientID, req.Content)
	if err != nil {
		h.respondError(c, err, "failed to send message")
		return
	}

	h.notifyRecipient(msg, currentUser.FullName)

	response.Created(c, msg, "Message sent.")
}

// notifyRecipient pushes the stored message to the recipient's sockets so an
// open chat updates without polling.
func (h *Handler) notifyRecipient(msg *Message, senderName string) {
	if h.notifier == nil {
		return
	}

	h.notifier.NotifyDirectMessage(msg.RecipientID.String(), map[string]any{
		"messageId":      msg.ID.String(),
		"conversationId": msg.ConversationID.String(),
		"senderId":       msg.SenderID.String(),
		"senderName":     senderName,
		"message":        msg.Content,
		"timestamp":      msg.CreatedAt.UTC().Format(time.RFC3339),
	})
}

// Conversations lists the caller's direct-message threads.
func (h *Handler) Conversations(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	rows, total, err := ListConversations(h.db.WithContext(c.Request.Context()), currentUser.ID, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load conversations", err)
		return
	}

	response.Success(c, http.StatusOK, rows, "", pagination.MetadataFrom(total, params))
}

// Messages lists one conversation's messages and marks incoming ones read.
func (h *Handler) Messages(c *gin.Context) {
	conversationID, err := uuid.Parse(c.Param("conversationId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid conversationId", err)
		return
	}

	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	messages, total, err := ListMessages(h.db.WithContext(c.Request.Context()), conversationID, currentUser.ID, params)
	if err != nil {
		h.respondError(c, err, "failed to load messages")
		return
	}

	response.Success(c, http.StatusOK, messages, "", pagination.MetadataFrom(total, params))
}

// UnreadCount reports how many direct messages the caller has not read.
func (h *Handler) UnreadCount(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	count, err := UnreadCount(h.db.WithContext(c.Request.Context()), currentUser.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to count unread messages", err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"unread": count}, "", nil)
}

// GlobalHistory returns recent global chat messages. The first page is served
// from cache when available since every connected client requests it.
func (h *Handler) GlobalHistory(c *gin.Context) {
	params := pagination.Extract(c)

	if params.Page == 1 && h.cache != nil {
		if redisClient, ok := h.cache.(*cache.RedisClient); ok {
			var cached []ChatMessage
			if err := redisClient.GetJSON(c.Request.Context(), globalHistoryCacheKey, &cached); err == nil && len(cached) > 0 {
				response.Success(c, http.StatusOK, cached, "", nil)
				return
			}
		}
	}

	messages, total, err := GlobalHistory(h.db.WithContext(c.Request.Context()), params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load chat history", err)
		return
	}

	if params.Page == 1 && h.cache != nil {
		if redisClient, ok := h.cache.(*cache.RedisClient); ok {
			if err := redisClient.SetJSON(c.Request.Context(), globalHistoryCacheKey, messages, globalHistoryCacheTTL); err != nil {
				h.logger.Debug("failed to cache chat history", slog.String("error", err.Error()))
			}
		}
	}

	response.Success(c, http.StatusOK, messages, "", pagination.MetadataFrom(total, params))
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrConversationNotFound):
		status = http.StatusNotFound
		message = "Conversation not found."
	case errors.Is(err, ErrRecipientNotFound):
		status = http.StatusNotFound
		message = "Recipient not found."
	case errors.Is(err, ErrNotParticipant):
		status = http.StatusForbidden
		message = "You are not part of this conversation."
	case errors.Is(err, ErrContentRequired):
		status = http.StatusBadRequest
		message = "Message content is required."
	case errors.Is(err, ErrSelfMessage):
		status = http.StatusBadRequest
		message = "You cannot message yourself."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
