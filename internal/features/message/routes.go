package message

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches messaging endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	messages := router.Group("/messages", requireAuth)

	messages.POST("/d/:recipientId", handler.Send)
	messages.GET("/conversations", handler.Conversations)
	messages.GET("/c/:conversationId", handler.Messages)
	messages.GET("/unread-count", handler.UnreadCount)
	messages.GET("/global", handler.GlobalHistory)
}
