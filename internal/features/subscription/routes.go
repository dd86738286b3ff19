package subscription

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches subscription endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	subscriptions := router.Group("/subscriptions")

	subscriptions.GET("/c/:channelId", handler.Subscribers)
	subscriptions.POST("/c/:channelId", requireAuth, handler.Toggle)
	subscriptions.GET("/me", requireAuth, handler.Subscribed)
}
