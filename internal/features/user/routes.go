package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches user account endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth, attachUser gin.HandlerFunc) {
	users := router.Group("/users")

	users.GET("/me", requireAuth, handler.CurrentUser)
	users.PATCH("/me", requireAuth, handler.UpdateAccount)
	users.POST("/change-password", requireAuth, handler.ChangePassword)
	users.PATCH("/me/avatar", requireAuth, handler.UpdateAvatar)
	users.PATCH("/me/cover-image", requireAuth, handler.UpdateCoverImage)
	users.GET("/me/history", requireAuth, handler.WatchHistory)
	users.GET("/c/:username", attachUser, handler.ChannelProfile)
}
