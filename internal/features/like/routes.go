package like

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches like endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	likes := router.Group("/likes", requireAuth)

	likes.POST("/toggle/v/:videoId", handler.ToggleVideo)
	likes.POST("/toggle/c/:commentId", handler.ToggleComment)
	likes.GET("/videos", handler.LikedVideos)
}
