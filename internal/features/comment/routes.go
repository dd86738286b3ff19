package comment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches comment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	comments := router.Group("/comments")

	comments.GET("/:videoId", handler.List)
	comments.POST("/:videoId", requireAuth, handler.Create)
	comments.PATCH("/c/:commentId", requireAuth, handler.Update)
	comments.DELETE("/c/:commentId", requireAuth, handler.Delete)
}
