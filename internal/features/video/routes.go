package video

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches video endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth, attachUser gin.HandlerFunc) {
	videos := router.Group("/videos")

	videos.GET("", handler.List)
	videos.POST("", requireAuth, handler.Publish)
	videos.GET("/:videoId", attachUser, handler.GetByID)
	videos.PATCH("/:videoId", requireAuth, handler.Update)
	videos.DELETE("/:videoId", requireAuth, handler.Delete)
	videos.PATCH("/:videoId/toggle-publish", requireAuth, handler.TogglePublish)
	videos.POST("/:videoId/watch", requireAuth, handler.Watch)
	videos.POST("/:videoId/process-ai", requireAuth, handler.ProcessAI)
	videos.GET("/:videoId/ai", handler.GetAI)
}
