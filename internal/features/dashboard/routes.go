package dashboard

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches dashboard endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	dashboard := router.Group("/dashboard", requireAuth)

	dashboard.GET("/stats", handler.Stats)
	dashboard.GET("/videos", handler.Videos)
}
