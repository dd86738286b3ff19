package auth

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches authentication endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler) {
	authGroup := router.Group("/auth")

	authGroup.POST("/register", handler.Register)
	authGroup.POST("/login", handler.Login)
	authGroup.POST("/google", handler.GoogleLogin)
	authGroup.POST("/logout", handler.Logout)
	authGroup.POST("/refresh-token", handler.Refresh)
}
