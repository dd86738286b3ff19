package billing

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches billing endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, requireAuth gin.HandlerFunc) {
	billing := router.Group("/billing", requireAuth)

	billing.POST("/orders", handler.CreateOrder)
	billing.POST("/verify", handler.VerifyPayment)
}
