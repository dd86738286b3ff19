package routes

import (
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/auth"
	"github.com/barterskills/barterskills-server-go/internal/features/billing"
	"github.com/barterskills/barterskills-server-go/internal/features/comment"
	"github.com/barterskills/barterskills-server-go/internal/features/dashboard"
	"github.com/barterskills/barterskills-server-go/internal/features/like"
	"github.com/barterskills/barterskills-server-go/internal/features/message"
	"github.com/barterskills/barterskills-server-go/internal/features/subscription"
	"github.com/barterskills/barterskills-server-go/internal/features/user"
	"github.com/barterskills/barterskills-server-go/internal/features/video"
	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/cache"
	"github.com/barterskills/barterskills-server-go/pkg/config"
	"github.com/barterskills/barterskills-server-go/pkg/email"
	"github.com/barterskills/barterskills-server-go/pkg/health"
	"github.com/barterskills/barterskills-server-go/pkg/mediastore"
	"github.com/barterskills/barterskills-server-go/pkg/metrics"
	"github.com/barterskills/barterskills-server-go/pkg/razorpay"
)

// Dependencies carries the shared clients handed to feature handlers.
type Dependencies struct {
	DB       *gorm.DB
	Logger   *slog.Logger
	Media    *mediastore.Client
	Email    *email.Client
	Gateway  *razorpay.Client
	Cache    cache.Client
	OAuth    *oauth2.Config
	Enricher video.Enricher
	Chat     message.DirectNotifier
}

// Register wires all feature routes onto the engine.
func Register(engine *gin.Engine, cfg *config.Config, deps Dependencies) {
	db := deps.DB
	logger := deps.Logger

	// Health check endpoints (no /api prefix for Kubernetes probes)
	healthHandler := health.NewHandler(db, logger)
	engine.GET("/health", healthHandler.Health)
	engine.GET("/ready", healthHandler.Ready)
	engine.GET("/version", healthHandler.Version)

	// Metrics endpoint for Prometheus
	engine.GET("/metrics", metrics.Handler())

	// Database stats endpoint (protected in production)
	if !cfg.IsProduction() {
		engine.GET("/debug/db-stats", healthHandler.DBStats)
	}

	api := engine.Group("/api")

	authMiddleware := middleware.NewAuthMiddleware(db, cfg.JWTSecret, logger)
	requireAuth := authMiddleware.RequireAuth()
	attachUser := authMiddleware.AttachUser()

	tokens := auth.TokenConfig{
		JWTSecret:          cfg.JWTSecret,
		JWTRefreshSecret:   cfg.JWTRefreshSecret,
		AccessTokenExpiry:  time.Hour,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
	}

	authHandler := auth.NewHandler(db, logger, deps.Media, deps.Email, deps.OAuth, tokens)
	auth.RegisterRoutes(api, authHandler)

	userHandler := user.NewHandler(db, logger, deps.Media)
	user.RegisterRoutes(api, userHandler, requireAuth, attachUser)

	videoHandler := video.NewHandler(db, logger, deps.Media, deps.Enricher, cfg.AI.FFProbeBinary)
	video.RegisterRoutes(api, videoHandler, requireAuth, attachUser)

	commentHandler := comment.NewHandler(db, logger)
	comment.RegisterRoutes(api, commentHandler, requireAuth)

	likeHandler := like.NewHandler(db, logger)
	like.RegisterRoutes(api, likeHandler, requireAuth)

	subscriptionHandler := subscription.NewHandler(db, logger)
	subscription.RegisterRoutes(api, subscriptionHandler, requireAuth)

	messageHandler := message.NewHandler(db, logger, deps.Cache, deps.Chat)
	message.RegisterRoutes(api, messageHandler, requireAuth)

	billingHandler := billing.NewHandler(db, logger, deps.Gateway, deps.Email)
	billing.RegisterRoutes(api, billingHandler, requireAuth)

	dashboardHandler := dashboard.NewHandler(db, logger, deps.Cache)
	dashboard.RegisterRoutes(api, dashboardHandler, requireAuth)
}
