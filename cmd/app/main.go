package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/barterskills/barterskills-server-go/internal/bootstrap"
	"github.com/barterskills/barterskills-server-go/internal/http/routes"
	"github.com/barterskills/barterskills-server-go/internal/services/enrichment"
	"github.com/barterskills/barterskills-server-go/pkg/ai"
	"github.com/barterskills/barterskills-server-go/pkg/cache"
	"github.com/barterskills/barterskills-server-go/pkg/config"
	"github.com/barterskills/barterskills-server-go/pkg/database"
	"github.com/barterskills/barterskills-server-go/pkg/email"
	"github.com/barterskills/barterskills-server-go/pkg/jobs"
	"github.com/barterskills/barterskills-server-go/pkg/logger"
	"github.com/barterskills/barterskills-server-go/pkg/mediastore"
	"github.com/barterskills/barterskills-server-go/pkg/metrics"
	"github.com/barterskills/barterskills-server-go/pkg/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/razorpay"
	"github.com/barterskills/barterskills-server-go/pkg/request"
	socketioserver "github.com/barterskills/barterskills-server-go/pkg/socketio"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	appLogger, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Connect(ctx, cfg.Database, appLogger)
	if err != nil {
		appLogger.Error("database connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	defer func() {
		if err := database.Close(db, appLogger); err != nil {
			appLogger.Error("database close failed", slog.String("error", err.Error()))
		}
	}()

	if err := bootstrap.ApplyDatabaseMigrations(db, cfg, appLogger); err != nil {
		appLogger.Error("migrations failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Media storage client
	mediaClient := mediastore.NewClient(
		cfg.Media.CloudName,
		cfg.Media.APIKey,
		cfg.Media.APISecret,
		cfg.Media.BaseURL,
		cfg.Media.CDNURL,
	)

	// Payment gateway client
	gatewayClient := razorpay.NewClient(
		cfg.Razorpay.KeyID,
		cfg.Razorpay.KeySecret,
		cfg.Razorpay.BaseURL,
	)

	// Email client
	emailClient := email.NewClient(
		cfg.Email.Host,
		cfg.Email.Port,
		cfg.Email.Username,
		cfg.Email.Password,
		cfg.Email.From,
		cfg.Email.Secure,
	)

	// Redis cache (optional; disabled client when no address configured)
	cacheClient, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		appLogger.Error("redis connection failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cacheClient.Close()

	// Google sign-in
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.GoogleAuth.ClientID,
		ClientSecret: cfg.GoogleAuth.ClientSecret,
		RedirectURL:  cfg.GoogleAuth.RedirectURL,
		Scopes: []string{
			"https://www.googleapis.com/auth/userinfo.email",
			"https://www.googleapis.com/auth/userinfo.profile",
		},
		Endpoint: google.Endpoint,
	}

	// AI enrichment pipeline
	transcriber := ai.NewTranscriber(cfg.AI.WhisperBinary, cfg.AI.WhisperModel)
	summarizer := ai.NewSummarizer(cfg.AI.HFToken, cfg.AI.SummaryModel, cfg.AI.SummaryBaseURL, cfg.AI.SummaryTimeout)
	questionClient := ai.NewQuestionClient(cfg.AI.QuestionsURL, cfg.AI.SummaryTimeout)
	enricher := enrichment.NewService(db, appLogger, mediaClient, transcriber, summarizer, questionClient, cfg.AI.ScratchDir)

	// Socket.IO server for global chat
	socketIOServer, err := socketioserver.NewServer(db, appLogger, cfg.JWTSecret)
	if err != nil {
		appLogger.Error("socket.io server initialization failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer socketIOServer.Close()

	appLogger.Info("socket.io server initialized")

	// Background jobs
	scheduler := jobs.NewScheduler(appLogger)
	scheduler.AddJob(
		jobs.NewPremiumExpiryJob(db, emailClient, appLogger),
		24*time.Hour,
	)
	scheduler.Start()
	defer scheduler.Stop()

	router := gin.New()

	// Mount Socket.IO handler FIRST before any middleware that could interfere
	// Socket.IO needs minimal middleware - just recovery and CORS
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Register Socket.IO routes with minimal middleware
	router.GET("/socket.io/*any", gin.WrapH(socketIOServer.GetHandler()))
	router.POST("/socket.io/*any", gin.WrapH(socketIOServer.GetHandler()))

	// Now apply full middleware stack for all other routes
	router.Use(middleware.RequestID())                         // Add request IDs for tracing
	router.Use(middleware.Compression(middleware.BestSpeed))   // Compress responses (gzip)
	router.Use(middleware.RequestLogger(appLogger))            // Log all requests
	router.Use(middleware.SecurityHeaders())                   // Add security headers
	router.Use(middleware.CacheControl())                      // Set cache headers
	router.Use(middleware.RequestSizeLimit(500 * 1024 * 1024)) // 500MB for video uploads
	router.Use(metrics.Middleware())                           // Collect Prometheus metrics
	router.Use(request.Handler(appLogger))                     // Request context handler

	// Rate limiting (100 requests per minute per IP)
	rateLimiter := middleware.NewRateLimiter(100, time.Minute)
	router.Use(rateLimiter.Middleware())

	routes.Register(router, cfg, routes.Dependencies{
		DB:       db,
		Logger:   appLogger,
		Media:    mediaClient,
		Email:    emailClient,
		Gateway:  gatewayClient,
		Cache:    cacheClient,
		OAuth:    oauthConfig,
		Enricher: enricher,
		Chat:     socketIOServer,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddress(),
		Handler:           router,
		ReadTimeout:       10 * time.Minute, // large video uploads
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		appLogger.Info("server starting",
			slog.String("addr", cfg.ServerAddress()),
			slog.String("env", cfg.Env),
			slog.String("log_level", cfg.LogLevel),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("server listen failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	appLogger.Info("server started successfully")

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("server shutdown failed", slog.String("error", err.Error()))
	} else {
		appLogger.Info("server stopped gracefully")
	}
}
