package dashboard

import (
	"net/http"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/video"
	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/cache"
	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

const statsCacheTTL = 60 * time.Second

// Handler serves the creator dashboard.
type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	cache  cache.Client
}

// NewHandler constructs a dashboard handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, cacheClient cache.Client) *Handler {
	return &Handler{db: db, logger: logger, cache: cacheClient}
}

// ChannelStats aggregates a creator's channel numbers.
type ChannelStats struct {
	TotalVideos      int64 `json:"totalVideos"`
	TotalViews       int64 `json:"totalViews"`
	TotalSubscribers int64 `json:"totalSubscribers"`
	TotalLikes       int64 `json:"totalLikes"`
}

// Stats returns aggregate numbers for the caller's channel.
func (h *Handler) Stats(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	cacheKey := "dashboard:stats:" + currentUser.ID.String()
	if redisClient, ok := h.cache.(*cache.RedisClient); ok {
		var cached ChannelStats
		if err := redisClient.GetJSON(c.Request.Context(), cacheKey, &cached); err == nil {
			response.Success(c, http.StatusOK, cached, "", nil)
			return
		}
	}

	db := h.db.WithContext(c.Request.Context())

	stats, err := collectStats(db, currentUser.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load channel stats", err)
		return
	}

	if redisClient, ok := h.cache.(*cache.RedisClient); ok {
		if err := redisClient.SetJSON(c.Request.Context(), cacheKey, stats, statsCacheTTL); err != nil {
			h.logger.Debug("failed to cache dashboard stats", slog.String("error", err.Error()))
		}
	}

	response.Success(c, http.StatusOK, stats, "", nil)
}

func collectStats(db *gorm.DB, ownerID uuid.UUID) (*ChannelStats, error) {
	var stats ChannelStats

	if err := db.Table("videos").Where("owner_id = ?", ownerID).Count(&stats.TotalVideos).Error; err != nil {
		return nil, err
	}

	var totalViews *int64
	if err := db.Table("videos").
		Where("owner_id = ?", ownerID).
		Select("SUM(views)").
		Scan(&totalViews).Error; err != nil {
		return nil, err
	}
	if totalViews != nil {
		stats.TotalViews = *totalViews
	}

	if err := db.Table("subscriptions").Where("channel_id = ?", ownerID).Count(&stats.TotalSubscribers).Error; err != nil {
		return nil, err
	}

	if err := db.Table("likes").
		Joins("JOIN videos ON videos.id = likes.video_id").
		Where("videos.owner_id = ?", ownerID).
		Count(&stats.TotalLikes).Error; err != nil {
		return nil, err
	}

	return &stats, nil
}

// Videos lists the caller's own videos, including unpublished ones.
func (h *Handler) Videos(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	params := pagination.Extract(c)

	db := h.db.WithContext(c.Request.Context())

	base := db.Model(&video.Video{}).Where("owner_id = ?", currentUser.ID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to count videos", err)
		return
	}

	var videos []video.Video
	if err := base.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&videos).Error; err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load videos", err)
		return
	}

	response.Success(c, http.StatusOK, videos, "", pagination.MetadataFrom(total, params))
}
