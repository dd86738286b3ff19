package video

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/internal/features/user"
	"github.com/barterskills/barterskills-server-go/internal/features/view"
	"github.com/barterskills/barterskills-server-go/internal/middleware"
	"github.com/barterskills/barterskills-server-go/pkg/mediastore"
	"github.com/barterskills/barterskills-server-go/pkg/metrics"
	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/response"
)

// Enricher runs the AI enrichment pipeline for a video and returns the
// updated row.
type Enricher interface {
	Enrich(ctx context.Context, videoID uuid.UUID) (*Video, error)
}

// Handler processes video HTTP requests.
type Handler struct {
	db       *gorm.DB
	logger   *slog.Logger
	media    *mediastore.Client
	enricher Enricher
	ffprobe  string
}

// NewHandler constructs a video handler instance.
func NewHandler(db *gorm.DB, logger *slog.Logger, media *mediastore.Client, enricher Enricher, ffprobeBinary string) *Handler {
	return &Handler{
		db:       db,
		logger:   logger,
		media:    media,
		enricher: enricher,
		ffprobe:  ffprobeBinary,
	}
}

// List returns published videos with optional search, owner filter and sort.
func (h *Handler) List(c *gin.Context) {
	params := pagination.Extract(c)

	filters := ListFilters{
		Query:  strings.TrimSpace(c.Query("query")),
		SortBy: c.Query("sortBy"),
		Order:  c.Query("order"),
	}

	if owner := c.Query("userId"); owner != "" {
		ownerID, err := uuid.Parse(owner)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid user id", err)
			return
		}
		filters.OwnerID = &ownerID
	}

	videos, total, err := List(h.db.WithContext(c.Request.Context()), filters, params)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load videos", err)
		return
	}

	response.Success(c, http.StatusOK, videos, "", pagination.MetadataFrom(total, params))
}

// GetByID returns a single video's metadata enriched with viewer context.
// The first fetch of a free-tier video by a signed-in viewer with a positive
// balance spends one credit and records the view.
func (h *Handler) GetByID(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	vid, err := GetPublished(db, videoID)
	if err != nil {
		h.respondError(c, err, "failed to load video")
		return
	}

	detail := DetailResponse{Video: vid}

	if owner, err := Owner(db, vid.OwnerID); err == nil {
		detail.Owner = owner
	}

	if detail.LikeCount, err = LikeCount(db, videoID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load like count", err)
		return
	}

	viewer, authenticated := middleware.GetUserFromContext(c)
	if !authenticated {
		response.Success(c, http.StatusOK, detail, "", nil)
		return
	}

	if detail.IsLiked, err = IsLikedBy(db, videoID, viewer.ID); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load like state", err)
		return
	}

	hasView, err := view.Has(db, videoID, viewer.ID)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load view state", err)
		return
	}

	decision := EvaluateFetch(ViewerState{
		Authenticated: true,
		Credits:       viewer.Credits,
		PremiumActive: viewer.PremiumActive(time.Now()),
		HasViewRecord: hasView,
	}, vid.IsPremium)

	if decision.Debit {
		debited, err := user.DebitCredit(db, viewer.ID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to debit credit", err)
			return
		}
		if debited {
			metrics.RecordCreditDebit()
			if err := view.Mark(db, videoID, viewer.ID); err != nil {
				h.logger.Warn("failed to record view",
					slog.String("video_id", videoID.String()),
					slog.String("viewer_id", viewer.ID.String()),
					slog.String("error", err.Error()),
				)
			}
		}
	}

	if decision.ShowCredits {
		remaining, err := user.Credits(db, viewer.ID)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to load credit balance", err)
			return
		}
		detail.RemainingCredits = &remaining
	}

	response.Success(c, http.StatusOK, detail, "", nil)
}

// Publish handles a multipart video upload: probes the duration, enforces
// the uploader's ceiling, stores both assets and grants the upload reward.
func (h *Handler) Publish(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	var req struct {
		Title       string `form:"title" binding:"required"`
		Description string `form:"description"`
		Tags        string `form:"tags"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video payload", err)
		return
	}

	videoFile, err := c.FormFile("videoFile")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "video file is required", err)
		return
	}
	thumbnailFile, err := c.FormFile("thumbnail")
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "thumbnail is required", err)
		return
	}

	videoPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(videoFile.Filename))
	if err := c.SaveUploadedFile(videoFile, videoPath); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to store upload", err)
		return
	}
	defer os.Remove(videoPath)

	thumbnailPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(thumbnailFile.Filename))
	if err := c.SaveUploadedFile(thumbnailFile, thumbnailPath); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to store upload", err)
		return
	}
	defer os.Remove(thumbnailPath)

	ctx := c.Request.Context()

	duration, err := mediastore.ProbeDuration(ctx, h.ffprobe, videoPath)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to read video duration", err)
		return
	}

	isPremium, err := ClassifyUpload(duration, currentUser.PremiumActive(time.Now()))
	if err != nil {
		h.respondError(c, err, "video rejected")
		return
	}

	uploadedVideo, err := h.media.UploadFile(ctx, videoPath, "videos", mediastore.ResourceVideo)
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload video", err)
		return
	}

	uploadedThumbnail, err := h.media.UploadFile(ctx, thumbnailPath, "thumbnails", mediastore.ResourceImage)
	if err != nil {
		// The video asset is already stored; remove it so a failed publish
		// leaves nothing behind.
		if delErr := h.media.Delete(ctx, uploadedVideo.PublicID, mediastore.ResourceVideo); delErr != nil {
			h.logger.Error("failed to delete orphaned video asset",
				slog.String("asset_id", uploadedVideo.PublicID),
				slog.String("error", delErr.Error()),
			)
		}
		response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload thumbnail", err)
		return
	}

	db := h.db.WithContext(ctx)

	vid, err := Create(db, CreateInput{
		OwnerID:          currentUser.ID,
		Title:            req.Title,
		Description:      req.Description,
		Tags:             splitTags(req.Tags),
		VideoURL:         uploadedVideo.URL,
		VideoAssetID:     uploadedVideo.PublicID,
		ThumbnailURL:     uploadedThumbnail.URL,
		ThumbnailAssetID: uploadedThumbnail.PublicID,
		Duration:         duration,
		IsPremium:        isPremium,
	})
	if err != nil {
		h.respondError(c, err, "failed to publish video")
		return
	}

	if err := user.AddCredits(db, currentUser.ID, UploadRewardCredits); err != nil {
		h.logger.Error("failed to grant upload reward",
			slog.String("user_id", currentUser.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	metrics.RecordUpload(isPremium)
	response.Created(c, vid, "Video published successfully.")
}

// watchStore is the mutation surface the watch flow touches.
type watchStore interface {
	DebitCredit(userID uuid.UUID) (bool, error)
	AppendWatchHistory(userID, videoID uuid.UUID) error
	IncrementViews(videoID uuid.UUID) error
	Credits(userID uuid.UUID) (int, error)
}

type gormWatchStore struct{ db *gorm.DB }

func (s gormWatchStore) DebitCredit(userID uuid.UUID) (bool, error) {
	return user.DebitCredit(s.db, userID)
}

func (s gormWatchStore) AppendWatchHistory(userID, videoID uuid.UUID) error {
	return user.AppendWatchHistory(s.db, userID, videoID)
}

func (s gormWatchStore) IncrementViews(videoID uuid.UUID) error {
	return IncrementViews(s.db, videoID)
}

func (s gormWatchStore) Credits(userID uuid.UUID) (int, error) {
	return user.Credits(s.db, userID)
}

// performWatch applies the watch decision for a loaded video. Denials return
// a sentinel before any mutation, so a refused watch never touches credits
// or the view counter.
func performWatch(store watchStore, logger *slog.Logger, viewer ViewerState, viewerID uuid.UUID, vid Video) (*WatchResponse, error) {
	decision := EvaluateWatch(viewer, vid.IsPremium)

	switch decision.Denial {
	case DenialPremiumRequired:
		return nil, ErrPremiumRequired
	case DenialNoCredits:
		return nil, ErrInsufficientCredits
	}

	if decision.Debit {
		// The conditional decrement is the authority; a race that drained
		// the balance since the check above still cannot go negative.
		debited, err := store.DebitCredit(viewerID)
		if err != nil {
			return nil, err
		}
		if !debited {
			return nil, ErrInsufficientCredits
		}
		metrics.RecordCreditDebit()
	}

	if err := store.AppendWatchHistory(viewerID, vid.ID); err != nil {
		logger.Warn("failed to append watch history",
			slog.String("user_id", viewerID.String()),
			slog.String("error", err.Error()),
		)
	}

	if err := store.IncrementViews(vid.ID); err != nil {
		logger.Warn("failed to increment views",
			slog.String("video_id", vid.ID.String()),
			slog.String("error", err.Error()),
		)
	}

	metrics.RecordWatch(vid.IsPremium)

	remaining, err := store.Credits(viewerID)
	if err != nil {
		return nil, err
	}

	return &WatchResponse{
		VideoURL:         vid.VideoURL,
		RemainingCredits: &remaining,
		WatchedAt:        time.Now().UTC(),
	}, nil
}

// Watch grants playback. Premium videos require an active premium window;
// free-tier videos cost one credit on every watch.
func (h *Handler) Watch(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	db := h.db.WithContext(c.Request.Context())

	vid, err := GetPublished(db, videoID)
	if err != nil {
		h.respondError(c, err, "failed to load video")
		return
	}

	viewer := ViewerState{
		Authenticated: true,
		Credits:       currentUser.Credits,
		PremiumActive: currentUser.PremiumActive(time.Now()),
	}

	resp, err := performWatch(gormWatchStore{db: db}, h.logger, viewer, currentUser.ID, vid)
	if err != nil {
		h.respondError(c, err, "failed to watch video")
		return
	}

	response.Success(c, http.StatusOK, *resp, "", nil)
}

// Update changes a video's metadata, optionally replacing the thumbnail.
func (h *Handler) Update(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	var req struct {
		Title       *string `form:"title"`
		Description *string `form:"description"`
		Tags        *string `form:"tags"`
	}
	if err := c.ShouldBind(&req); err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video payload", err)
		return
	}

	input := UpdateInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Tags != nil {
		input.Tags = splitTags(*req.Tags)
	}

	var oldThumbnailID string
	if thumbnail, err := c.FormFile("thumbnail"); err == nil {
		existing, err := Get(h.db.WithContext(c.Request.Context()), videoID)
		if err != nil {
			h.respondError(c, err, "failed to load video")
			return
		}
		oldThumbnailID = existing.ThumbnailAssetID

		tempPath := filepath.Join(os.TempDir(), uuid.NewString()+filepath.Ext(thumbnail.Filename))
		if err := c.SaveUploadedFile(thumbnail, tempPath); err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to store upload", err)
			return
		}
		defer os.Remove(tempPath)

		uploaded, err := h.media.UploadFile(c.Request.Context(), tempPath, "thumbnails", mediastore.ResourceImage)
		if err != nil {
			response.ErrorWithLog(h.logger, c, http.StatusInternalServerError, "failed to upload thumbnail", err)
			return
		}
		input.ThumbnailURL = &uploaded.URL
		input.ThumbnailAssetID = &uploaded.PublicID
	}

	vid, err := Update(h.db.WithContext(c.Request.Context()), videoID, currentUser.ID, input)
	if err != nil {
		h.respondError(c, err, "failed to update video")
		return
	}

	if oldThumbnailID != "" && input.ThumbnailAssetID != nil {
		if err := h.media.Delete(c.Request.Context(), oldThumbnailID, mediastore.ResourceImage); err != nil {
			h.logger.Warn("failed to delete previous thumbnail",
				slog.String("asset_id", oldThumbnailID),
				slog.String("error", err.Error()),
			)
		}
	}

	response.Success(c, http.StatusOK, vid, "Video updated.", nil)
}

// Delete removes a video and its stored assets.
func (h *Handler) Delete(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	vid, err := Delete(h.db.WithContext(c.Request.Context()), videoID, currentUser.ID)
	if err != nil {
		h.respondError(c, err, "failed to delete video")
		return
	}

	for _, asset := range []struct {
		id  string
		typ mediastore.ResourceType
	}{
		{vid.VideoAssetID, mediastore.ResourceVideo},
		{vid.ThumbnailAssetID, mediastore.ResourceImage},
	} {
		if asset.id == "" {
			continue
		}
		if err := h.media.Delete(c.Request.Context(), asset.id, asset.typ); err != nil {
			h.logger.Warn("failed to delete stored asset",
				slog.String("asset_id", asset.id),
				slog.String("error", err.Error()),
			)
		}
	}

	response.Success(c, http.StatusOK, true, "Video deleted.", nil)
}

// TogglePublish flips a video's publish state.
func (h *Handler) TogglePublish(c *gin.Context) {
	currentUser, ok := middleware.GetUserFromContext(c)
	if !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	vid, err := TogglePublish(h.db.WithContext(c.Request.Context()), videoID, currentUser.ID)
	if err != nil {
		h.respondError(c, err, "failed to toggle publish state")
		return
	}

	response.Success(c, http.StatusOK, vid, "", nil)
}

// ProcessAI runs the enrichment pipeline synchronously and returns the
// updated video.
func (h *Handler) ProcessAI(c *gin.Context) {
	if _, ok := middleware.GetUserFromContext(c); !ok {
		response.ErrorWithLog(h.logger, c, http.StatusUnauthorized, "Authentication required.", nil)
		return
	}

	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	vid, err := h.enricher.Enrich(c.Request.Context(), videoID)
	if err != nil {
		h.respondError(c, err, "failed to process video")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transcript": vid.Transcript,
		"summary":    vid.Summary,
		"questions":  vid.Questions,
	}, "Video processed successfully.", nil)
}

// GetAI returns a video's stored enrichment artifacts.
func (h *Handler) GetAI(c *gin.Context) {
	videoID, err := uuid.Parse(c.Param("videoId"))
	if err != nil {
		response.ErrorWithLog(h.logger, c, http.StatusBadRequest, "invalid video id", err)
		return
	}

	vid, err := GetPublished(h.db.WithContext(c.Request.Context()), videoID)
	if err != nil {
		h.respondError(c, err, "failed to load video")
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transcript": vid.Transcript,
		"summary":    vid.Summary,
		"questions":  vid.Questions,
	}, "", nil)
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

func (h *Handler) respondError(c *gin.Context, err error, fallback string) {
	status := http.StatusInternalServerError
	message := fallback

	switch {
	case errors.Is(err, ErrVideoNotFound):
		status = http.StatusNotFound
		message = "Video not found."
	case errors.Is(err, ErrTitleRequired):
		status = http.StatusBadRequest
		message = "Video title is required."
	case errors.Is(err, ErrNotOwner):
		status = http.StatusForbidden
		message = "Only the owner can modify this video."
	case errors.Is(err, ErrDurationExceeded):
		status = http.StatusBadRequest
		message = "Video duration exceeds the allowed limit."
	case errors.Is(err, ErrPremiumRequired):
		status = http.StatusForbidden
		message = "An active premium plan is required to watch this video."
	case errors.Is(err, ErrInsufficientCredits):
		status = http.StatusBadRequest
		message = "Insufficient credits. Upload videos to earn more."
	}

	response.ErrorWithLog(h.logger, c, status, message, err)
}
