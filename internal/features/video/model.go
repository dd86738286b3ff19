package video

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Video represents a published media asset and its AI enrichment artifacts.
type Video struct {
	types.BaseModel
	OwnerID          uuid.UUID      `gorm:"type:uuid;not null;column:owner_id;index" json:"ownerId"`
	Title            string         `gorm:"type:varchar(255);not null" json:"title"`
	Description      string         `gorm:"type:text" json:"description"`
	Tags             pq.StringArray `gorm:"type:text[]" json:"tags"`
	VideoURL         string         `gorm:"type:text;not null;column:video_url" json:"videoFile"`
	VideoAssetID     string         `gorm:"type:text;column:video_asset_id" json:"-"`
	ThumbnailURL     string         `gorm:"type:text;not null;column:thumbnail_url" json:"thumbnail"`
	ThumbnailAssetID string         `gorm:"type:text;column:thumbnail_asset_id" json:"-"`
	Duration         float64        `gorm:"not null" json:"duration"`
	Views            int64          `gorm:"not null;default:0" json:"views"`
	IsPublished      bool           `gorm:"not null;default:true;column:is_published" json:"isPublished"`
	IsPremium        bool           `gorm:"not null;default:false;column:is_premium" json:"isPremium"`
	Transcript       *string        `gorm:"type:text" json:"transcript,omitempty"`
	Summary          *string        `gorm:"type:text" json:"summary,omitempty"`
	Questions        pq.StringArray `gorm:"type:text[]" json:"questions"`
}

// TableName overrides the default table name.
func (Video) TableName() string { return "videos" }

// ownerRow is a read-only projection of a video's owner.
type ownerRow struct {
	ID        uuid.UUID `gorm:"column:id" json:"id"`
	FullName  string    `gorm:"column:full_name" json:"fullName"`
	Username  string    `gorm:"column:username" json:"username"`
	AvatarURL string    `gorm:"column:avatar_url" json:"avatar"`
}

func (ownerRow) TableName() string { return "users" }

// CreateInput carries data for publishing a new video.
type CreateInput struct {
	OwnerID          uuid.UUID
	Title            string
	Description      string
	Tags             []string
	VideoURL         string
	VideoAssetID     string
	ThumbnailURL     string
	ThumbnailAssetID string
	Duration         float64
	IsPremium        bool
}

// Create inserts a new video row.
func Create(db *gorm.DB, input CreateInput) (Video, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Video{}, ErrTitleRequired
	}

	vid := Video{
		OwnerID:          input.OwnerID,
		Title:            strings.TrimSpace(input.Title),
		Description:      strings.TrimSpace(input.Description),
		Tags:             input.Tags,
		VideoURL:         input.VideoURL,
		VideoAssetID:     input.VideoAssetID,
		ThumbnailURL:     input.ThumbnailURL,
		ThumbnailAssetID: input.ThumbnailAssetID,
		Duration:         input.Duration,
		IsPublished:      true,
		IsPremium:        input.IsPremium,
	}

	if err := db.Create(&vid).Error; err != nil {
		return Video{}, err
	}

	return vid, nil
}

// Get retrieves a video by ID regardless of publish state.
func Get(db *gorm.DB, id uuid.UUID) (Video, error) {
	var vid Video
	if err := db.First(&vid, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vid, ErrVideoNotFound
		}
		return vid, err
	}
	return vid, nil
}

// GetPublished retrieves a published video by ID.
func GetPublished(db *gorm.DB, id uuid.UUID) (Video, error) {
	vid, err := Get(db, id)
	if err != nil {
		return vid, err
	}
	if !vid.IsPublished {
		return vid, ErrVideoNotFound
	}
	return vid, nil
}

// ListFilters narrows the published video listing.
type ListFilters struct {
	Query   string
	OwnerID *uuid.UUID
	SortBy  string // createdAt | views | duration
	Order   string // asc | desc
}

// List returns published videos with pagination and owner projections.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Video, int64, error) {
	query := db.Model(&Video{}).Where("is_published = ?", true)

	if filters.Query != "" {
		pattern := "%" + filters.Query + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", pattern, pattern)
	}

	if filters.OwnerID != nil {
		query = query.Where("owner_id = ?", *filters.OwnerID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column := "created_at"
	switch filters.SortBy {
	case "views":
		column = "views"
	case "duration":
		column = "duration"
	}

	direction := "DESC"
	if strings.EqualFold(filters.Order, "asc") {
		direction = "ASC"
	}

	var videos []Video
	err := query.
		Order(column + " " + direction).
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&videos).Error

	return videos, total, err
}

// UpdateInput carries optional video fields to change.
type UpdateInput struct {
	Title            *string
	Description      *string
	Tags             []string
	ThumbnailURL     *string
	ThumbnailAssetID *string
}

// Update changes video metadata. Only the owner may call this.
func Update(db *gorm.DB, id, ownerID uuid.UUID, input UpdateInput) (Video, error) {
	vid, err := Get(db, id)
	if err != nil {
		return Video{}, err
	}
	if vid.OwnerID != ownerID {
		return Video{}, ErrNotOwner
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return Video{}, ErrTitleRequired
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = strings.TrimSpace(*input.Description)
	}
	if input.Tags != nil {
		updates["tags"] = pq.StringArray(input.Tags)
	}
	if input.ThumbnailURL != nil {
		updates["thumbnail_url"] = *input.ThumbnailURL
	}
	if input.ThumbnailAssetID != nil {
		updates["thumbnail_asset_id"] = *input.ThumbnailAssetID
	}

	if len(updates) > 0 {
		if err := db.Model(&Video{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return Video{}, err
		}
	}

	return Get(db, id)
}

// Delete removes a video row. Only the owner may call this.
func Delete(db *gorm.DB, id, ownerID uuid.UUID) (Video, error) {
	vid, err := Get(db, id)
	if err != nil {
		return Video{}, err
	}
	if vid.OwnerID != ownerID {
		return Video{}, ErrNotOwner
	}

	if err := db.Delete(&Video{}, "id = ?", id).Error; err != nil {
		return Video{}, err
	}

	return vid, nil
}

// TogglePublish flips a video's publish state. Only the owner may call this.
func TogglePublish(db *gorm.DB, id, ownerID uuid.UUID) (Video, error) {
	vid, err := Get(db, id)
	if err != nil {
		return Video{}, err
	}
	if vid.OwnerID != ownerID {
		return Video{}, ErrNotOwner
	}

	if err := db.Model(&Video{}).
		Where("id = ?", id).
		UpdateColumn("is_published", gorm.Expr("NOT is_published")).Error; err != nil {
		return Video{}, err
	}

	return Get(db, id)
}

// IncrementViews bumps the view counter.
func IncrementViews(db *gorm.DB, id uuid.UUID) error {
	return db.Model(&Video{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// SetAIArtifacts stores the enrichment pipeline's output in one update.
func SetAIArtifacts(db *gorm.DB, id uuid.UUID, transcript, summary string, questions []string) error {
	if questions == nil {
		questions = []string{}
	}
	return db.Model(&Video{}).Where("id = ?", id).Updates(map[string]interface{}{
		"transcript": transcript,
		"summary":    summary,
		"questions":  pq.StringArray(questions),
	}).Error
}

// LikeCount returns the number of likes on a video.
func LikeCount(db *gorm.DB, id uuid.UUID) (int64, error) {
	var count int64
	err := db.Table("likes").Where("video_id = ?", id).Count(&count).Error
	return count, err
}

// IsLikedBy reports whether a user has liked a video.
func IsLikedBy(db *gorm.DB, id, userID uuid.UUID) (bool, error) {
	var count int64
	err := db.Table("likes").
		Where("video_id = ? AND liked_by = ?", id, userID).
		Count(&count).Error
	return count > 0, err
}

// Owner loads the owner projection for a video.
func Owner(db *gorm.DB, ownerID uuid.UUID) (ownerRow, error) {
	var row ownerRow
	err := db.First(&row, "id = ?", ownerID).Error
	return row, err
}

// DetailResponse is the single-video payload with viewer-specific fields.
type DetailResponse struct {
	Video
	Owner            interface{} `json:"owner,omitempty"`
	LikeCount        int64       `json:"likeCount"`
	IsLiked          bool        `json:"isLiked"`
	RemainingCredits *int        `json:"remainingCredits,omitempty"`
}

// WatchResponse is the playback grant payload.
type WatchResponse struct {
	VideoURL         string    `json:"videoUrl"`
	RemainingCredits *int      `json:"remainingCredits,omitempty"`
	WatchedAt        time.Time `json:"watchedAt"`
}
