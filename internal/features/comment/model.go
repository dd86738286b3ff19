package comment

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Comment represents a comment on a video.
type Comment struct {
	types.BaseModel
	VideoID uuid.UUID `gorm:"type:uuid;not null;column:video_id;index:idx_video_created,priority:1" json:"videoId"`
	OwnerID uuid.UUID `gorm:"type:uuid;not null;column:owner_id" json:"ownerId"`
	Content string    `gorm:"type:text;not null" json:"content"`
}

// TableName overrides the default table name.
func (Comment) TableName() string { return "comments" }

// ListByVideo retrieves comments for a video, newest first, with pagination.
func ListByVideo(db *gorm.DB, videoID uuid.UUID, params pagination.Params) ([]Comment, int64, error) {
	query := db.Model(&Comment{}).Where("video_id = ?", videoID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []Comment
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&comments).Error

	return comments, total, err
}

// Get retrieves a comment by ID.
func Get(db *gorm.DB, id uuid.UUID) (Comment, error) {
	var comment Comment
	if err := db.First(&comment, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return comment, ErrCommentNotFound
		}
		return comment, err
	}
	return comment, nil
}

// Create inserts a new comment.
func Create(db *gorm.DB, videoID, ownerID uuid.UUID, content string) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, ErrContentRequired
	}

	comment := Comment{
		VideoID: videoID,
		OwnerID: ownerID,
		Content: strings.TrimSpace(content),
	}

	if err := db.Create(&comment).Error; err != nil {
		return Comment{}, err
	}

	return comment, nil
}

// Update changes a comment's content. Only the owner may call this.
func Update(db *gorm.DB, id, ownerID uuid.UUID, content string) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, ErrContentRequired
	}

	comment, err := Get(db, id)
	if err != nil {
		return Comment{}, err
	}
	if comment.OwnerID != ownerID {
		return Comment{}, ErrNotOwner
	}

	if err := db.Model(&Comment{}).
		Where("id = ?", id).
		Update("content", strings.TrimSpace(content)).Error; err != nil {
		return Comment{}, err
	}

	return Get(db, id)
}

// Delete removes a comment. Only the owner may call this.
func Delete(db *gorm.DB, id, ownerID uuid.UUID) error {
	comment, err := Get(db, id)
	if err != nil {
		return err
	}
	if comment.OwnerID != ownerID {
		return ErrNotOwner
	}

	result := db.Delete(&Comment{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCommentNotFound
	}

	return nil
}
