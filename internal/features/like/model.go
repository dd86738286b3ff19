package like

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Like marks a user's like on exactly one of a video or a comment.
type Like struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LikedBy   uuid.UUID  `gorm:"type:uuid;not null;column:liked_by;uniqueIndex:likes_video_user_key,priority:2;uniqueIndex:likes_comment_user_key,priority:2" json:"likedBy"`
	VideoID   *uuid.UUID `gorm:"type:uuid;column:video_id;uniqueIndex:likes_video_user_key,priority:1" json:"videoId,omitempty"`
	CommentID *uuid.UUID `gorm:"type:uuid;column:comment_id;uniqueIndex:likes_comment_user_key,priority:1" json:"commentId,omitempty"`
	CreatedAt time.Time  `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the default table name.
func (Like) TableName() string { return "likes" }

// ToggleVideoLike flips a user's like on a video and reports the new state.
func ToggleVideoLike(db *gorm.DB, videoID, userID uuid.UUID) (bool, error) {
	return toggle(db, "video_id", videoID, userID, func() Like {
		return Like{LikedBy: userID, VideoID: &videoID}
	}, types.LikeTargetVideo)
}

// ToggleCommentLike flips a user's like on a comment and reports the new state.
func ToggleCommentLike(db *gorm.DB, commentID, userID uuid.UUID) (bool, error) {
	return toggle(db, "comment_id", commentID, userID, func() Like {
		return Like{LikedBy: userID, CommentID: &commentID}
	}, types.LikeTargetComment)
}

func toggle(db *gorm.DB, column string, targetID, userID uuid.UUID, build func() Like, target types.LikeTarget) (bool, error) {
	if exists, err := targetExists(db, target, targetID); err != nil {
		return false, err
	} else if !exists {
		return false, ErrTargetNotFound
	}

	result := db.Where(column+" = ? AND liked_by = ?", targetID, userID).Delete(&Like{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	record := build()
	if err := db.Create(&record).Error; err != nil {
		return false, err
	}
	return true, nil
}

func targetExists(db *gorm.DB, target types.LikeTarget, id uuid.UUID) (bool, error) {
	table := "videos"
	if target == types.LikeTargetComment {
		table = "comments"
	}

	var count int64
	err := db.Table(table).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// likedVideoRow is a read-only projection of a liked video.
type likedVideoRow struct {
	ID           uuid.UUID `gorm:"column:id" json:"id"`
	Title        string    `gorm:"column:title" json:"title"`
	ThumbnailURL string    `gorm:"column:thumbnail_url" json:"thumbnail"`
	Duration     float64   `gorm:"column:duration" json:"duration"`
	Views        int64     `gorm:"column:views" json:"views"`
	OwnerID      uuid.UUID `gorm:"column:owner_id" json:"ownerId"`
	IsPremium    bool      `gorm:"column:is_premium" json:"isPremium"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
}

// LikedVideos returns the videos a user has liked, newest like first.
func LikedVideos(db *gorm.DB, userID uuid.UUID, params pagination.Params) ([]likedVideoRow, int64, error) {
	base := db.Table("likes").
		Joins("JOIN videos ON videos.id = likes.video_id").
		Where("likes.liked_by = ? AND likes.video_id IS NOT NULL", userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []likedVideoRow
	err := base.
		Select("videos.id, videos.title, videos.thumbnail_url, videos.duration, videos.views, videos.owner_id, videos.is_premium, videos.created_at").
		Order("likes.created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Scan(&rows).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}

	return rows, total, err
}
