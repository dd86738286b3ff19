package view

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record marks that a viewer has fetched a video at least once. The unique
// (video, viewer) pair is what makes the first-fetch credit debit happen at
// most once per video per viewer.
type Record struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VideoID   uuid.UUID `gorm:"type:uuid;not null;column:video_id;uniqueIndex:views_video_viewer_key,priority:1" json:"videoId"`
	ViewerID  uuid.UUID `gorm:"type:uuid;not null;column:viewer_id;uniqueIndex:views_video_viewer_key,priority:2" json:"viewerId"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the default table name.
func (Record) TableName() string { return "views" }

// Has reports whether a viewer already has a record for a video.
func Has(db *gorm.DB, videoID, viewerID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Record{}).
		Where("video_id = ? AND viewer_id = ?", videoID, viewerID).
		Count(&count).Error
	return count > 0, err
}

// Mark records that a viewer fetched a video. Concurrent duplicates are
// absorbed by the unique pair.
func Mark(db *gorm.DB, videoID, viewerID uuid.UUID) error {
	record := Record{VideoID: videoID, ViewerID: viewerID}
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&record).Error
}
