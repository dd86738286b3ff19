package subscription

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/pagination"
)

// Subscription records one user following another user's channel.
type Subscription struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SubscriberID uuid.UUID `gorm:"type:uuid;not null;column:subscriber_id;uniqueIndex:subscriptions_pair_key,priority:1" json:"subscriberId"`
	ChannelID    uuid.UUID `gorm:"type:uuid;not null;column:channel_id;uniqueIndex:subscriptions_pair_key,priority:2" json:"channelId"`
	CreatedAt    time.Time `gorm:"column:created_at" json:"createdAt"`
}

// TableName overrides the default table name.
func (Subscription) TableName() string { return "subscriptions" }

// Toggle flips the subscriber's subscription to a channel and reports the new state.
func Toggle(db *gorm.DB, subscriberID, channelID uuid.UUID) (bool, error) {
	if subscriberID == channelID {
		return false, ErrSelfSubscribe
	}

	var count int64
	if err := db.Table("users").Where("id = ?", channelID).Count(&count).Error; err != nil {
		return false, err
	}
	if count == 0 {
		return false, ErrChannelNotFound
	}

	result := db.Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).Delete(&Subscription{})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return false, nil
	}

	record := Subscription{SubscriberID: subscriberID, ChannelID: channelID}
	if err := db.Create(&record).Error; err != nil {
		return false, err
	}
	return true, nil
}

// channelRow is a read-only projection of a user acting as a channel.
type channelRow struct {
	ID           uuid.UUID `gorm:"column:id" json:"id"`
	Username     string    `gorm:"column:username" json:"username"`
	FullName     string    `gorm:"column:full_name" json:"fullName"`
	AvatarURL    string    `gorm:"column:avatar_url" json:"avatar"`
	SubscribedAt time.Time `gorm:"column:subscribed_at" json:"subscribedAt"`
}

// Subscribers lists the users subscribed to a channel, newest first.
func Subscribers(db *gorm.DB, channelID uuid.UUID, params pagination.Params) ([]channelRow, int64, error) {
	base := db.Table("subscriptions").
		Joins("JOIN users ON users.id = subscriptions.subscriber_id").
		Where("subscriptions.channel_id = ?", channelID)

	return listChannelRows(base, params)
}

// SubscribedChannels lists the channels a user follows, newest first.
func SubscribedChannels(db *gorm.DB, subscriberID uuid.UUID, params pagination.Params) ([]channelRow, int64, error) {
	base := db.Table("subscriptions").
		Joins("JOIN users ON users.id = subscriptions.channel_id").
		Where("subscriptions.subscriber_id = ?", subscriberID)

	return listChannelRows(base, params)
}

func listChannelRows(base *gorm.DB, params pagination.Params) ([]channelRow, int64, error) {
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []channelRow
	err := base.
		Select("users.id, users.username, users.full_name, users.avatar_url, subscriptions.created_at AS subscribed_at").
		Order("subscriptions.created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Scan(&rows).Error

	return rows, total, err
}

// IsSubscribed reports whether a user follows the given channel.
func IsSubscribed(db *gorm.DB, subscriberID, channelID uuid.UUID) (bool, error) {
	var count int64
	err := db.Model(&Subscription{}).
		Where("subscriber_id = ? AND channel_id = ?", subscriberID, channelID).
		Count(&count).Error
	return count > 0, err
}
