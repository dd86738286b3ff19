package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/types"
	"github.com/barterskills/barterskills-server-go/pkg/validation"
)

// RegistrationCredits is the free viewing balance granted on signup.
const RegistrationCredits = 5

// User represents a platform account. Credits gate access to free-tier
// videos; the premium window gates access to premium ones.
type User struct {
	types.BaseModel
	FullName         string         `gorm:"type:varchar(255);not null;column:full_name" json:"fullName"`
	Username         string         `gorm:"type:varchar(64);not null;uniqueIndex:users_username_key" json:"username"`
	Email            string         `gorm:"type:varchar(255);not null;uniqueIndex:users_email_key" json:"email"`
	Password         string         `gorm:"type:varchar(255);not null" json:"-"`
	AvatarURL        string         `gorm:"type:text;column:avatar_url" json:"avatar"`
	AvatarID         string         `gorm:"type:text;column:avatar_id" json:"-"`
	CoverImageURL    string         `gorm:"type:text;column:cover_image_url" json:"coverImage"`
	CoverImageID     string         `gorm:"type:text;column:cover_image_id" json:"-"`
	Credits          int            `gorm:"not null;default:5" json:"credits"`
	IsPremium        bool           `gorm:"not null;default:false;column:is_premium" json:"isPremium"`
	PremiumExpiresAt *time.Time     `gorm:"column:premium_expires_at" json:"premiumExpiresAt,omitempty"`
	WatchHistory     pq.StringArray `gorm:"type:uuid[];column:watch_history" json:"watchHistory"`
	RefreshToken     *string        `gorm:"type:text;column:refresh_token" json:"-"`
	GoogleID         *string        `gorm:"type:varchar(255);column:google_id" json:"-"`
}

// TableName overrides the default table name.
func (User) TableName() string { return "users" }

// ComparePassword checks a plaintext password against the stored hash.
func (u *User) ComparePassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plain)) == nil
}

// PremiumActive reports whether the premium window covers the given time.
func (u *User) PremiumActive(now time.Time) bool {
	return u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.After(now)
}

// CreateInput carries data for creating a new user.
type CreateInput struct {
	FullName      string
	Username      string
	Email         string
	Password      string
	AvatarURL     string
	AvatarID      string
	CoverImageURL string
	CoverImageID  string
	GoogleID      *string
}

// Create inserts a new user with a hashed password and the signup credit grant.
func Create(db *gorm.DB, input CreateInput) (User, error) {
	if input.FullName == "" || input.Username == "" || input.Email == "" {
		return User{}, ErrMissingFields
	}

	username, err := validation.NormalizeUsername(input.Username)
	if err != nil {
		return User{}, ErrInvalidUsername
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), 10)
	if err != nil {
		return User{}, err
	}

	usr := User{
		FullName:      strings.TrimSpace(input.FullName),
		Username:      username,
		Email:         strings.ToLower(strings.TrimSpace(input.Email)),
		Password:      string(hashed),
		AvatarURL:     input.AvatarURL,
		AvatarID:      input.AvatarID,
		CoverImageURL: input.CoverImageURL,
		CoverImageID:  input.CoverImageID,
		Credits:       RegistrationCredits,
		GoogleID:      input.GoogleID,
	}

	if err := db.Create(&usr).Error; err != nil {
		return User{}, classifyUniqueViolation(err)
	}

	return usr, nil
}

// Get retrieves a user by ID.
func Get(db *gorm.DB, id uuid.UUID) (User, error) {
	var usr User
	if err := db.First(&usr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByEmail retrieves a user by email, case-insensitively.
func GetByEmail(db *gorm.DB, email string) (User, error) {
	var usr User
	if err := db.First(&usr, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// GetByUsername retrieves a user by their normalized username.
func GetByUsername(db *gorm.DB, username string) (User, error) {
	var usr User
	if err := db.First(&usr, "username = ?", normalizeUsername(username)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return usr, ErrUserNotFound
		}
		return usr, err
	}
	return usr, nil
}

// UpdateInput carries optional account fields to change.
type UpdateInput struct {
	FullName *string
	Email    *string
}

// UpdateAccount changes account details for a user.
func UpdateAccount(db *gorm.DB, id uuid.UUID, input UpdateInput) (User, error) {
	updates := map[string]interface{}{}
	if input.FullName != nil && strings.TrimSpace(*input.FullName) != "" {
		updates["full_name"] = strings.TrimSpace(*input.FullName)
	}
	if input.Email != nil && strings.TrimSpace(*input.Email) != "" {
		updates["email"] = strings.ToLower(strings.TrimSpace(*input.Email))
	}

	if len(updates) == 0 {
		return User{}, ErrMissingFields
	}

	if err := db.Model(&User{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return User{}, classifyUniqueViolation(err)
	}

	return Get(db, id)
}

// UpdatePassword verifies the old password and stores a new hash.
func UpdatePassword(db *gorm.DB, id uuid.UUID, oldPassword, newPassword string) error {
	usr, err := Get(db, id)
	if err != nil {
		return err
	}

	if !usr.ComparePassword(oldPassword) {
		return ErrInvalidPassword
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), 10)
	if err != nil {
		return err
	}

	return db.Model(&User{}).Where("id = ?", id).Update("password", string(hashed)).Error
}

// SetRefreshToken stores a refresh token for a user. A nil token logs out.
func SetRefreshToken(db *gorm.DB, id uuid.UUID, token *string) error {
	return db.Model(&User{}).Where("id = ?", id).Update("refresh_token", token).Error
}

// SetAvatar replaces a user's avatar asset.
func SetAvatar(db *gorm.DB, id uuid.UUID, url, assetID string) error {
	return db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"avatar_url": url,
		"avatar_id":  assetID,
	}).Error
}

// SetCoverImage replaces a user's cover image asset.
func SetCoverImage(db *gorm.DB, id uuid.UUID, url, assetID string) error {
	return db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"cover_image_url": url,
		"cover_image_id":  assetID,
	}).Error
}

// DebitCredit atomically spends one credit. The conditional predicate keeps
// the balance from ever going negative under concurrent requests.
func DebitCredit(db *gorm.DB, id uuid.UUID) (bool, error) {
	result := db.Model(&User{}).
		Where("id = ? AND credits >= 1", id).
		UpdateColumn("credits", gorm.Expr("credits - 1"))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// AddCredits atomically grants credits to a user.
func AddCredits(db *gorm.DB, id uuid.UUID, amount int) error {
	return db.Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("credits", gorm.Expr("credits + ?", amount)).Error
}

// Credits returns the current credit balance for a user.
func Credits(db *gorm.DB, id uuid.UUID) (int, error) {
	var credits int
	err := db.Model(&User{}).Where("id = ?", id).Select("credits").Scan(&credits).Error
	return credits, err
}

// AppendWatchHistory appends a video to the user's watch history array.
func AppendWatchHistory(db *gorm.DB, id, videoID uuid.UUID) error {
	return db.Model(&User{}).
		Where("id = ?", id).
		UpdateColumn("watch_history", gorm.Expr("array_append(watch_history, ?::uuid)", videoID.String())).Error
}

// ActivatePremium grants the premium tier until the given time.
func ActivatePremium(db *gorm.DB, id uuid.UUID, expiresAt time.Time) error {
	return db.Model(&User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"is_premium":         true,
		"premium_expires_at": expiresAt,
	}).Error
}

// ChannelProfile is the public view of a user's channel.
type ChannelProfile struct {
	ID                        uuid.UUID `json:"id"`
	FullName                  string    `json:"fullName"`
	Username                  string    `json:"username"`
	AvatarURL                 string    `json:"avatar"`
	CoverImageURL             string    `json:"coverImage"`
	SubscribersCount          int64     `json:"subscribersCount"`
	ChannelsSubscribedToCount int64     `json:"channelsSubscribedToCount"`
	IsSubscribed              bool      `json:"isSubscribed"`
}

// GetChannelProfile loads a channel's public profile with subscriber counts.
// viewerID may be nil for anonymous requests.
func GetChannelProfile(db *gorm.DB, username string, viewerID *uuid.UUID) (ChannelProfile, error) {
	usr, err := GetByUsername(db, username)
	if err != nil {
		return ChannelProfile{}, err
	}

	profile := ChannelProfile{
		ID:            usr.ID,
		FullName:      usr.FullName,
		Username:      usr.Username,
		AvatarURL:     usr.AvatarURL,
		CoverImageURL: usr.CoverImageURL,
	}

	if err := db.Table("subscriptions").
		Where("channel_id = ?", usr.ID).
		Count(&profile.SubscribersCount).Error; err != nil {
		return ChannelProfile{}, err
	}

	if err := db.Table("subscriptions").
		Where("subscriber_id = ?", usr.ID).
		Count(&profile.ChannelsSubscribedToCount).Error; err != nil {
		return ChannelProfile{}, err
	}

	if viewerID != nil {
		var count int64
		if err := db.Table("subscriptions").
			Where("channel_id = ? AND subscriber_id = ?", usr.ID, *viewerID).
			Count(&count).Error; err != nil {
			return ChannelProfile{}, err
		}
		profile.IsSubscribed = count > 0
	}

	return profile, nil
}

func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func classifyUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "users_email_key"):
		return ErrEmailTaken
	case strings.Contains(msg, "users_username_key"):
		return ErrUsernameTaken
	}
	return err
}
