package message

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/barterskills/barterskills-server-go/pkg/pagination"
	"github.com/barterskills/barterskills-server-go/pkg/types"
)

// Conversation is a direct-message thread between two users. The pair is
// stored in a canonical order so each pair has exactly one row.
type Conversation struct {
	types.BaseModel
	UserAID       uuid.UUID  `gorm:"type:uuid;not null;column:user_a_id;uniqueIndex:conversations_pair_key,priority:1" json:"userAId"`
	UserBID       uuid.UUID  `gorm:"type:uuid;not null;column:user_b_id;uniqueIndex:conversations_pair_key,priority:2" json:"userBId"`
	LastMessageAt *time.Time `gorm:"column:last_message_at" json:"lastMessageAt,omitempty"`
}

// TableName overrides the default table name.
func (Conversation) TableName() string { return "conversations" }

// Message is a single direct message inside a conversation.
type Message struct {
	types.BaseModel
	ConversationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"conversationId"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"senderId"`
	RecipientID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"recipientId"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	ReadAt         *time.Time `gorm:"column:read_at" json:"readAt,omitempty"`
}

// TableName overrides the default table name.
func (Message) TableName() string { return "messages" }

// ChatMessage is one entry in the global chat room.
type ChatMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SenderID   uuid.UUID `gorm:"type:uuid;not null;index" json:"senderId"`
	SenderName string    `gorm:"size:255;not null" json:"senderName"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"column:created_at;index" json:"createdAt"`
}

// TableName overrides the default table name.
func (ChatMessage) TableName() string { return "chat_messages" }

// canonicalPair orders two user IDs so a conversation pair is unique
// regardless of who initiated it.
func canonicalPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if strings.Compare(a.String(), b.String()) > 0 {
		return b, a
	}
	return a, b
}

// SendDirect stores a direct message, creating the conversation if the pair
// has never talked before.
func SendDirect(db *gorm.DB, senderID, recipientID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}
	if senderID == recipientID {
		return nil, ErrSelfMessage
	}

	var count int64
	if err := db.Table("users").Where("id = ?", recipientID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrRecipientNotFound
	}

	userA, userB := canonicalPair(senderID, recipientID)

	var msg *Message
	err := db.Transaction(func(tx *gorm.DB) error {
		var conversation Conversation
		err := tx.Where("user_a_id = ? AND user_b_id = ?", userA, userB).First(&conversation).Error
		if err != nil {
			if err != gorm.ErrRecordNotFound {
				return err
			}
			conversation = Conversation{UserAID: userA, UserBID: userB}
			if err := tx.Create(&conversation).Error; err != nil {
				return err
			}
		}

		msg = &Message{
			ConversationID: conversation.ID,
			SenderID:       senderID,
			RecipientID:    recipientID,
			Content:        content,
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}

		now := time.Now()
		return tx.Model(&Conversation{}).
			Where("id = ?", conversation.ID).
			Update("last_message_at", now).Error
	})
	if err != nil {
		return nil, err
	}

	return msg, nil
}

// ConversationSummary is one row in a user's conversation list.
type ConversationSummary struct {
	ID            uuid.UUID  `gorm:"column:id" json:"id"`
	OtherUserID   uuid.UUID  `gorm:"column:other_user_id" json:"otherUserId"`
	OtherUsername string     `gorm:"column:other_username" json:"otherUsername"`
	OtherFullName string     `gorm:"column:other_full_name" json:"otherFullName"`
	OtherAvatar   string     `gorm:"column:other_avatar" json:"otherAvatar"`
	LastMessageAt *time.Time `gorm:"column:last_message_at" json:"lastMessageAt,omitempty"`
	UnreadCount   int64      `gorm:"column:unread_count" json:"unreadCount"`
}

// ListConversations returns the user's conversations ordered by recent activity.
func ListConversations(db *gorm.DB, userID uuid.UUID, params pagination.Params) ([]ConversationSummary, int64, error) {
	base := db.Table("conversations").
		Where("user_a_id = ? OR user_b_id = ?", userID, userID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []ConversationSummary
	err := base.
		Joins("JOIN users ON users.id = CASE WHEN conversations.user_a_id = ? THEN conversations.user_b_id ELSE conversations.user_a_id END", userID).
		Select(`conversations.id,
			users.id AS other_user_id,
			users.username AS other_username,
			users.full_name AS other_full_name,
			users.avatar_url AS other_avatar,
			conversations.last_message_at,
			(SELECT COUNT(*) FROM messages
				WHERE messages.conversation_id = conversations.id
				AND messages.recipient_id = ?
				AND messages.read_at IS NULL) AS unread_count`, userID).
		Order("conversations.last_message_at DESC NULLS LAST").
		Offset(params.Skip).
		Limit(params.Limit).
		Scan(&rows).Error

	return rows, total, err
}

// getConversationFor loads a conversation and checks the user belongs to it.
func getConversationFor(db *gorm.DB, conversationID, userID uuid.UUID) (*Conversation, error) {
	var conversation Conversation
	if err := db.First(&conversation, "id = ?", conversationID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if conversation.UserAID != userID && conversation.UserBID != userID {
		return nil, ErrNotParticipant
	}

	return &conversation, nil
}

// ListMessages returns a conversation's messages newest first and marks the
// caller's incoming messages as read.
func ListMessages(db *gorm.DB, conversationID, userID uuid.UUID, params pagination.Params) ([]Message, int64, error) {
	if _, err := getConversationFor(db, conversationID, userID); err != nil {
		return nil, 0, err
	}

	base := db.Model(&Message{}).Where("conversation_id = ?", conversationID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []Message
	if err := base.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&messages).Error; err != nil {
		return nil, 0, err
	}

	now := time.Now()
	if err := db.Model(&Message{}).
		Where("conversation_id = ? AND recipient_id = ? AND read_at IS NULL", conversationID, userID).
		Update("read_at", now).Error; err != nil {
		return nil, 0, err
	}

	return messages, total, nil
}

// UnreadCount returns the number of unread direct messages addressed to a user.
func UnreadCount(db *gorm.DB, userID uuid.UUID) (int64, error) {
	var count int64
	err := db.Model(&Message{}).
		Where("recipient_id = ? AND read_at IS NULL", userID).
		Count(&count).Error
	return count, err
}

// SaveGlobalMessage persists one global chat entry.
func SaveGlobalMessage(db *gorm.DB, senderID uuid.UUID, senderName, content string) (*ChatMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrContentRequired
	}

	msg := ChatMessage{
		SenderID:   senderID,
		SenderName: senderName,
		Content:    content,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &msg, nil
}

// GlobalHistory returns global chat messages, newest first.
func GlobalHistory(db *gorm.DB, params pagination.Params) ([]ChatMessage, int64, error) {
	var total int64
	if err := db.Model(&ChatMessage{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []ChatMessage
	err := db.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&messages).Error

	return messages, total, err
}
