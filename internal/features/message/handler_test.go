package message

import (
	"io"
	"testing"
	"time"

	"log/slog"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/barterskills/barterskills-server-go/pkg/types"
)

type fakeNotifier struct {
	recipientID string
	payload     map[string]any
	calls       int
}

func (f *fakeNotifier) NotifyDirectMessage(recipientID string, payload map[string]any) {
	f.calls++
	f.recipientID = recipientID
	f.payload = payload
}

func TestNotifyRecipient(t *testing.T) {
	notifier := &fakeNotifier{}
	h := &Handler{
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		notifier: notifier,
	}

	sentAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	msg := &Message{
		BaseModel:      types.BaseModel{ID: uuid.New(), CreatedAt: sentAt},
		ConversationID: uuid.New(),
		SenderID:       uuid.New(),
		RecipientID:    uuid.New(),
		Content:        "hey there",
	}

	h.notifyRecipient(msg, "Alice Example")

	require.Equal(t, 1, notifier.calls)
	assert.Equal(t, msg.RecipientID.String(), notifier.recipientID)
	assert.Equal(t, msg.ID.String(), notifier.payload["messageId"])
	assert.Equal(t, msg.ConversationID.String(), notifier.payload["conversationId"])
	assert.Equal(t, msg.SenderID.String(), notifier.payload["senderId"])
	assert.Equal(t, "Alice Example", notifier.payload["senderName"])
	assert.Equal(t, "hey there", notifier.payload["message"])
	assert.Equal(t, "2026-08-01T12:00:00Z", notifier.payload["timestamp"])
}

func TestNotifyRecipientWithoutNotifier(t *testing.T) {
	h := &Handler{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	assert.NotPanics(t, func() {
		h.notifyRecipient(&Message{}, "Alice Example")
	})
}
