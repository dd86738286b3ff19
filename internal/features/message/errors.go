package message

import "errors"

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrNotParticipant       = errors.New("user is not a conversation participant")
	ErrContentRequired      = errors.New("message content is required")
	ErrSelfMessage          = errors.New("cannot message yourself")
)
