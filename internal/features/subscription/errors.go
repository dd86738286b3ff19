package subscription

import "errors"

var (
	ErrChannelNotFound = errors.New("channel not found")
	ErrSelfSubscribe   = errors.New("cannot subscribe to own channel")
)
