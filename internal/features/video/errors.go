package video

import "errors"

var (
	ErrVideoNotFound       = errors.New("video not found")
	ErrTitleRequired       = errors.New("video title is required")
	ErrNotOwner            = errors.New("not the video owner")
	ErrDurationExceeded    = errors.New("video duration exceeds the allowed limit")
	ErrPremiumRequired     = errors.New("active premium plan required")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrUnpublished         = errors.New("video is not published")
)
