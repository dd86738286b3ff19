package comment

import "errors"

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrContentRequired = errors.New("comment content is required")
	ErrNotOwner        = errors.New("not the comment owner")
)
