package like

import "errors"

var (
	ErrTargetNotFound = errors.New("like target not found")
)
