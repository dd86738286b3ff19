package billing

import "errors"

var (
	ErrInvalidPlan        = errors.New("invalid plan")
	ErrSignatureMismatch  = errors.New("payment signature mismatch")
	ErrOrderNotRecognized = errors.New("order is not a premium purchase")
)
