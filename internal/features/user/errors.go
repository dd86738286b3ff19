package user

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email is already registered")
	ErrUsernameTaken       = errors.New("username is already taken")
	ErrInvalidUsername     = errors.New("invalid username format")
	ErrInvalidPassword     = errors.New("invalid password")
	ErrMissingFields       = errors.New("required fields are missing")
	ErrInsufficientCredits = errors.New("insufficient credits")
)
