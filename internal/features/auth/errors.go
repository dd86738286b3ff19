package auth

import "errors"

var (
	ErrMissingFields      = errors.New("required fields are missing")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrGoogleAuthFailed   = errors.New("google authentication failed")
)
