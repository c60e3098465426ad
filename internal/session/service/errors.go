package service

import "errors"

var (
	ErrMissingFields      = errors.New("missing_fields")
	ErrDuplicateUsername  = errors.New("duplicate_username")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrMissingToken       = errors.New("missing_token")
	ErrInvalidToken       = errors.New("invalid_token")

	// Renewal sub-reasons. The HTTP layer reports all of them as
	// invalid_token; they only surface in logs and metrics.
	ErrUnknownToken   = errors.New("unknown_token")
	ErrTokenExpired   = errors.New("token_expired")
	ErrDuplicateToken = errors.New("duplicate_token")
)
