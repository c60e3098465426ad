package domain

import "time"

// TokenPair is what a successful login hands back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RenewalRecord is the durable half of a renewal credential. The token itself
// is never stored, only its fingerprint.
type RenewalRecord struct {
	TokenHash string // base64url SHA-256 of the token string
	Username  string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now.
func (r RenewalRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
