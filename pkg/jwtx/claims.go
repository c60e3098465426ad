package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Default lifetimes for the two credential kinds.
const (
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// KindRefresh marks a renewal credential. Access credentials carry no kind.
const KindRefresh = "refresh"

// Claims are the claims embedded in every token we mint.
type Claims struct {
	jwt.RegisteredClaims

	// Kind distinguishes renewal credentials from access credentials.
	Kind string `json:"kind,omitempty"`
}

// IsRefresh reports whether the claims describe a renewal credential.
func (c Claims) IsRefresh() bool { return c.Kind == KindRefresh }

// ExpiresAtTime returns the exp claim or the zero time when absent.
func (c Claims) ExpiresAtTime() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// newClaims builds claims valid from now for ttl.
func newClaims(subject, kind string, ttl time.Duration, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Kind: kind,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim so two
// tokens minted in the same second never collide.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}
