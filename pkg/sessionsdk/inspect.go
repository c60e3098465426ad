package sessionsdk

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var errNoExpiry = errors.New("sessionsdk: token has no exp claim")

// InspectExpiry reads the exp claim of token without checking its signature.
//
// This is inspection only. The result schedules proactive renewal and must
// never be used to decide whether a caller is authorized; the server verifies
// every token it receives.
func InspectExpiry(token string) (time.Time, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}, fmt.Errorf("sessionsdk: inspect token: %w", err)
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, errNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}
