package jwtx

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmptySecret      = errors.New("jwtx: empty signing secret")
	ErrMalformed        = errors.New("jwtx: malformed token")
	ErrInvalidSignature = errors.New("jwtx: invalid signature")
	ErrExpired          = errors.New("jwtx: token expired")
	ErrWrongKind        = errors.New("jwtx: unexpected token kind")
)

// Codec signs and verifies HS256 tokens with a single process-wide secret.
type Codec struct {
	secret []byte

	// Now is the clock used for issuance and expiry checks.
	Now func() time.Time
}

// NewCodec returns a Codec for secret. The secret is copied.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	return &Codec{
		secret: append([]byte(nil), secret...),
		Now:    time.Now,
	}, nil
}

// Issue mints a token for subject that expires ttl from now. kind is empty for
// access tokens and KindRefresh for renewal tokens.
func (c *Codec) Issue(subject, kind string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("jwtx: issue: %w", ErrMalformed)
	}

	claims := newClaims(subject, kind, ttl, c.now())
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("jwtx: sign: %w", err)
	}
	return signed, nil
}

// Verify checks the signature first and only then the expiry.
//
// When the signature is valid but the token has expired, the parsed claims
// are returned together with ErrExpired so callers can still act on the
// subject (for example to clean up server-side state).
func (c *Codec) Verify(token string) (Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims Claims
	_, err := parser.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
			return Claims{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if claims.Subject == "" || claims.ExpiresAt == nil {
		return Claims{}, ErrMalformed
	}

	if !c.now().Before(claims.ExpiresAt.Time) {
		return claims, ErrExpired
	}

	return claims, nil
}

// VerifyKind is Verify plus a check that the token carries the given kind.
// A kind mismatch takes precedence over expiry.
func (c *Codec) VerifyKind(token, kind string) (Claims, error) {
	claims, err := c.Verify(token)
	if err != nil && !errors.Is(err, ErrExpired) {
		return Claims{}, err
	}
	if claims.Kind != kind {
		return Claims{}, ErrWrongKind
	}
	return claims, err
}

func (c *Codec) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
