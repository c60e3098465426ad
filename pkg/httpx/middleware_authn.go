package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// Authorizer resolves an access token to its subject.
type Authorizer interface {
	Authorize(ctx context.Context, token string) (string, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(ctx context.Context, token string) (string, error)

func (f AuthorizerFunc) Authorize(ctx context.Context, token string) (string, error) {
	return f(ctx, token)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// AuthnMiddleware requires a valid bearer access token and stores its subject
// in the request context. Missing tokens answer 401 missing_token, rejected
// tokens 401 invalid_token.
func AuthnMiddleware(a Authorizer) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := BearerToken(r)
			if !ok {
				writeBearerError(w, "missing_token", "missing bearer token")
				return
			}

			subject, err := a.Authorize(ctx, token)
			if err != nil {
				slogx.FromContext(ctx).Info("access token rejected", "err", err)
				writeBearerError(w, "invalid_token", "the access token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSubject(ctx, subject)))
		})
	}
}

// writeBearerError follows RFC 6750 for the header and keeps our JSON body.
// A request without credentials gets a bare challenge (RFC 6750 section 3.1).
func writeBearerError(w http.ResponseWriter, code, desc string) {
	challenge := "Bearer"
	if code != "missing_token" {
		challenge = `Bearer error="invalid_token", error_description="` + desc + `"`
	}
	w.Header().Set("WWW-Authenticate", challenge)
	WriteError(w, http.StatusUnauthorized, code, desc)
}
