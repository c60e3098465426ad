package http

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

// apiError maps a service error to its wire form. Every renewal rejection
// collapses to invalid_token so clients cannot tell them apart.
func apiError(err error) *sessionsdk.APIError {
	switch {
	case errors.Is(err, service.ErrMissingFields):
		return sessionsdk.ErrMissingFields
	case errors.Is(err, service.ErrDuplicateUsername):
		return sessionsdk.ErrDuplicateUsername
	case errors.Is(err, service.ErrInvalidCredentials):
		return sessionsdk.ErrInvalidCredentials
	case errors.Is(err, service.ErrMissingToken):
		return sessionsdk.ErrMissingToken
	case errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrUnknownToken),
		errors.Is(err, service.ErrTokenExpired):
		return sessionsdk.ErrInvalidToken
	default:
		return sessionsdk.ErrServerError
	}
}

// outcome is the metrics label for err: the service sentinel's text for
// known failures, "error" for anything else.
func outcome(err error) string {
	if err == nil {
		return metrics.OutcomeSuccess
	}
	for _, known := range []error{
		service.ErrMissingFields,
		service.ErrDuplicateUsername,
		service.ErrInvalidCredentials,
		service.ErrMissingToken,
		service.ErrInvalidToken,
		service.ErrUnknownToken,
		service.ErrTokenExpired,
		service.ErrDuplicateToken,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return metrics.OutcomeError
}

// meteredAuthorizer counts access-token checks made by AuthnMiddleware.
type meteredAuthorizer struct {
	sessions *service.SessionService
	metrics  *metrics.Metrics
}

func (a meteredAuthorizer) Authorize(ctx context.Context, token string) (string, error) {
	sub, err := a.sessions.Authorize(ctx, token)
	a.metrics.Authorization(outcome(err))
	if err != nil {
		slogx.FromContext(ctx).Debug("authorization failed", "reason", outcome(err))
	}
	return sub, err
}
