package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

type RefreshHandler struct {
	Sessions *service.SessionService
	Metrics  *metrics.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Renew the access token
//	@Description	Exchanges a renewal token for a new access token. The renewal token is not rotated.
//	@Description	Invalid, unknown, revoked and expired renewal tokens all answer 401 invalid_token.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.RefreshRequest	true	"renewal token"
//	@Success		200		{object}	sessionsdk.RefreshResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"missing_token or invalid_request"
//	@Failure		401		{object}	sessionsdk.ErrorResponse	"invalid_token"
//	@Failure		429		{object}	sessionsdk.ErrorResponse	"rate_limit_exceeded"
//	@Header			200		{string}	Cache-Control				"no-store"
//	@Router			/refresh [post].
func (h *RefreshHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req sessionsdk.RefreshRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Metrics.Renewal(sessionsdk.ErrorCodeInvalidRequest)
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	access, err := h.Sessions.Renew(ctx, req.RefreshToken)
	h.Metrics.Renewal(outcome(err))
	if err != nil {
		switch apiErr := apiError(err); {
		case errors.Is(err, service.ErrMissingToken):
			sessionsdk.ErrMissingRefreshToken.WriteError(w)
		case apiErr == sessionsdk.ErrServerError:
			log.Error("renewal failed", "err", err)
			apiErr.WriteError(w)
		default:
			// The precise reason stays server side.
			log.Info("renewal rejected", "reason", outcome(err))
			apiErr.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.RefreshResponse{AccessToken: access})
}
