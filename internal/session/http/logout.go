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

// LogoutHandler revokes a single renewal token. Access tokens already issued
// stay valid until they expire.
type LogoutHandler struct {
	Sessions *service.SessionService
	Metrics  *metrics.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Revoke a renewal token
//	@Description	Deletes the server-side record of a renewal token. Revoking an already revoked or expired token succeeds.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.LogoutRequest	true	"renewal token"
//	@Success		200		{object}	sessionsdk.LogoutResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"missing_token or invalid_request"
//	@Failure		401		{object}	sessionsdk.ErrorResponse	"invalid_token"
//	@Router			/logout [post].
func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionsdk.LogoutRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Metrics.Revocation(sessionsdk.ErrorCodeInvalidRequest)
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.Sessions.Revoke(ctx, req.RefreshToken)
	h.Metrics.Revocation(outcome(err))
	switch {
	case err == nil:
		httpx.WriteJSON(w, http.StatusOK, sessionsdk.LogoutResponse{Success: true})
	case errors.Is(err, service.ErrMissingToken):
		sessionsdk.ErrMissingRefreshToken.WriteError(w)
	default:
		apiErr := apiError(err)
		if apiErr == sessionsdk.ErrServerError {
			slogx.FromContext(ctx).Error("revocation failed", "err", err)
		}
		apiErr.WriteError(w)
	}
}
