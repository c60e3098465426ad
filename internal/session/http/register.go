package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

type RegisterHandler struct {
	Sessions *service.SessionService
	Metrics  *metrics.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Register an account
//	@Description	Creates an account. Usernames are trimmed and must be unique.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.CredentialsRequest	true	"username and password"
//	@Success		201		{object}	sessionsdk.RegisterResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"missing_fields or invalid_request"
//	@Failure		409		{object}	sessionsdk.ErrorResponse	"duplicate_username"
//	@Failure		429		{object}	sessionsdk.ErrorResponse	"rate_limit_exceeded"
//	@Router			/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Metrics.Registration(sessionsdk.ErrorCodeInvalidRequest)
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	err := h.Sessions.Register(ctx, req.Username, req.Password)
	h.Metrics.Registration(outcome(err))
	if err != nil {
		apiErr := apiError(err)
		if apiErr == sessionsdk.ErrServerError {
			slogx.FromContext(ctx).Error("registration failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, sessionsdk.RegisterResponse{Success: true})
}
