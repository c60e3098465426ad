package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/session/metrics"
	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

type LoginHandler struct {
	Sessions *service.SessionService
	Metrics  *metrics.Metrics
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Checks the credentials and returns a new access token and renewal token.
//	@Description	Unknown usernames and wrong passwords produce the same error.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			request	body		sessionsdk.CredentialsRequest	true	"username and password"
//	@Success		200		{object}	sessionsdk.LoginResponse
//	@Failure		400		{object}	sessionsdk.ErrorResponse	"missing_fields or invalid_request"
//	@Failure		401		{object}	sessionsdk.ErrorResponse	"invalid_credentials"
//	@Failure		429		{object}	sessionsdk.ErrorResponse	"rate_limit_exceeded"
//	@Header			200		{string}	Cache-Control				"no-store"
//	@Router			/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sessionsdk.CredentialsRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		h.Metrics.Login(sessionsdk.ErrorCodeInvalidRequest)
		sessionsdk.ErrInvalidRequest.WriteError(w)
		return
	}

	pair, err := h.Sessions.Login(ctx, req.Username, req.Password)
	h.Metrics.Login(outcome(err))
	if err != nil {
		apiErr := apiError(err)
		if apiErr == sessionsdk.ErrServerError {
			slogx.FromContext(ctx).Error("login failed", "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.LoginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
