package http

import (
	"net/http"

	"github.com/aussiebroadwan/sessiond/internal/session/service"
	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/sessionsdk"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
)

type ProfileHandler struct {
	Sessions *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Get the caller's profile
//	@Description	Returns the username bound to the access token.
//	@Tags			Session
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	sessionsdk.ProfileResponse
//	@Failure		401	{object}	sessionsdk.ErrorResponse	"missing_token or invalid_token"
//	@Failure		500	{object}	sessionsdk.ErrorResponse	"server_error"
//	@Router			/profile [get].
func (h *ProfileHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	username := httpx.SubjectFromContext(ctx)
	if username == "" {
		sessionsdk.ErrInvalidToken.WriteError(w)
		return
	}

	profile, err := h.Sessions.Profile(ctx, username)
	if err != nil {
		apiErr := apiError(err)
		if apiErr == sessionsdk.ErrServerError {
			slogx.FromContext(ctx).Warn("failed to load profile", "username", username, "err", err)
		}
		apiErr.WriteError(w)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, sessionsdk.ProfileResponse{Username: profile.Username})
}
