package sessionsdk

// CredentialsRequest is the body of POST /register and POST /login.
type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterResponse is returned by POST /register.
type RegisterResponse struct {
	Success bool `json:"success"`
}

// LoginResponse carries the token pair issued at login.
type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// RefreshRequest is the body of POST /refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse carries the new access token. The renewal token is not
// rotated.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// LogoutRequest is the body of POST /logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type LogoutResponse struct {
	Success bool `json:"success"`
}

// ProfileResponse is returned by GET /profile.
type ProfileResponse struct {
	Username string `json:"username"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	// Status is "ok" or "unavailable".
	Status string `json:"status"`

	// Uptime is the service uptime, e.g. "1h23m45s".
	Uptime string `json:"uptime,omitempty"`

	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the status of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
}

// ErrorResponse is the JSON body of every failing endpoint.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}
