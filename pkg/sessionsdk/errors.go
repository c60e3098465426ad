package sessionsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
)

// Wire error codes.
const (
	ErrorCodeMissingFields      = "missing_fields"
	ErrorCodeDuplicateUsername  = "duplicate_username"
	ErrorCodeInvalidCredentials = "invalid_credentials"
	ErrorCodeMissingToken       = "missing_token"
	ErrorCodeInvalidToken       = "invalid_token"
	ErrorCodeInvalidRequest     = "invalid_request"
	ErrorCodeRateLimitExceeded  = "rate_limit_exceeded"
	ErrorCodeServerError        = "server_error"
)

// Client-side session errors.
var (
	// ErrNoSession is returned by authenticated calls when no access token
	// is held.
	ErrNoSession = errors.New("sessionsdk: no session")

	// ErrSessionEnded is wrapped when the server refused to renew. The
	// cached tokens have been cleared and the user must log in again.
	ErrSessionEnded = errors.New("sessionsdk: session ended")
)

// APIError is a {"error", "error_description"} response. The server writes
// them with WriteError and the client parses them back, so errors.Is works
// against the predefined values on both sides.
type APIError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

// Is matches on the error code only.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	return ok && t.Code == e.Code
}

// WriteError writes e as the HTTP response.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

var (
	ErrMissingFields = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMissingFields,
		Description: "username and password are required",
	}

	ErrDuplicateUsername = &APIError{
		StatusCode:  http.StatusConflict,
		Code:        ErrorCodeDuplicateUsername,
		Description: "username already exists",
	}

	// ErrInvalidCredentials does not say which of username or password was
	// wrong.
	ErrInvalidCredentials = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidCredentials,
		Description: "invalid username or password",
	}

	ErrMissingToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeMissingToken,
		Description: "a token is required",
	}

	// ErrMissingRefreshToken is the body-level variant of ErrMissingToken
	// returned by /refresh and /logout.
	ErrMissingRefreshToken = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeMissingToken,
		Description: "refreshToken is required",
	}

	// ErrInvalidToken covers every rejected token, including unknown,
	// revoked and expired renewal tokens.
	ErrInvalidToken = &APIError{
		StatusCode:  http.StatusUnauthorized,
		Code:        ErrorCodeInvalidToken,
		Description: "the token is invalid or expired",
	}

	ErrInvalidRequest = &APIError{
		StatusCode:  http.StatusBadRequest,
		Code:        ErrorCodeInvalidRequest,
		Description: "the request body is malformed",
	}

	ErrRateLimited = &APIError{
		StatusCode:  http.StatusTooManyRequests,
		Code:        ErrorCodeRateLimitExceeded,
		Description: "too many requests, try again later",
	}

	ErrServerError = &APIError{
		StatusCode:  http.StatusInternalServerError,
		Code:        ErrorCodeServerError,
		Description: "internal server error",
	}
)

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not in the error format still produce an APIError carrying the status.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var errResp ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		return &APIError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error,
			Description: errResp.ErrorDescription,
		}
	}

	return &APIError{
		StatusCode:  resp.StatusCode,
		Code:        http.StatusText(resp.StatusCode),
		Description: string(body),
	}
}
