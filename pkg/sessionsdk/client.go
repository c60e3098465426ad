package sessionsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client calls the sessiond HTTP API. It is safe for concurrent use and holds
// no tokens; see Agent for session handling.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, username, password string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/register", CredentialsRequest{Username: username, Password: password}, nil)
	if err != nil {
		return err
	}

	var out RegisterResponse
	return decodeJSON(resp, &out, http.StatusCreated)
}

// Login exchanges credentials for an access/renewal token pair.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/login", CredentialsRequest{Username: username, Password: password}, nil)
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// Refresh exchanges a renewal token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	resp, err := c.doJSON(ctx, http.MethodPost, "/refresh", RefreshRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return "", err
	}

	var out RefreshResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return "", err
	}
	return out.AccessToken, nil
}

// Logout revokes a renewal token on the server.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	resp, err := c.doJSON(ctx, http.MethodPost, "/logout", LogoutRequest{RefreshToken: refreshToken}, nil)
	if err != nil {
		return err
	}

	var out LogoutResponse
	return decodeJSON(resp, &out, http.StatusOK)
}

// Profile fetches the profile for accessToken without any renewal logic.
func (c *Client) Profile(ctx context.Context, accessToken string) (*ProfileResponse, error) {
	resp, err := c.doJSON(ctx, http.MethodGet, "/profile", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}
