package sessionsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// DefaultMargin is how long before expiry an access token is renewed.
const DefaultMargin = 10 * time.Second

// State is the agent's view of the session.
type State int

const (
	NoSession State = iota
	HasSession
)

func (s State) String() string {
	switch s {
	case HasSession:
		return "has_session"
	default:
		return "no_session"
	}
}

// Agent holds a session and applies the renewal policy to authenticated
// calls. It is safe for concurrent use.
type Agent struct {
	Client *Client
	Store  TokenStore

	// Margin before expiry at which the access token is renewed up front.
	Margin time.Duration

	// RevokeOnLogout also deletes the renewal token on the server when
	// logging out. Without it Logout only forgets the local tokens.
	RevokeOnLogout bool

	Now func() time.Time

	// renewMu serializes renewals.
	renewMu sync.Mutex
}

// NewAgent returns an Agent using store, or an in-memory store when nil.
func NewAgent(client *Client, store TokenStore) *Agent {
	if store == nil {
		store = &MemoryTokenStore{}
	}
	return &Agent{
		Client: client,
		Store:  store,
		Margin: DefaultMargin,
		Now:    time.Now,
	}
}

// State reports HasSession while an access token is held.
func (a *Agent) State() State {
	t, err := a.Store.Load()
	if err != nil || t.AccessToken == "" {
		return NoSession
	}
	return HasSession
}

// Register creates the account and logs in with it.
func (a *Agent) Register(ctx context.Context, username, password string) error {
	if err := a.Client.Register(ctx, username, password); err != nil {
		return err
	}
	return a.Login(ctx, username, password)
}

// Login replaces any held tokens with a fresh pair.
func (a *Agent) Login(ctx context.Context, username, password string) error {
	resp, err := a.Client.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return a.Store.Save(Tokens{AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken})
}

// Logout forgets the local tokens. With RevokeOnLogout the renewal token is
// revoked first; a revocation failure is returned but the tokens are cleared
// regardless.
func (a *Agent) Logout(ctx context.Context) error {
	t, err := a.Store.Load()
	if err != nil {
		return err
	}

	var revokeErr error
	if a.RevokeOnLogout && t.RefreshToken != "" {
		revokeErr = a.Client.Logout(ctx, t.RefreshToken)
	}

	if err := a.Store.Clear(); err != nil {
		return err
	}
	return revokeErr
}

// Renew fetches a new access token now.
func (a *Agent) Renew(ctx context.Context) error {
	_, err := a.renew(ctx, "")
	return err
}

// Do sends req with the current access token.
//
// The token is renewed first if it expires within Margin or cannot be
// inspected. A 401 answer triggers exactly one renewal and one retry; a
// second 401 is returned to the caller as is. Request bodies are buffered
// when req.GetBody is not set so the retry can resend them.
func (a *Agent) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	t, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	if t.AccessToken == "" {
		return nil, ErrNoSession
	}

	token := t.AccessToken
	if a.expiresSoon(token) {
		if token, err = a.renew(ctx, token); err != nil {
			return nil, err
		}
	}

	getBody, err := rewindableBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := a.send(req, token, getBody)
	if err != nil || resp.StatusCode != http.StatusUnauthorized {
		return resp, err
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	if token, err = a.renew(ctx, token); err != nil {
		return nil, err
	}
	return a.send(req, token, getBody)
}

// Profile calls GET /profile through Do.
func (a *Agent) Profile(ctx context.Context) (*ProfileResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.Client.url("/profile"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.Do(req)
	if err != nil {
		return nil, err
	}

	var out ProfileResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

// renew obtains a new access token. stale is the token the caller was using;
// if another caller has already replaced it, the newer token is returned
// without contacting the server.
func (a *Agent) renew(ctx context.Context, stale string) (string, error) {
	a.renewMu.Lock()
	defer a.renewMu.Unlock()

	t, err := a.Store.Load()
	if err != nil {
		return "", err
	}
	if stale != "" && t.AccessToken != "" && t.AccessToken != stale {
		return t.AccessToken, nil
	}
	if t.RefreshToken == "" {
		_ = a.Store.Clear()
		return "", fmt.Errorf("%w: no renewal token held", ErrSessionEnded)
	}

	access, err := a.Client.Refresh(ctx, t.RefreshToken)
	if err != nil {
		// Any failed renewal ends the session. The cause stays in the chain
		// so callers can tell a rejected token from an unreachable server.
		_ = a.Store.Clear()
		return "", fmt.Errorf("%w: %w", ErrSessionEnded, err)
	}

	t.AccessToken = access
	if err := a.Store.Save(t); err != nil {
		return "", err
	}
	return access, nil
}

func (a *Agent) send(req *http.Request, token string, getBody func() (io.ReadCloser, error)) (*http.Response, error) {
	out := req.Clone(req.Context())
	if getBody != nil {
		body, err := getBody()
		if err != nil {
			return nil, err
		}
		out.Body = body
		out.GetBody = getBody
	}
	out.Header.Set("Authorization", "Bearer "+token)

	resp, err := a.Client.HTTPClient.Do(out)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	return resp, nil
}

func (a *Agent) expiresSoon(token string) bool {
	exp, err := InspectExpiry(token)
	if err != nil {
		return true
	}
	return !a.now().Add(a.Margin).Before(exp)
}

func (a *Agent) now() time.Time {
	if a.Now == nil {
		return time.Now()
	}
	return a.Now()
}

func rewindableBody(req *http.Request) (func() (io.ReadCloser, error), error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	if req.GetBody != nil {
		return req.GetBody, nil
	}

	buf, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to buffer request body: %w", err)
	}
	return func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(buf)), nil
	}, nil
}
