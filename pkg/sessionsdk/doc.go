/*
Package sessionsdk is the client side of sessiond.

# Overview

Client wraps the plain HTTP endpoints (register, login, refresh, logout,
profile and the health probes). It holds no state.

Agent sits on top of a Client and owns a session: it keeps the current access
and renewal tokens in a TokenStore and applies the renewal policy to every
authenticated call made through Agent.Do.

	client := sessionsdk.NewClient("http://localhost:4000")
	agent := sessionsdk.NewAgent(client, &sessionsdk.FileTokenStore{Path: "tokens.json"})

	if err := agent.Login(ctx, "alice", "secret"); err != nil {
		return err
	}

	profile, err := agent.Profile(ctx)

# Renewal policy

Before sending, Agent reads the access token's exp claim without verifying it
(see InspectExpiry) and renews first when the token expires within Margin.
When the server still answers 401 the agent renews once and retries once.
Concurrent callers share a single renewal.

If renewal fails for any reason the cached tokens are dropped and the call
fails with an error wrapping ErrSessionEnded. The underlying cause (an
*APIError or a network error) is wrapped as well.
*/
package sessionsdk
