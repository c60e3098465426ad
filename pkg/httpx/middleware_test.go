package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func TestChainOrder(t *testing.T) {
	var order []string
	mark := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler, mark("outer"), mark("inner"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"outer", "inner"}, order)
}

func TestBearerToken(t *testing.T) {
	for header, want := range map[string]string{
		"Bearer abc":    "abc",
		"bearer abc":    "abc",
		"Bearer   abc ": "abc",
		"Bearer ":       "",
		"Basic abc":     "",
		"abc":           "",
		"":              "",
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		got, ok := httpx.BearerToken(req)
		require.Equal(t, want, got, "header %q", header)
		require.Equal(t, want != "", ok, "header %q", header)
	}
}

func TestAuthnMiddleware(t *testing.T) {
	authz := httpx.AuthorizerFunc(func(_ context.Context, token string) (string, error) {
		if token == "good" {
			return "alice", nil
		}
		return "", errors.New("nope")
	})

	h := httpx.AuthnMiddleware(authz)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"subject": httpx.SubjectFromContext(r.Context())})
	}))

	serve := func(header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	t.Run("missing header", func(t *testing.T) {
		rec := serve("")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"), "no error attribute without credentials")

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "missing_token", body["error"])
	})

	t.Run("rejected token", func(t *testing.T) {
		rec := serve("Bearer bad")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `Bearer error="invalid_token"`)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "invalid_token", body["error"])
	})

	t.Run("other scheme counts as no credentials", func(t *testing.T) {
		rec := serve("Basic YWxpY2U6cHc=")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
	})

	t.Run("accepted token", func(t *testing.T) {
		rec := serve("Bearer good")
		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, `{"subject":"alice"}`, rec.Body.String())
	})
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) error {
		var dst struct {
			Name string `json:"name"`
		}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		return httpx.DecodeJSON(httptest.NewRecorder(), req, &dst)
	}

	require.NoError(t, decode(`{"name":"alice"}`))
	require.NoError(t, decode(`{"name":"alice","extra":true}`))
	require.ErrorIs(t, decode(``), httpx.ErrBadBody)
	require.ErrorIs(t, decode(`{"name":`), httpx.ErrBadBody)
	require.ErrorIs(t, decode(`{"name":"a"}{"name":"b"}`), httpx.ErrBadBody)
	require.ErrorIs(t, decode(`{"name":"`+strings.Repeat("x", httpx.MaxBodyBytes)+`"}`), httpx.ErrBadBody)
}

func TestWriteJSONNoCache(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]bool{"success": true})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.JSONEq(t, `{"success":true}`, rec.Body.String())
}
