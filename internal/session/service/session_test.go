package service

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiond/internal/session/domain"
	"github.com/aussiebroadwan/sessiond/internal/session/store/drivers/sqlite"
	"github.com/aussiebroadwan/sessiond/pkg/cryptox"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
	"github.com/aussiebroadwan/sessiond/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*SessionService, *testClock) {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "sessiond.db")))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations(context.Background()))

	clock := &testClock{now: time.Now().UTC().Truncate(time.Second)}
	codec, err := jwtx.NewCodec([]byte("test-signing-secret"))
	require.NoError(t, err)
	codec.Now = clock.Now

	return &SessionService{
		Store:      st,
		Codec:      codec,
		Hasher:     cryptox.NewHasher("test-pepper"),
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RenewalTTL: jwtx.DefaultRefreshTokenTTL,
	}, clock
}

func testContext() context.Context {
	return slogx.WithContext(context.Background(), slogx.Discard())
}

func TestRegister(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)

	require.NoError(t, s.Register(ctx, "alice", "pw1"))

	t.Run("duplicate username", func(t *testing.T) {
		require.ErrorIs(t, s.Register(ctx, "alice", "other"), ErrDuplicateUsername)
	})

	t.Run("username is trimmed", func(t *testing.T) {
		require.ErrorIs(t, s.Register(ctx, "  alice ", "other"), ErrDuplicateUsername)
	})

	t.Run("missing fields", func(t *testing.T) {
		require.ErrorIs(t, s.Register(ctx, "", "pw"), ErrMissingFields)
		require.ErrorIs(t, s.Register(ctx, "   ", "pw"), ErrMissingFields)
		require.ErrorIs(t, s.Register(ctx, "bob", ""), ErrMissingFields)
	})

	t.Run("password hash is stored, not the password", func(t *testing.T) {
		a, err := s.Store.Accounts().Find(ctx, "alice")
		require.NoError(t, err)
		require.NotContains(t, a.PasswordHash, "pw1")
		require.NoError(t, s.Hasher.VerifyPassword("pw1", a.PasswordHash))
	})
}

func TestRegisterConcurrentSameUsername(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)

	const n = 8
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = s.Register(ctx, "racer", "pw")
		}(i)
	}
	wg.Wait()

	var ok, dup int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateUsername):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	require.Equal(t, 1, ok)
	require.Equal(t, n-1, dup)

	count, err := s.Store.Accounts().Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestLogin(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))

	t.Run("issues a usable pair", func(t *testing.T) {
		pair, err := s.Login(ctx, "alice", "pw1")
		require.NoError(t, err)
		require.NotEmpty(t, pair.AccessToken)
		require.NotEmpty(t, pair.RefreshToken)
		require.NotEqual(t, pair.AccessToken, pair.RefreshToken)

		sub, err := s.Authorize(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", sub)

		rec, err := s.Store.RenewalTokens().Get(ctx, cryptox.FingerprintToken(pair.RefreshToken))
		require.NoError(t, err)
		require.Equal(t, "alice", rec.Username)
	})

	t.Run("unknown user and wrong password are indistinguishable", func(t *testing.T) {
		_, errWrong := s.Login(ctx, "alice", "nope")
		_, errUnknown := s.Login(ctx, "mallory", "nope")

		require.ErrorIs(t, errWrong, ErrInvalidCredentials)
		require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		require.Equal(t, errWrong.Error(), errUnknown.Error())
	})

	t.Run("surrounding whitespace in the username is ignored", func(t *testing.T) {
		pair, err := s.Login(ctx, " alice\t", "pw1")
		require.NoError(t, err)

		sub, err := s.Authorize(ctx, pair.AccessToken)
		require.NoError(t, err)
		require.Equal(t, "alice", sub)
	})

	t.Run("usernames are case sensitive", func(t *testing.T) {
		_, err := s.Login(ctx, "Alice", "pw1")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := s.Login(ctx, "alice", "")
		require.ErrorIs(t, err, ErrMissingFields)
		_, err = s.Login(ctx, " ", "pw1")
		require.ErrorIs(t, err, ErrMissingFields)
	})
}

func TestAuthorize(t *testing.T) {
	ctx := testContext()
	s, clock := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	pair, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	t.Run("missing token", func(t *testing.T) {
		_, err := s.Authorize(ctx, "")
		require.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("tampered token", func(t *testing.T) {
		parts := strings.Split(pair.AccessToken, ".")
		require.Len(t, parts, 3)
		sig := []byte(parts[2])
		if sig[0] == 'A' {
			sig[0] = 'B'
		} else {
			sig[0] = 'A'
		}
		_, err := s.Authorize(ctx, parts[0]+"."+parts[1]+"."+string(sig))
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("renewal token is not an access token", func(t *testing.T) {
		_, err := s.Authorize(ctx, pair.RefreshToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired access token", func(t *testing.T) {
		clock.Advance(jwtx.DefaultAccessTokenTTL)
		_, err := s.Authorize(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestRenew(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	require.NoError(t, s.Register(ctx, "bob", "pw2"))
	pair, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	t.Run("mints a fresh access token each time", func(t *testing.T) {
		a1, err := s.Renew(ctx, pair.RefreshToken)
		require.NoError(t, err)
		a2, err := s.Renew(ctx, pair.RefreshToken)
		require.NoError(t, err)
		require.NotEqual(t, a1, a2)

		sub, err := s.Authorize(ctx, a1)
		require.NoError(t, err)
		require.Equal(t, "alice", sub)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := s.Renew(ctx, "")
		require.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("garbage and access tokens are invalid", func(t *testing.T) {
		_, err := s.Renew(ctx, "not-a-token")
		require.ErrorIs(t, err, ErrInvalidToken)

		_, err = s.Renew(ctx, pair.AccessToken)
		require.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("validly signed but never stored", func(t *testing.T) {
		forged, err := s.Codec.Issue("alice", jwtx.KindRefresh, time.Hour)
		require.NoError(t, err)

		_, err = s.Renew(ctx, forged)
		require.ErrorIs(t, err, ErrUnknownToken)
	})

	t.Run("record subject mismatch", func(t *testing.T) {
		tok, err := s.Codec.Issue("bob", jwtx.KindRefresh, time.Hour)
		require.NoError(t, err)
		require.NoError(t, s.Store.RenewalTokens().Put(ctx, domain.RenewalRecord{
			TokenHash: cryptox.FingerprintToken(tok),
			Username:  "alice",
			ExpiresAt: s.now().Add(time.Hour),
		}))

		_, err = s.Renew(ctx, tok)
		require.ErrorIs(t, err, ErrUnknownToken)
	})

	t.Run("store expiry wins over a live signature", func(t *testing.T) {
		tok, err := s.Codec.Issue("alice", jwtx.KindRefresh, time.Hour)
		require.NoError(t, err)
		require.NoError(t, s.Store.RenewalTokens().Put(ctx, domain.RenewalRecord{
			TokenHash: cryptox.FingerprintToken(tok),
			Username:  "alice",
			ExpiresAt: s.now().Add(-time.Second),
		}))

		_, err = s.Renew(ctx, tok)
		require.ErrorIs(t, err, ErrTokenExpired)
		_, err = s.Renew(ctx, tok)
		require.ErrorIs(t, err, ErrUnknownToken)
	})
}

func TestRenewAfterExpiry(t *testing.T) {
	ctx := testContext()
	s, clock := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	pair, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	clock.Advance(jwtx.DefaultRefreshTokenTTL + time.Second)

	_, err = s.Renew(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrTokenExpired)

	_, err = s.Store.RenewalTokens().Get(ctx, cryptox.FingerprintToken(pair.RefreshToken))
	require.Error(t, err)

	_, err = s.Renew(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnknownToken)
}

func TestRevoke(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	pair, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	require.NoError(t, s.Revoke(ctx, pair.RefreshToken))
	require.NoError(t, s.Revoke(ctx, pair.RefreshToken))

	_, err = s.Renew(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnknownToken)

	require.ErrorIs(t, s.Revoke(ctx, ""), ErrMissingToken)
	require.ErrorIs(t, s.Revoke(ctx, pair.AccessToken), ErrInvalidToken)
}

func TestProfile(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))

	p, err := s.Profile(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", p.Username)

	_, err = s.Profile(ctx, "ghost")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestEnsureSeedAccount(t *testing.T) {
	ctx := testContext()
	s, _ := newTestService(t)

	generated, created, err := s.EnsureSeedAccount(ctx, "admin", "")
	require.NoError(t, err)
	require.True(t, created)
	require.Len(t, generated, 16)

	_, err = s.Login(ctx, "admin", generated)
	require.NoError(t, err)

	generated, created, err = s.EnsureSeedAccount(ctx, "admin", "ignored")
	require.NoError(t, err)
	require.False(t, created)
	require.Empty(t, generated)

	generated, created, err = s.EnsureSeedAccount(ctx, "ops", "fixed-password")
	require.NoError(t, err)
	require.True(t, created)
	require.Empty(t, generated)
}

func TestHousekeepingSweep(t *testing.T) {
	ctx := testContext()
	s, clock := newTestService(t)
	require.NoError(t, s.Register(ctx, "alice", "pw1"))
	_, err := s.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	hk := NewHousekeepingService(s.Store, slogx.Discard(), time.Minute)
	hk.Now = clock.Now

	n, err := hk.Sweep(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	clock.Advance(jwtx.DefaultRefreshTokenTTL)
	n, err = hk.Sweep(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func TestHousekeepingStartStop(t *testing.T) {
	s, _ := newTestService(t)

	hk := NewHousekeepingService(s.Store, slogx.Discard(), 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
