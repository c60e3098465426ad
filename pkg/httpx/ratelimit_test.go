package httpx_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/netip"
	"testing"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func requestFrom(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remote
	return req
}

func TestIPKeyExtractor(t *testing.T) {
	t.Run("extracts from RemoteAddr", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(requestFrom("192.168.1.1:12345")))
	})

	t.Run("ignores forwarding headers", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "192.168.1.1", httpx.IPKeyExtractor(req))
	})

	t.Run("falls back to raw RemoteAddr", func(t *testing.T) {
		require.Equal(t, "pipe", httpx.IPKeyExtractor(requestFrom("pipe")))
	})
}

func TestProxyIPKeyExtractor(t *testing.T) {
	trusted, err := httpx.ParseTrustedProxies("10.0.0.0/8, 127.0.0.1")
	require.NoError(t, err)
	extract := httpx.ProxyIPKeyExtractor(trusted...)

	t.Run("trusted peer: prefers X-Forwarded-For", func(t *testing.T) {
		req := requestFrom("10.1.2.3:443")
		req.Header.Set("X-Forwarded-For", "203.0.113.1, 10.1.2.3")
		require.Equal(t, "203.0.113.1", extract(req))
	})

	t.Run("trusted peer: uses X-Real-IP if X-Forwarded-For absent", func(t *testing.T) {
		req := requestFrom("127.0.0.1:443")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "203.0.113.2", extract(req))
	})

	t.Run("trusted peer without headers", func(t *testing.T) {
		require.Equal(t, "10.1.2.3", extract(requestFrom("10.1.2.3:443")))
	})

	t.Run("untrusted peer cannot choose its key", func(t *testing.T) {
		req := requestFrom("198.51.100.7:5000")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		req.Header.Set("X-Real-IP", "203.0.113.2")
		require.Equal(t, "198.51.100.7", extract(req))
	})

	t.Run("no trusted proxies", func(t *testing.T) {
		req := requestFrom("10.1.2.3:443")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		require.Equal(t, "10.1.2.3", httpx.ProxyIPKeyExtractor()(req))
	})
}

func TestParseTrustedProxies(t *testing.T) {
	got, err := httpx.ParseTrustedProxies("")
	require.NoError(t, err)
	require.Empty(t, got)

	got, err = httpx.ParseTrustedProxies("10.0.0.0/8,, 192.168.1.1 ,::1")
	require.NoError(t, err)
	require.Equal(t, []netip.Prefix{
		netip.MustParsePrefix("10.0.0.0/8"),
		netip.MustParsePrefix("192.168.1.1/32"),
		netip.MustParsePrefix("::1/128"),
	}, got)

	_, err = httpx.ParseTrustedProxies("10.0.0.0/8,proxy.local")
	require.ErrorContains(t, err, "proxy.local")

	_, err = httpx.ParseTrustedProxies("10.0.0.0/33")
	require.Error(t, err)
}

func TestCompositeKeyExtractor(t *testing.T) {
	extract := httpx.CompositeKeyExtractor(":", httpx.SubjectKeyExtractor, httpx.IPKeyExtractor)

	t.Run("skips empty values", func(t *testing.T) {
		require.Equal(t, "192.168.1.1", extract(requestFrom("192.168.1.1:12345")))
	})

	t.Run("combines subject and ip", func(t *testing.T) {
		req := requestFrom("192.168.1.1:12345")
		req = req.WithContext(httpx.ContextWithSubject(req.Context(), "alice"))
		require.Equal(t, "alice:192.168.1.1", extract(req))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("blocks requests over limit", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}
		h := httpx.RateLimitByIP(cfg)(okHandler)

		for i := range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
			require.Equal(t, http.StatusOK, rec.Code, "request %d should succeed", i+1)
		}

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:12345"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.NotEmpty(t, rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), `"error":"rate_limit_exceeded"`)
	})

	t.Run("different keys are tracked separately", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitByIP(cfg)(okHandler)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.1:2"))
		require.Equal(t, http.StatusTooManyRequests, rec.Code, "port does not matter")

		rec = httptest.NewRecorder()
		h.ServeHTTP(rec, requestFrom("192.168.1.2:1"))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("rotating X-Forwarded-For does not escape the limit", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}
		h := httpx.RateLimitByIP(cfg)(okHandler)

		codes := make([]int, 0, 3)
		for i := range 3 {
			req := requestFrom("198.51.100.7:5000")
			req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i+1))
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			codes = append(codes, rec.Code)
		}
		require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	})

	t.Run("trusted proxy forwards distinct clients", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		trusted, err := httpx.ParseTrustedProxies("10.0.0.1")
		require.NoError(t, err)
		h := httpx.RateLimitByIP(cfg, trusted...)(okHandler)

		for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
			req := requestFrom("10.0.0.1:443")
			req.Header.Set("X-Forwarded-For", client)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusOK, rec.Code, client)
		}

		req := requestFrom("10.0.0.1:443")
		req.Header.Set("X-Forwarded-For", "203.0.113.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})

	t.Run("allows request when key extractor returns empty", func(t *testing.T) {
		cfg := httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1}
		h := httpx.RateLimitMiddleware(cfg, func(*http.Request) string { return "" })(okHandler)

		for range 3 {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, requestFrom("192.168.1.1:1"))
			require.Equal(t, http.StatusOK, rec.Code)
		}
	})
}

func TestParseRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	t.Run("defaults when unset", func(t *testing.T) {
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("UNSET_PROFILE", def))
	})

	t.Run("overrides from env", func(t *testing.T) {
		t.Setenv("RATELIMIT_TEST_REQUESTS", "50")
		t.Setenv("RATELIMIT_TEST_WINDOW_SEC", "10")
		t.Setenv("RATELIMIT_TEST_BURST", "7")

		cfg := httpx.ParseRateLimitFromEnv("TEST", def)
		require.Equal(t, 50, cfg.RequestsPerWindow)
		require.Equal(t, 10*time.Second, cfg.Window)
		require.Equal(t, 7, cfg.Burst)
	})

	t.Run("ignores invalid values", func(t *testing.T) {
		t.Setenv("RATELIMIT_BAD_REQUESTS", "-3")
		t.Setenv("RATELIMIT_BAD_WINDOW_SEC", "soon")
		require.Equal(t, def, httpx.ParseRateLimitFromEnv("BAD", def))
	})
}

func TestDefaultRateLimitsOrdering(t *testing.T) {
	d := httpx.DefaultRateLimits()
	require.Less(t, d.Strict.RequestsPerWindow, d.Moderate.RequestsPerWindow)
	require.Less(t, d.Moderate.RequestsPerWindow, d.Lenient.RequestsPerWindow)
}

func BenchmarkRateLimitMiddleware(b *testing.B) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Minute, Burst: 1000}
	h := httpx.RateLimitByIP(cfg)(okHandler)
	req := requestFrom("192.168.1.1:12345")

	b.ResetTimer()
	for range b.N {
		h.ServeHTTP(httptest.NewRecorder(), req)
	}
}
