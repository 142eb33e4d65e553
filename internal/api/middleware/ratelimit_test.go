package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLimiterFixture(t *testing.T, whitelist []string) *RateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiter(client, zerolog.Nop(), whitelist)
}

func doLogin(handler http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.RemoteAddr = ip + ":12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := newLimiterFixture(t, nil)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	w := doLogin(handler, "10.0.0.1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20", w.Header().Get("X-RateLimit-Limit"))
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := newLimiterFixture(t, nil)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	var last *httptest.ResponseRecorder
	for i := 0; i < 21; i++ {
		last = doLogin(handler, "10.0.0.2")
	}

	require.NotNil(t, last)
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
	assert.NotEmpty(t, last.Header().Get("Retry-After"))
	assert.Contains(t, last.Body.String(), "rate limit exceeded")
}

func TestRateLimiter_WhitelistedIPBypasses(t *testing.T) {
	rl := newLimiterFixture(t, []string{"10.0.0.3"})
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 30; i++ {
		w := doLogin(handler, "10.0.0.3")
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_UnmatchedRouteUnlimited(t *testing.T) {
	rl := newLimiterFixture(t, nil)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 50; i++ {
		req := httptest.NewRequest(http.MethodGet, "/services", nil)
		req.RemoteAddr = "10.0.0.4:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimiter_CallbackBucketsPerKey(t *testing.T) {
	rl := newLimiterFixture(t, nil)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Different keys get independent buckets
	for _, key := range []string{"cfy_a", "cfy_b"} {
		req := httptest.NewRequest(http.MethodPost, "/callback/register-service", nil)
		req.RemoteAddr = "10.0.0.5:12345"
		req.Header.Set(APIKeyHeader, key)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "120", w.Header().Get("X-RateLimit-Limit"))
	}
}
