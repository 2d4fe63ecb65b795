package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_BurstThenDeny(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 3, Window: time.Minute})
	now := time.Unix(0, 0)

	for i := 0; i < 3; i++ {
		_, allowed := rl.allow("client", now)
		require.True(t, allowed, "request %d within the burst must pass", i)
	}

	remaining, allowed := rl.allow("client", now)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_Refills(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 60, Window: time.Minute})
	now := time.Unix(0, 0)

	for i := 0; i < 60; i++ {
		_, allowed := rl.allow("client", now)
		require.True(t, allowed)
	}
	_, allowed := rl.allow("client", now)
	require.False(t, allowed)

	// One token per second at 60/min: two seconds buys two requests.
	now = now.Add(2 * time.Second)
	_, allowed = rl.allow("client", now)
	assert.True(t, allowed)
	_, allowed = rl.allow("client", now)
	assert.True(t, allowed)
	_, allowed = rl.allow("client", now)
	assert.False(t, allowed)
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Unix(0, 0)

	_, allowed := rl.allow("a", now)
	require.True(t, allowed)
	_, allowed = rl.allow("a", now)
	require.False(t, allowed)

	_, allowed = rl.allow("b", now)
	assert.True(t, allowed, "a second client has its own bucket")
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Max: 1, Window: time.Minute})
	now := time.Unix(0, 0)

	_, _ = rl.allow("a", now)
	rl.evictIdle(now.Add(time.Minute))

	assert.Empty(t, rl.buckets)

	// After eviction the client starts with a full bucket again.
	_, allowed := rl.allow("a", now.Add(time.Minute))
	assert.True(t, allowed)
}

func TestRateLimit_Middleware(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	mw := RateLimit(done, RateLimitConfig{
		Max:     2,
		Window:  time.Hour,
		KeyFunc: func(*http.Request) string { return "fixed" },
	})
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w
	}

	w := get()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	w = get()
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	w = get()
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", clientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	assert.Equal(t, "203.0.113.7", clientIP(r))
}
