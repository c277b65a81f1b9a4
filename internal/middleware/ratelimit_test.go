package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiter_AllowsWithinLimit(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{RequestsPerSecond: 100, Burst: 10})(okHandler())

	for range 5 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_RejectsOverBurst(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{RequestsPerSecond: 0.5, Burst: 2})(okHandler())

	for range 2 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body struct {
		Error struct {
			Kind              string `json:"kind"`
			Message           string `json:"message"`
			RetryAfterSeconds int    `json:"retry_after_seconds"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "rate_limited", body.Error.Kind)
	assert.Positive(t, body.Error.RetryAfterSeconds)
}

func TestRateLimiter_PerClientIsolation(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{RequestsPerSecond: 0.5, Burst: 1})(okHandler())

	reqA := httptest.NewRequest(http.MethodGet, "/", nil)
	reqA.RemoteAddr = "198.51.100.1:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, reqA)
	require.Equal(t, http.StatusOK, rec.Code)

	// Client A is out of tokens, client B is not.
	rec = httptest.NewRecorder()
	reqA2 := httptest.NewRequest(http.MethodGet, "/", nil)
	reqA2.RemoteAddr = "198.51.100.1:1001"
	handler.ServeHTTP(rec, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	reqB := httptest.NewRequest(http.MethodGet, "/", nil)
	reqB.RemoteAddr = "198.51.100.2:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, reqB)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_KeyedBySessionWhenPresent(t *testing.T) {
	handler := ClientKey(RateLimiter(RateLimitConfig{RequestsPerSecond: 0.5, Burst: 1})(okHandler()))

	// Same IP, different sessions: separate buckets.
	send := func(session string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "198.51.100.1:1000"
		req.AddCookie(&http.Cookie{Name: SessionCookie, Value: session})
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, send("alpha"))
	assert.Equal(t, http.StatusTooManyRequests, send("alpha"))
	assert.Equal(t, http.StatusOK, send("beta"))
}

func TestRateLimiter_DisabledConfigPassesThrough(t *testing.T) {
	handler := RateLimiter(RateLimitConfig{})(okHandler())

	for range 50 {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
}
