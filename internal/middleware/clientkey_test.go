package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clientKeyRecorder() (http.Handler, *string) {
	var key string
	h := ClientKey(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		key = ClientKeyFromContext(r.Context())
	}))
	return h, &key
}

func TestClientKey_UsesSessionCookie(t *testing.T) {
	handler, key := clientKeyRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "abc-123"})
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "session:abc-123", *key)
}

func TestClientKey_FallsBackToIP(t *testing.T) {
	handler, key := clientKeyRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "ip:203.0.113.7", *key)

	// A session cookie was issued for subsequent requests.
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookie, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestClientKey_IgnoresForwardedFor(t *testing.T) {
	handler, key := clientKeyRecorder()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.7:51234"
	req.Header.Set("X-Forwarded-For", "10.0.0.99")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "ip:203.0.113.7", *key)
	assert.False(t, strings.Contains(*key, "10.0.0.99"))
}
