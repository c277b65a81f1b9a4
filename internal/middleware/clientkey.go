package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
)

// SessionCookie names the cookie that pins a browser to one admission key.
const SessionCookie = "t2s_session"

type clientKeyKey struct{}

// ClientKey derives the admission-control key for the request: the session
// cookie when the client sent one, else the remote IP. Cookie-less clients
// get a cookie for next time but are keyed by IP for this request, so
// clients that never return cookies still share one stable key.
func ClientKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var key string
		if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
			key = "session:" + c.Value
		} else {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookie,
				Value:    uuid.NewString(),
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
			key = "ip:" + clientIP(r)
		}
		ctx := context.WithValue(r.Context(), clientKeyKey{}, key)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientKeyFromContext extracts the admission key from the context.
// Returns an empty string if the middleware did not run.
func ClientKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(clientKeyKey{}).(string)
	return key
}

// clientIP extracts the client IP address from the request, stripping the
// port. Only RemoteAddr is consulted; X-Forwarded-For is client-controlled
// and never feeds the admission key.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
