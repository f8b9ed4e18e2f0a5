package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/alexzimmer/portfolio/internal/domain"
)

// Limiter decides whether a client may proceed.
type Limiter interface {
	Allow(key string) bool
}

// RateLimit rejects requests from clients that exhausted their bucket with a
// JSON 429. Place it after chimw.RealIP so RemoteAddr is the real client.
// onLimited may be nil.
func RateLimit(l Limiter, onLimited func()) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !l.Allow(clientKey(r.RemoteAddr)) {
				if onLimited != nil {
					onLimited()
				}
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "1")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": domain.ErrRateLimited.Error()})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientKey strips the port, if any.
func clientKey(remoteAddr string) string {
	if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return host
	}
	return remoteAddr
}
