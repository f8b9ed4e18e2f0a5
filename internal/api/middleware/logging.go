package middleware

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// responseWriter wraps http.ResponseWriter to capture the status code
// written by the handler so we can log it after the fact.
type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

// RequestLogger returns a middleware that emits a structured zap log line
// for every completed HTTP request. Successful probes are logged at debug so
// a 10s polling interval does not flood the logs.
func RequestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			level := zap.InfoLevel
			if wrapped.status >= http.StatusInternalServerError {
				level = zap.WarnLevel
			} else if wrapped.status < http.StatusBadRequest && isProbePath(r.URL.Path) {
				level = zap.DebugLevel
			}

			logger.Log(level, "http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", wrapped.status),
				zap.Duration("latency", time.Since(start)),
				zap.String("request_id", GetRequestID(r.Context())),
				zap.String("remote_addr", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
			)
		})
	}
}

func isProbePath(p string) bool {
	switch p {
	case "/healthz", "/api/healthz", "/metrics":
		return true
	}
	return false
}
