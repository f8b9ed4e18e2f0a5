package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexzimmer/portfolio/internal/api/middleware"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequestID_EchoesIncoming(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, "lb-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "lb-123", seen)
	assert.Equal(t, "lb-123", rec.Header().Get(middleware.RequestIDHeader))
}

func TestRequestID_GeneratesWhenMissing(t *testing.T) {
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.NotEmpty(t, seen)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	middleware.SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, rec.Header().Get("Strict-Transport-Security"), "max-age=63072000")
	assert.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, "on", rec.Header().Get("X-DNS-Prefetch-Control"))
	assert.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
}

func TestRequestID_ReplacesUnsafeIncoming(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
	}{
		{"too long", strings.Repeat("a", 129)},
		{"newline injection", "abc\n{\"level\":\"error\"}"},
		{"spaces", "lb 42"},
		{"html", "<script>"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = middleware.GetRequestID(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			req.Header.Set(middleware.RequestIDHeader, tc.incoming)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.NotEqual(t, tc.incoming, seen)
			_, err := uuid.Parse(seen)
			assert.NoError(t, err, "expected a generated UUID, got %q", seen)
			assert.Equal(t, seen, rec.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestRequestID_KeepsMaxLengthIncoming(t *testing.T) {
	id := strings.Repeat("x", 128)
	var seen string
	h := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetRequestID(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(middleware.RequestIDHeader, id)
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, id, seen)
}

type stubLimiter struct {
	allow bool
	keys  []string
}

func (s *stubLimiter) Allow(key string) bool {
	s.keys = append(s.keys, key)
	return s.allow
}

func TestRateLimit(t *testing.T) {
	t.Run("allowed request passes through", func(t *testing.T) {
		l := &stubLimiter{allow: true}
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "203.0.113.7:51234"
		rec := httptest.NewRecorder()

		middleware.RateLimit(l, nil)(okHandler).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"203.0.113.7"}, l.keys)
	})

	t.Run("rejected request gets JSON 429", func(t *testing.T) {
		var limited int
		l := &stubLimiter{allow: false}
		rec := httptest.NewRecorder()

		middleware.RateLimit(l, func() { limited++ })(okHandler).
			ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"error":"too many requests, slow down"}`, rec.Body.String())
		assert.Equal(t, 1, limited)
	})
}

func TestRequestLogger_HealthRouteLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	h := middleware.RequestID(middleware.RequestLogger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz?fail=1", nil))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, int64(http.StatusServiceUnavailable), entries[1].ContextMap()["status"])
	assert.NotEmpty(t, entries[1].ContextMap()["request_id"])
}
