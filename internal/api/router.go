package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/alexzimmer/portfolio/internal/api/handler"
	apimw "github.com/alexzimmer/portfolio/internal/api/middleware"
)

// Deps is everything the HTTP surface needs.
type Deps struct {
	Health *handler.HealthHandler
	// Limiter may be nil, which disables rate limiting.
	Limiter   apimw.Limiter
	OnLimited func()
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP from the load balancer
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(chimw.GetHead)              // HEAD requests from uptime monitors reach the GET routes
	r.Use(apimw.RequestID)            // X-Request-ID inject / echo
	r.Use(apimw.RequestLogger(d.Logger))
	r.Use(apimw.SecurityHeaders)

	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// --- routes ---
	// Health routes are never throttled: every load balancer check arrives
	// from the same address and must always see 200 or 503.
	r.Get("/api/healthz", d.Health.Health)
	r.Get("/healthz", d.Health.Health)

	r.Group(func(r chi.Router) {
		if d.Limiter != nil {
			r.Use(apimw.RateLimit(d.Limiter, d.OnLimited))
		}

		// Raw Prometheus scrape endpoint
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	})

	return otelhttp.NewHandler(r, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
