package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/alexzimmer/portfolio/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	ReportsTotal   *prometheus.CounterVec
	CheckUp        *prometheus.GaugeVec
	ReportDuration prometheus.Histogram
	RateLimited    prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer and
// returns the populated Metrics struct.
// A custom registry keeps tests isolated from the default global one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "health_reports_total",
			Help: "Total number of health reports produced, by overall status.",
		}, []string{"status"}),

		CheckUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "health_check_up",
			Help: "Result of the most recent evaluation of each health check (1 = pass).",
		}, []string{"check"}),

		ReportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "health_report_duration_seconds",
			Help:    "Time spent building a health report.",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),

		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "http_requests_rate_limited_total",
			Help: "Requests rejected by the per-client rate limiter.",
		}),
	}

	reg.MustRegister(
		m.ReportsTotal,
		m.CheckUp,
		m.ReportDuration,
		m.RateLimited,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ReportHook returns the observer expected by service.WithReportHook.
// Keeps the prometheus calls here so the service stays import-free.
func (m *Metrics) ReportHook() func(*domain.Report, time.Duration) {
	return func(r *domain.Report, took time.Duration) {
		m.ReportsTotal.WithLabelValues(string(r.Status)).Inc()
		m.ReportDuration.Observe(took.Seconds())
		if r.Status == domain.StatusUnhealthy {
			// No check ran; stale 1s would hide the outage on dashboards.
			m.CheckUp.Reset()
			return
		}
		for name, ok := range r.Checks {
			v := 0.0
			if ok {
				v = 1
			}
			m.CheckUp.WithLabelValues(name).Set(v)
		}
	}
}

// OnRateLimited is handed to the rate limiting middleware.
func (m *Metrics) OnRateLimited() func() {
	return m.RateLimited.Inc
}
