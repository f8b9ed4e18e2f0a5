package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/alexzimmer/portfolio/internal/domain"
	"github.com/alexzimmer/portfolio/internal/metrics"
)

func TestMetrics_ReportHook(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	hook := m.ReportHook()

	hook(&domain.Report{
		Status: domain.StatusHealthy,
		Checks: map[string]bool{"server": true, "filesystem": true},
	}, time.Millisecond)
	hook(&domain.Report{
		Status: domain.StatusDegraded,
		Checks: map[string]bool{"server": true, "filesystem": false},
	}, time.Millisecond)

	if got := testutil.ToFloat64(m.ReportsTotal.WithLabelValues("healthy")); got != 1 {
		t.Fatalf("expected 1 healthy report, got %v", got)
	}
	if got := testutil.ToFloat64(m.ReportsTotal.WithLabelValues("degraded")); got != 1 {
		t.Fatalf("expected 1 degraded report, got %v", got)
	}
	if got := testutil.ToFloat64(m.CheckUp.WithLabelValues("filesystem")); got != 0 {
		t.Fatalf("expected filesystem gauge 0 after failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.CheckUp.WithLabelValues("server")); got != 1 {
		t.Fatalf("expected server gauge 1, got %v", got)
	}
}

func TestMetrics_UnhealthyReportHasNoChecks(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	m.ReportHook()(&domain.Report{Status: domain.StatusUnhealthy}, time.Millisecond)

	if got := testutil.ToFloat64(m.ReportsTotal.WithLabelValues("unhealthy")); got != 1 {
		t.Fatalf("expected 1 unhealthy report, got %v", got)
	}
	if got := testutil.CollectAndCount(m.CheckUp); got != 0 {
		t.Fatalf("expected no check gauges, got %d", got)
	}
}

func TestMetrics_OnRateLimited(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	inc := m.OnRateLimited()
	inc()
	inc()

	if got := testutil.ToFloat64(m.RateLimited); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
}

func TestMetrics_UnhealthyClearsStaleCheckGauges(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	hook := m.ReportHook()

	hook(&domain.Report{
		Status: domain.StatusHealthy,
		Checks: map[string]bool{"server": true, "filesystem": true},
	}, time.Millisecond)
	if got := testutil.CollectAndCount(m.CheckUp); got != 2 {
		t.Fatalf("expected 2 check gauges, got %d", got)
	}

	hook(&domain.Report{Status: domain.StatusUnhealthy}, time.Millisecond)
	if got := testutil.CollectAndCount(m.CheckUp); got != 0 {
		t.Fatalf("expected check gauges cleared after unhealthy report, got %d", got)
	}

	hook(&domain.Report{
		Status: domain.StatusDegraded,
		Checks: map[string]bool{"server": true, "filesystem": false},
	}, time.Millisecond)
	if got := testutil.ToFloat64(m.CheckUp.WithLabelValues("filesystem")); got != 0 {
		t.Fatalf("expected filesystem gauge 0, got %v", got)
	}
}
