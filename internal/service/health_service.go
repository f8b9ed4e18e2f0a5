package service

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/alexzimmer/portfolio/internal/domain"
	"github.com/alexzimmer/portfolio/internal/runtimeinfo"
)

const tracerName = "github.com/alexzimmer/portfolio/internal/service"

// CheckFunc is a single named liveness check. It reports a failure by
// returning false; it must not retry, the probe polls again on its own cadence.
type CheckFunc func(ctx context.Context) bool

// ReportHook observes every finished report. Used to feed metrics so this
// package does not import Prometheus.
type ReportHook func(r *domain.Report, took time.Duration)

type namedCheck struct {
	name string
	fn   CheckFunc
}

// HealthService builds health reports. Checks are registered at startup and
// only read while serving, so concurrent Produce calls share no mutable state.
type HealthService struct {
	metrics runtimeinfo.Provider
	checks  []namedCheck
	logger  *zap.Logger
	tracer  trace.Tracer
	now     func() time.Time
	hook    ReportHook
}

type Option func(*HealthService)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *HealthService) { s.now = now }
}

func WithReportHook(hook ReportHook) Option {
	return func(s *HealthService) { s.hook = hook }
}

func WithTracer(t trace.Tracer) Option {
	return func(s *HealthService) { s.tracer = t }
}

func NewHealthService(metrics runtimeinfo.Provider, logger *zap.Logger, opts ...Option) *HealthService {
	s := &HealthService{
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register adds a check, or replaces the one already registered under name.
// Not safe to call once the service is handling requests.
func (s *HealthService) Register(name string, fn CheckFunc) {
	for i := range s.checks {
		if s.checks[i].name == name {
			s.checks[i].fn = fn
			return
		}
	}
	s.checks = append(s.checks, namedCheck{name: name, fn: fn})
}

// CheckNames lists registered checks in evaluation order.
func (s *HealthService) CheckNames() []string {
	names := make([]string, len(s.checks))
	for i, c := range s.checks {
		names[i] = c.name
	}
	return names
}

// Produce runs every check once and returns the report with the HTTP status
// code for it. It never returns an error: a failure while assembling the
// report is folded into an unhealthy report.
func (s *HealthService) Produce(ctx context.Context, meta domain.Metadata) (*domain.Report, int) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "health.produce")
	defer span.End()

	report, err := s.build(ctx, meta)
	if err != nil {
		s.logger.Error("health report construction failed",
			zap.Error(err),
			zap.String("request_id", meta.RequestID),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		report = &domain.Report{
			Status:    domain.StatusUnhealthy,
			Timestamp: s.now().UTC(),
			Metadata:  meta,
			Message:   domain.MessageUnhealthy,
			Err:       err,
		}
	} else if report.Status == domain.StatusDegraded {
		s.logger.Warn("health checks failing",
			zap.Strings("failed_checks", report.FailedChecks()),
			zap.String("request_id", meta.RequestID),
		)
	}

	span.SetAttributes(attribute.String("health.status", string(report.Status)))

	if s.hook != nil {
		s.hook(report, time.Since(start))
	}

	return report, report.Status.HTTPStatus()
}

func (s *HealthService) build(ctx context.Context, meta domain.Metadata) (report *domain.Report, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			report = nil
			err = fmt.Errorf("%w: %v", domain.ErrReportPanicked, rec)
		}
	}()

	mem, err := s.metrics.Memory()
	if err != nil {
		return nil, fmt.Errorf("read memory: %w", err)
	}

	checks := make(map[string]bool, len(s.checks))
	healthy := true
	for _, c := range s.checks {
		ok := c.fn(ctx)
		checks[c.name] = ok
		healthy = healthy && ok
	}

	report = &domain.Report{
		Status:        domain.StatusHealthy,
		Timestamp:     s.now().UTC(),
		UptimeSeconds: s.metrics.Uptime().Seconds(),
		Memory:        mem,
		Checks:        checks,
		Metadata:      meta,
		Message:       domain.MessageHealthy,
	}
	if !healthy {
		report.Status = domain.StatusDegraded
		report.Message = domain.MessageDegraded
	}
	return report, nil
}
