package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alexzimmer/portfolio/internal/api/middleware"
	"github.com/alexzimmer/portfolio/internal/config"
	"github.com/alexzimmer/portfolio/internal/domain"
)

// timestampLayout matches JavaScript's Date.toISOString, which existing
// uptime monitors already parse.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Reporter produces one health report per call.
type Reporter interface {
	Produce(ctx context.Context, meta domain.Metadata) (*domain.Report, int)
}

// HealthHandler serves the health probe endpoint.
type HealthHandler struct {
	reporter Reporter
	site     config.SiteConfig
	timezone string
	logger   *zap.Logger
}

func NewHealthHandler(reporter Reporter, site config.SiteConfig, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		reporter: reporter,
		site:     site,
		timezone: localTimezone(),
		logger:   logger,
	}
}

type memoryResponse struct {
	Used  uint64 `json:"used"`
	Total uint64 `json:"total"`
	RSS   uint64 `json:"rss"`
}

type healthResponse struct {
	Status      domain.Status   `json:"status"`
	Timestamp   string          `json:"timestamp"`
	Uptime      float64         `json:"uptime"`
	Environment string          `json:"environment"`
	Version     string          `json:"version"`
	Memory      memoryResponse  `json:"memory"`
	RequestID   string          `json:"requestId"`
	UserAgent   string          `json:"userAgent"`
	Region      string          `json:"region"`
	Timezone    string          `json:"timezone"`
	Checks      map[string]bool `json:"checks"`
	Message     string          `json:"message"`
}

type failureResponse struct {
	Status    domain.Status `json:"status"`
	Timestamp string        `json:"timestamp"`
	Error     string        `json:"error"`
	Message   string        `json:"message"`
}

// Health handles GET /api/healthz
//
// @Summary  Liveness and readiness probe
// @Tags     system
// @Produce  json
// @Success  200  {object}  healthResponse
// @Failure  503  {object}  healthResponse
// @Router   /api/healthz [get]
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	noStore(w)

	defer func() {
		// Last line of defence: the probe must always get JSON.
		if rec := recover(); rec != nil {
			h.logger.Error("health handler panicked", zap.Any("panic", rec))
			respondJSON(w, http.StatusServiceUnavailable, failureResponse{
				Status:    domain.StatusUnhealthy,
				Timestamp: time.Now().UTC().Format(timestampLayout),
				Error:     fmt.Sprint(rec),
				Message:   domain.MessageUnhealthy,
			})
		}
	}()

	report, code := h.reporter.Produce(r.Context(), h.metadata(r))

	if report.Status == domain.StatusUnhealthy {
		errMsg := "unknown error"
		if report.Err != nil {
			errMsg = report.Err.Error()
		}
		respondJSON(w, code, failureResponse{
			Status:    report.Status,
			Timestamp: report.Timestamp.Format(timestampLayout),
			Error:     errMsg,
			Message:   report.Message,
		})
		return
	}

	respondJSON(w, code, healthResponse{
		Status:      report.Status,
		Timestamp:   report.Timestamp.Format(timestampLayout),
		Uptime:      report.UptimeSeconds,
		Environment: report.Metadata.Environment,
		Version:     report.Metadata.Version,
		Memory: memoryResponse{
			Used:  report.Memory.UsedMB,
			Total: report.Memory.TotalMB,
			RSS:   report.Memory.ResidentMB,
		},
		RequestID: report.Metadata.RequestID,
		UserAgent: report.Metadata.UserAgent,
		Region:    report.Metadata.Region,
		Timezone:  report.Metadata.Timezone,
		Checks:    report.Checks,
		Message:   report.Message,
	})
}

func (h *HealthHandler) metadata(r *http.Request) domain.Metadata {
	requestID := middleware.GetRequestID(r.Context())
	if requestID == "" {
		requestID = r.Header.Get(middleware.RequestIDHeader)
	}
	if requestID == "" {
		requestID = "unknown"
	}

	return domain.Metadata{
		Environment: h.site.Environment,
		Version:     h.site.Version,
		RequestID:   requestID,
		UserAgent:   classifyUserAgent(r.UserAgent()),
		Region:      h.site.Region,
		Timezone:    h.timezone,
	}
}

// classifyUserAgent buckets callers without echoing arbitrary header content.
func classifyUserAgent(ua string) string {
	if strings.Contains(ua, "Docker") {
		return "docker-healthcheck"
	}
	return "external-monitor"
}

// localTimezone prefers an IANA name (TZ=Europe/Berlin) and falls back to the
// zone abbreviation when the runtime only knows it as "Local".
func localTimezone() string {
	if name := time.Local.String(); name != "Local" {
		return name
	}
	name, _ := time.Now().Zone()
	return name
}
