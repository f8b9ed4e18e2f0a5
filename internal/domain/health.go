package domain

import (
	"net/http"
	"time"
)

// Status is the overall verdict of a health report.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusHealthy, StatusDegraded, StatusUnhealthy:
		return true
	}
	return false
}

// HTTPStatus maps a report status to the code returned to health probes.
// Anything other than healthy tells the load balancer to stop routing here.
func (s Status) HTTPStatus() int {
	if s == StatusHealthy {
		return http.StatusOK
	}
	return http.StatusServiceUnavailable
}

// Summary messages attached to every report.
const (
	MessageHealthy   = "All systems operational"
	MessageDegraded  = "Some components are unhealthy"
	MessageUnhealthy = "Service is experiencing critical errors"
)

// Memory is a point-in-time snapshot of process memory, in whole megabytes.
type Memory struct {
	UsedMB     uint64 `json:"used"`
	TotalMB    uint64 `json:"total"`
	ResidentMB uint64 `json:"rss"`
}

// Metadata carries contextual fields echoed back to the caller.
// None of them influence the verdict.
type Metadata struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
	RequestID   string `json:"requestId"`
	UserAgent   string `json:"userAgent"`
	Region      string `json:"region"`
	Timezone    string `json:"timezone"`
}

// Report is built fresh for every health request and discarded afterwards.
type Report struct {
	Status        Status
	Timestamp     time.Time
	UptimeSeconds float64
	Memory        Memory
	Checks        map[string]bool
	Metadata      Metadata
	Message       string

	// Err is set only when building the report itself failed.
	Err error
}

// FailedChecks returns the names of checks that reported false.
func (r *Report) FailedChecks() []string {
	var failed []string
	for name, ok := range r.Checks {
		if !ok {
			failed = append(failed, name)
		}
	}
	return failed
}
