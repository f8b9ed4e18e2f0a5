package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers render these as JSON bodies; nothing here escapes as a bare 500.
var (
	ErrMetricsUnavailable = errors.New("process metrics unavailable")
	ErrReportPanicked     = errors.New("health report construction panicked")
	ErrRateLimited        = errors.New("too many requests, slow down")
)
