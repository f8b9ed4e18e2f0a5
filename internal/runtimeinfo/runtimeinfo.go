// Package runtimeinfo exposes process-level counters (uptime, memory) behind
// an interface so the health service can be tested with fixed values.
package runtimeinfo

import (
	"fmt"
	"runtime"
	"time"

	"github.com/alexzimmer/portfolio/internal/domain"
)

const bytesPerMB = 1024 * 1024

// processStart is captured when the binary is loaded. time.Since uses the
// monotonic clock reading embedded in it, so uptime never goes backwards.
var processStart = time.Now()

// Provider is the source of process metrics read on every health report.
type Provider interface {
	Uptime() time.Duration
	Memory() (domain.Memory, error)
}

// Process reads metrics from the Go runtime and the operating system.
type Process struct {
	start time.Time
	rss   func() (uint64, error)
}

func NewProcess() *Process {
	return &Process{start: processStart, rss: residentBytes}
}

func (p *Process) Uptime() time.Duration {
	return time.Since(p.start)
}

// Memory reports heap in use, heap reserved from the OS, and resident set size.
func (p *Process) Memory() (domain.Memory, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	rss, err := p.rss()
	if err != nil {
		return domain.Memory{}, fmt.Errorf("%w: resident memory: %v", domain.ErrMetricsUnavailable, err)
	}

	return domain.Memory{
		UsedMB:     toMB(ms.HeapAlloc),
		TotalMB:    toMB(ms.HeapSys),
		ResidentMB: toMB(rss),
	}, nil
}

// toMB rounds to the nearest megabyte.
func toMB(b uint64) uint64 {
	return (b + bytesPerMB/2) / bytesPerMB
}

var _ Provider = (*Process)(nil)
