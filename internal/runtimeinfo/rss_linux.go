//go:build linux

package runtimeinfo

import (
	"fmt"

	"github.com/prometheus/procfs"
)

// residentBytes reads RSS for the current process from /proc/self/stat.
func residentBytes() (uint64, error) {
	self, err := procfs.Self()
	if err != nil {
		return 0, fmt.Errorf("open /proc/self: %w", err)
	}
	stat, err := self.Stat()
	if err != nil {
		return 0, fmt.Errorf("read process stat: %w", err)
	}
	return uint64(stat.ResidentMemory()), nil
}
