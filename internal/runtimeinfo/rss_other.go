//go:build !linux

package runtimeinfo

import "runtime"

// residentBytes approximates RSS with the memory obtained from the OS by the
// Go runtime. procfs is only available on Linux.
func residentBytes() (uint64, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Sys, nil
}
