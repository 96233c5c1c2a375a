//go:build !linux

// Package warpbench performance counter stubs for non-Linux platforms
package warpbench

func newPerfMonitor() (perfMonitor, error) {
	return nil, NewDeviceError("PerfEventOpen",
		"hardware counters are only supported on Linux")
}
