//go:build linux

// Package warpbench Linux perf_event_open counter implementation
package warpbench

import (
	"encoding/binary"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linuxPerfMonitor reads hardware counters through perf_event_open.
// Counters are attached to the calling thread with inheritance enabled so
// kernel worker goroutines spawned during the measurement are included.
type linuxPerfMonitor struct {
	fds    []int
	events []uint64
}

var perfEvents = []uint64{
	unix.PERF_COUNT_HW_CPU_CYCLES,
	unix.PERF_COUNT_HW_INSTRUCTIONS,
	unix.PERF_COUNT_HW_CACHE_REFERENCES,
	unix.PERF_COUNT_HW_CACHE_MISSES,
}

func newPerfMonitor() (perfMonitor, error) {
	pm := &linuxPerfMonitor{events: perfEvents}

	for _, config := range pm.events {
		attr := unix.PerfEventAttr{
			Type:   unix.PERF_TYPE_HARDWARE,
			Config: config,
			Bits: unix.PerfBitDisabled |
				unix.PerfBitInherit |
				unix.PerfBitExcludeKernel |
				unix.PerfBitExcludeHv,
		}
		attr.Size = uint32(unsafe.Sizeof(attr))

		fd, err := unix.PerfEventOpen(&attr, 0, -1, -1, unix.PERF_FLAG_FD_CLOEXEC)
		if err != nil {
			pm.Close()
			return nil, NewDeviceError("PerfEventOpen",
				"hardware counters unavailable: "+err.Error())
		}
		pm.fds = append(pm.fds, fd)
	}

	return pm, nil
}

// Start resets and enables all counters.
func (pm *linuxPerfMonitor) Start() error {
	for _, fd := range pm.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_RESET, 0); err != nil {
			return NewDeviceError("PerfCounters.Start", err.Error())
		}
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_ENABLE, 0); err != nil {
			return NewDeviceError("PerfCounters.Start", err.Error())
		}
	}
	return nil
}

// Stop disables the counters and returns their readings.
func (pm *linuxPerfMonitor) Stop() (*PerfCounters, error) {
	pc := &PerfCounters{}

	for i, fd := range pm.fds {
		if err := unix.IoctlSetInt(fd, unix.PERF_EVENT_IOC_DISABLE, 0); err != nil {
			return nil, NewDeviceError("PerfCounters.Stop", err.Error())
		}

		var buf [8]byte
		if _, err := unix.Read(fd, buf[:]); err != nil {
			return nil, NewDeviceError("PerfCounters.Stop", err.Error())
		}
		value := binary.LittleEndian.Uint64(buf[:])

		switch pm.events[i] {
		case unix.PERF_COUNT_HW_CPU_CYCLES:
			pc.Cycles = value
		case unix.PERF_COUNT_HW_INSTRUCTIONS:
			pc.Instructions = value
		case unix.PERF_COUNT_HW_CACHE_REFERENCES:
			pc.CacheRefs = value
		case unix.PERF_COUNT_HW_CACHE_MISSES:
			pc.CacheMisses = value
		}
	}

	pc.derive()
	return pc, nil
}

// Close releases the counter file descriptors.
func (pm *linuxPerfMonitor) Close() error {
	for _, fd := range pm.fds {
		unix.Close(fd)
	}
	pm.fds = nil
	return nil
}
