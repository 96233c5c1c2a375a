// Package warpbench hardware performance counter integration
package warpbench

// PerfCounters holds hardware counter readings collected around one
// benchmark measurement. All fields are zero when collection is
// unsupported on the platform.
type PerfCounters struct {
	Cycles       uint64 `json:"cycles,omitempty"`
	Instructions uint64 `json:"instructions,omitempty"`
	CacheRefs    uint64 `json:"cache_refs,omitempty"`
	CacheMisses  uint64 `json:"cache_misses,omitempty"`

	// Derived metrics
	IPC           float64 `json:"ipc,omitempty"`
	CacheMissRate float64 `json:"cache_miss_rate,omitempty"`
}

// derive fills the metrics computed from raw counts.
func (pc *PerfCounters) derive() {
	if pc.Cycles > 0 {
		pc.IPC = float64(pc.Instructions) / float64(pc.Cycles)
	}
	if pc.CacheRefs > 0 {
		pc.CacheMissRate = float64(pc.CacheMisses) / float64(pc.CacheRefs)
	}
}

// perfMonitor collects hardware counters for the calling process. The
// platform-specific constructor returns an error where the kernel
// interface is unavailable; callers treat that as "no counters", not as a
// benchmark failure.
type perfMonitor interface {
	Start() error
	Stop() (*PerfCounters, error)
	Close() error
}
