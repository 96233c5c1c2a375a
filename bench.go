package warpbench

import (
	"fmt"
	"io"
	"time"
)

// Manual-timing benchmark harness. Each registered benchmark reports its
// own per-iteration wall-clock samples through State.SetIterationTime, so
// the harness never times setup work such as buffer allocation or the
// host-to-device copy. Iteration counts are either forced from the command
// line or grown geometrically until the accumulated sample time reaches
// MinTime.

// DefaultMinTime is the accumulated sample time the harness aims for when
// selecting iteration counts automatically.
const DefaultMinTime = 500 * time.Millisecond

// State carries one measurement run of a benchmark. The benchmark body
// loops with Next, reports each sample with SetIterationTime, and records
// its processed totals before returning.
type State struct {
	maxIterations int
	iter          int

	manualTime     time.Duration
	bytesProcessed int64
	itemsProcessed int64
}

// Next reports whether another iteration should run.
func (s *State) Next() bool {
	if s.iter >= s.maxIterations {
		return false
	}
	s.iter++
	return true
}

// Iterations returns the number of iterations started so far.
func (s *State) Iterations() int {
	return s.iter
}

// SetIterationTime adds one manually measured sample.
func (s *State) SetIterationTime(d time.Duration) {
	s.manualTime += d
}

// SetBytesProcessed records the total bytes moved across all iterations.
func (s *State) SetBytesProcessed(n int64) {
	s.bytesProcessed = n
}

// SetItemsProcessed records the total items moved across all iterations.
func (s *State) SetItemsProcessed(n int64) {
	s.itemsProcessed = n
}

// Result is the reported outcome of one benchmark.
type Result struct {
	Name           string        `json:"name"`
	Iterations     int           `json:"iterations"`
	Total          time.Duration `json:"total_ns"`
	MsPerOp        float64       `json:"ms_per_op"`
	BytesPerSec    float64       `json:"bytes_per_sec,omitempty"`
	ItemsPerSec    float64       `json:"items_per_sec,omitempty"`
	BytesProcessed int64         `json:"bytes_processed,omitempty"`
	ItemsProcessed int64         `json:"items_processed,omitempty"`

	// Perf holds hardware counter readings for the reported measurement,
	// nil unless collection was enabled and supported.
	Perf *PerfCounters `json:"perf,omitempty"`
}

// Benchmark is a registered benchmark case.
type Benchmark struct {
	Name string
	fn   func(*State) error
}

// Suite holds registered benchmarks and runs them in registration order.
type Suite struct {
	benchmarks []*Benchmark

	// MinTime is the target accumulated sample time for automatic
	// iteration selection. Zero means DefaultMinTime.
	MinTime time.Duration

	// ForcedIterations, when positive, runs every benchmark for exactly
	// that many iterations instead of selecting automatically.
	ForcedIterations int

	// CollectPerf enables hardware counter collection around each
	// measurement. Platforms without counter support silently report
	// results without them.
	CollectPerf bool
}

// NewSuite creates an empty suite.
func NewSuite() *Suite {
	return &Suite{}
}

// Register adds a benchmark to the suite.
func (s *Suite) Register(name string, fn func(*State) error) *Benchmark {
	b := &Benchmark{Name: name, fn: fn}
	s.benchmarks = append(s.benchmarks, b)
	return b
}

// Run executes every registered benchmark and writes the tabular report to
// w. The first benchmark error aborts the run.
func (s *Suite) Run(w io.Writer) error {
	fmt.Fprintf(w, "%-44s %12s %12s %12s %14s\n",
		"Benchmark", "Time(ms)", "Iterations", "GB/s", "items/s")

	for _, b := range s.benchmarks {
		res, err := s.runOne(b)
		if err != nil {
			logResult(Result{Name: b.Name}, err)
			return fmt.Errorf("benchmark %s: %w", b.Name, err)
		}
		logResult(res, nil)

		fmt.Fprintf(w, "%-44s %12.3f %12d %12.2f %14s\n",
			res.Name, res.MsPerOp, res.Iterations,
			res.BytesPerSec/1e9, formatItemsPerSec(res.ItemsPerSec))
	}
	return nil
}

// runOne measures one benchmark, growing the iteration count until the
// accumulated manual time reaches MinTime unless a count is forced.
func (s *Suite) runOne(b *Benchmark) (Result, error) {
	minTime := s.MinTime
	if minTime <= 0 {
		minTime = DefaultMinTime
	}

	iters := 1
	if s.ForcedIterations > 0 {
		iters = s.ForcedIterations
	}

	var mon perfMonitor
	if s.CollectPerf {
		mon, _ = newPerfMonitor()
		if mon != nil {
			defer mon.Close()
		}
	}

	for {
		state := &State{maxIterations: iters}

		if mon != nil {
			if err := mon.Start(); err != nil {
				mon.Close()
				mon = nil
			}
		}
		if err := b.fn(state); err != nil {
			return Result{}, err
		}
		var perf *PerfCounters
		if mon != nil {
			if pc, err := mon.Stop(); err == nil {
				perf = pc
			}
		}

		if s.ForcedIterations > 0 || state.manualTime >= minTime {
			res := makeResult(b.Name, state)
			res.Perf = perf
			return res, nil
		}
		iters = nextIterationCount(iters, state.manualTime, minTime)
	}
}

// nextIterationCount predicts how many iterations are needed to fill
// minTime, overshooting slightly and capping the growth per round.
func nextIterationCount(done int, elapsed, minTime time.Duration) int {
	if elapsed <= 0 {
		return done * 10
	}
	next := int(1.4 * float64(done) * float64(minTime) / float64(elapsed))
	if next < done+1 {
		next = done + 1
	}
	if next > done*100 {
		next = done * 100
	}
	return next
}

func makeResult(name string, state *State) Result {
	res := Result{
		Name:           name,
		Iterations:     state.iter,
		Total:          state.manualTime,
		BytesProcessed: state.bytesProcessed,
		ItemsProcessed: state.itemsProcessed,
	}
	if state.iter > 0 {
		res.MsPerOp = float64(state.manualTime.Nanoseconds()) / float64(state.iter) / 1e6
	}
	if secs := state.manualTime.Seconds(); secs > 0 {
		res.BytesPerSec = float64(state.bytesProcessed) / secs
		res.ItemsPerSec = float64(state.itemsProcessed) / secs
	}
	return res
}

func formatItemsPerSec(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fG/s", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM/s", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2fk/s", v/1e3)
	default:
		return fmt.Sprintf("%.2f/s", v)
	}
}
