package warpbench

import (
	"fmt"
	"math/rand"
	"time"
	"unsafe"
)

// DefaultStoreTrials is how many times the kernel re-issues the store per
// launch. Repeating inside a single launch amortizes the fixed launch
// overhead so the per-iteration samples stay stable.
const DefaultStoreTrials = 100

// StoreBenchmark times the warp store primitive for one fixed
// configuration. Each run allocates its own device buffers, fills the input
// with random values, and launches the store kernel once per measured
// iteration.
type StoreBenchmark[T Element] struct {
	BlockSize      int
	ItemsPerThread int
	WarpSize       int
	Algorithm      StoreAlgorithm

	// Trials is the store repetition count inside one launch. Zero means
	// DefaultStoreTrials.
	Trials int
}

// Name returns the canonical benchmark name, e.g.
// "warp_store<int32, 128, 4, 32, direct>".
func (c StoreBenchmark[T]) Name() string {
	var zero T
	return fmt.Sprintf("warp_store<%T, %d, %d, %d, %s>",
		zero, c.BlockSize, c.ItemsPerThread, c.WarpSize, c.Algorithm)
}

// TileSize returns the number of elements one thread block covers.
func (c StoreBenchmark[T]) TileSize() int {
	return c.BlockSize * c.ItemsPerThread
}

// BufferElems returns the buffer size for a requested element count: the
// smallest whole number of tiles covering n, and never less than one tile,
// so a zero request still yields a valid launch.
func (c StoreBenchmark[T]) BufferElems(n int) int {
	tile := c.TileSize()
	if n <= 0 {
		return tile
	}
	return tile * ((n + tile - 1) / tile)
}

// GridSize returns the number of blocks launched for a requested element
// count.
func (c StoreBenchmark[T]) GridSize(n int) int {
	return c.BufferElems(n) / c.TileSize()
}

func (c StoreBenchmark[T]) trials() int {
	if c.Trials > 0 {
		return c.Trials
	}
	return DefaultStoreTrials
}

func (c StoreBenchmark[T]) validate() error {
	if c.BlockSize <= 0 || c.BlockSize > MaxThreadsPerBlock {
		return NewInvalidArgError("StoreBenchmark", "block size out of range")
	}
	if c.ItemsPerThread <= 0 {
		return NewInvalidArgError("StoreBenchmark", "items per thread must be positive")
	}
	if c.WarpSize <= 0 || c.BlockSize%c.WarpSize != 0 {
		return NewInvalidArgError("StoreBenchmark", "block size must be a multiple of warp size")
	}
	return nil
}

// Run measures the configuration for the harness. n is the requested total
// element count; the actual buffers are tile-rounded. Every device call is
// checked and the first failure aborts the benchmark.
func (c StoreBenchmark[T]) Run(state *State, n int) error {
	if err := c.validate(); err != nil {
		return err
	}

	var zero T
	elemSize := int(unsafe.Sizeof(zero))
	elems := c.BufferElems(n)
	trials := c.trials()

	input := make([]T, elems)
	for i := range input {
		input[i] = T(rand.Float64() * 10)
	}

	dInput, err := Malloc(elems * elemSize)
	if err != nil {
		return err
	}
	defer Free(dInput)

	dOutput, err := Malloc(elems * elemSize)
	if err != nil {
		return err
	}
	defer Free(dOutput)

	if err := Memcpy(dInput, unsafe.Pointer(&input[0]), elems*elemSize, MemcpyHostToDevice); err != nil {
		return err
	}

	grid := Dim3{X: c.GridSize(n), Y: 1, Z: 1}
	block := Dim3{X: c.BlockSize, Y: 1, Z: 1}

	for state.Next() {
		start := time.Now()

		if err := LaunchFunc(c.kernel(dInput, dOutput, elems, trials), grid, block); err != nil {
			return err
		}
		if err := Synchronize(); err != nil {
			return err
		}

		state.SetIterationTime(time.Since(start))
	}

	iters := int64(state.Iterations())
	state.SetBytesProcessed(iters * int64(trials) * int64(elems) * int64(elemSize))
	state.SetItemsProcessed(iters * int64(trials) * int64(elems))

	return nil
}

// kernel builds the store kernel for one launch. Each thread loads its
// itemsPerThread contiguous elements from the input buffer into private
// storage, then invokes the warp store trials times against its warp's
// output tile. The per-warp temp storage is provisioned here, one WarpStore
// per (block, warp), the counterpart of the kernel's shared memory array.
func (c StoreBenchmark[T]) kernel(dInput, dOutput DevicePtr, elems, trials int) KernelFunc {
	in := View[T](dInput, elems)
	out := View[T](dOutput, elems)

	warpsPerBlock := c.BlockSize / c.WarpSize
	warpTile := c.WarpSize * c.ItemsPerThread
	ipt := c.ItemsPerThread

	stores := make([]*WarpStore[T], (elems/c.TileSize())*warpsPerBlock)
	for i := range stores {
		stores[i] = NewWarpStore[T](c.Algorithm, c.WarpSize, ipt)
	}

	return func(tid ThreadID, _ ...interface{}) {
		base := tid.Global() * ipt

		regs := make([]T, ipt)
		copy(regs, in[base:base+ipt])

		warp := tid.BlockIdx.X*warpsPerBlock + tid.Warp(c.WarpSize)
		lane := tid.Lane(c.WarpSize)
		dst := out[warp*warpTile : (warp+1)*warpTile]

		ws := stores[warp]
		for trial := 0; trial < trials; trial++ {
			ws.Store(dst, lane, regs)
		}
	}
}
