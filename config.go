// Package warpbench configuration constants
package warpbench

// Thread and block dimensions
const (
	// Logical warp width used by the standard benchmark matrix
	DefaultWarpSize = 32

	// Default threads per block for kernels
	DefaultBlockSize = 256

	// Maximum threads per block (CUDA compatibility)
	MaxThreadsPerBlock = 1024
)

// Memory pool parameters
const (
	// Memory alignment for allocations (cache line)
	MemoryAlignment = 64
)
