// Copyright ©2025 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package warpbench measures the throughput of warp-level store primitives
// on a CUDA-compatible runtime emulated on the CPU.
//
// A warp-level store writes per-thread register data back to device memory
// using one of several data-layout strategies (direct, striped, vectorized,
// transpose). The package provides the minimal runtime needed to express
// that measurement in CUDA terms (device memory, grids, blocks, kernel
// launch, synchronize) together with the WarpStore primitive itself and a
// manual-timing benchmark harness that reports per-configuration time,
// bytes/sec and items/sec.
//
// The cmd/warpbench driver registers the standard matrix of eight int32
// configurations (block sizes 128 and 256 crossed with the four store
// algorithms) and prints a tabular report.
package warpbench
