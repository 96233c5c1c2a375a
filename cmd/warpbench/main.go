// Copyright ©2025 The GUDA Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command warpbench measures warp-level store throughput across the
// standard matrix of eight configurations: block sizes 128 and 256 crossed
// with the direct, striped, vectorize and transpose store algorithms,
// int32 elements, four items per thread, logical warp size 32.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tebeka/atexit"

	"github.com/LynnColeArt/warpbench"
)

// defaultSize matches the reference workload of 32Mi elements.
const defaultSize = 32 * 1024 * 1024

func main() {
	var (
		size    = flag.Int("size", defaultSize, "number of values")
		trials  = flag.Int("trials", -1, "number of measured iterations per benchmark (-1 selects automatically)")
		minTime = flag.Duration("mintime", warpbench.DefaultMinTime, "target measurement time per benchmark")
		record  = flag.Bool("record", false, "append results to benchmark_logs/")
		perf    = flag.Bool("perf", false, "collect hardware counters per benchmark (Linux only, recorded in the session log)")
		level   = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	logger := newLogger(*level)

	if v, _ := warpbench.Version(); v != "" {
		logger.Debug().Str("version", v).Msg("warpbench")
	}

	dev := warpbench.GetDevice()
	fmt.Printf("Device: %s\n", dev.Name)

	if *record {
		if err := warpbench.InitSessionLog("warp_store"); err != nil {
			logger.Error().Err(err).Msg("failed to initialize session log")
			atexit.Exit(1)
		}
		atexit.Register(warpbench.FlushSessionLog)
		logger.Info().Str("file", warpbench.SessionFile()).Msg("recording session")
	}

	suite := warpbench.NewSuite()
	suite.MinTime = *minTime
	suite.CollectPerf = *perf
	if *trials > 0 {
		suite.ForcedIterations = *trials
	}

	for _, blockSize := range []int{128, 256} {
		for _, alg := range []warpbench.StoreAlgorithm{
			warpbench.StoreDirect,
			warpbench.StoreStriped,
			warpbench.StoreVectorize,
			warpbench.StoreTranspose,
		} {
			cfg := warpbench.StoreBenchmark[int32]{
				BlockSize:      blockSize,
				ItemsPerThread: 4,
				WarpSize:       warpbench.DefaultWarpSize,
				Algorithm:      alg,
			}
			suite.Register(cfg.Name(), func(state *warpbench.State) error {
				return cfg.Run(state, *size)
			})
		}
	}

	logger.Debug().
		Int("size", *size).
		Int("trials", *trials).
		Dur("mintime", *minTime).
		Msg("running benchmarks")

	if err := suite.Run(os.Stdout); err != nil {
		logger.Error().Err(err).Msg("benchmark aborted")
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func newLogger(level string) zerolog.Logger {
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	return zerolog.New(output).With().Timestamp().Logger().Level(logLevel)
}
