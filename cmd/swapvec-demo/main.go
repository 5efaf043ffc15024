// Command swapvec-demo pushes a large integer sequence through a
// swapped vector and replays it, reporting how much ended up on disk.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	swapvec "github.com/julianbuettner/swapvec"
	swapcfg "github.com/julianbuettner/swapvec/config"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to a YAML configuration file")
		count      = flag.Int("count", 4*1024*1024, "number of elements to push")
		batchSize  = flag.Int("batch-size", 8*1024, "elements per persisted batch")
		swapAfter  = flag.Int("swap-after", 32*1024, "elements after which swapping starts")
		algorithm  = flag.String("compression", "none", "compression algorithm: none, lz4, snappy, zstd, deflate")
		level      = flag.String("level", "default", "compression level: fast, default, slow")
		verbose    = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	logger, err := newLogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := buildConfig(*configPath, *swapAfter, *batchSize, *algorithm, *level)
	if err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}
	cfg.Logger = logger

	if err := run(logger, cfg, *count); err != nil {
		logger.Fatal("demo failed", zap.Error(err))
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func buildConfig(path string, swapAfter, batchSize int, algorithm, level string) (swapvec.Config, error) {
	if path != "" {
		return swapcfg.Load(path)
	}
	fc := swapcfg.Default()
	fc.SwapAfter = swapAfter
	fc.BatchSize = batchSize
	fc.Compression.Algorithm = algorithm
	fc.Compression.Level = level
	return fc.Build()
}

func run(logger *zap.Logger, cfg swapvec.Config, count int) error {
	v := swapvec.New[uint64](cfg)

	for i := 0; i < count; i++ {
		if err := v.Push(uint64(i)); err != nil {
			return fmt.Errorf("pushing element %d: %w", i, err)
		}
	}

	size, _ := v.FileSize()
	logger.Info("sequence written",
		zap.Int("elements", count),
		zap.Bool("swapped", v.WrittenToFile()),
		zap.Int("batches_written", v.BatchesWritten()),
		zap.Int64("file_size_bytes", size))

	it := v.Iter()
	defer it.Close()

	var read uint64
	for {
		element, err := it.Next()
		if errors.Is(err, swapvec.ErrIteratorExhausted) {
			break
		}
		if err != nil {
			return fmt.Errorf("replaying after %d elements: %w", read, err)
		}
		if element != read {
			return fmt.Errorf("order violated: expected %d, got %d", read, element)
		}
		read++
	}

	logger.Info("sequence replayed in order", zap.Uint64("elements", read))
	return nil
}
