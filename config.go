package swapvec

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/julianbuettner/swapvec/compression"
)

// Config controls when and how a container swaps to disk. It is fixed
// at construction and shared unchanged with the replay iterator.
type Config struct {
	// SwapAfter is the element count after which the container creates
	// its temporary file and starts swapping. It only gates the first
	// spill; once the file exists, a batch is written every BatchSize
	// insertions regardless of SwapAfter. Set it to BatchSize or
	// smaller to start swapping with the first full batch.
	//
	// If your elements have a known size in bytes, multiply to estimate
	// the memory ceiling this buys you.
	SwapAfter int

	// BatchSize is the number of elements serialized and persisted
	// together as one unit. Every batch keeps one hash and one byte
	// count in memory, and every batch write is at least one syscall.
	BatchSize int

	// Compression is applied to each serialized batch before it reaches
	// the backing store. nil means no compression. Built-ins live in
	// the compression package; any value implementing
	// compression.Compressor may be supplied instead.
	Compression compression.Compressor

	// Logger receives debug events for spills, finalization and resets.
	// nil disables logging.
	Logger *zap.Logger
}

// DefaultConfig returns the default thresholds: swap after 32Mi
// elements, 32Ki elements per batch, no compression.
func DefaultConfig() Config {
	return Config{
		SwapAfter: 32 * 1024 * 1024,
		BatchSize: 32 * 1024,
	}
}

// Validate reports configurations the container cannot run with.
func (c Config) Validate() error {
	if c.BatchSize < 1 {
		return fmt.Errorf("swapvec: batch size must be at least 1, got %d", c.BatchSize)
	}
	if c.SwapAfter < 0 {
		return fmt.Errorf("swapvec: swap after must not be negative, got %d", c.SwapAfter)
	}
	return nil
}

// compressor returns the configured compression, substituting the
// identity transform when unset.
func (c Config) compressor() compression.Compressor {
	if c.Compression == nil {
		return compression.None()
	}
	return c.Compression
}

// logger returns the configured logger, substituting a nop logger when
// unset.
func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
