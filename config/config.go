// Package config loads swapvec container configuration from YAML files
// and environment variables.
//
// The on-disk layout recognizes the three container options:
//
//	swap_after: 16777216
//	batch_size: 32768
//	compression:
//	  algorithm: zstd
//	  level: fast
//
// Environment variables override file values: SWAPVEC_SWAP_AFTER,
// SWAPVEC_BATCH_SIZE, SWAPVEC_COMPRESSION, SWAPVEC_COMPRESSION_LEVEL.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	swapvec "github.com/julianbuettner/swapvec"
	"github.com/julianbuettner/swapvec/compression"
)

// FileConfig mirrors the YAML layout of a swapvec configuration file.
type FileConfig struct {
	SwapAfter   int               `yaml:"swap_after"`
	BatchSize   int               `yaml:"batch_size"`
	Compression CompressionConfig `yaml:"compression"`
}

// CompressionConfig selects a built-in compression algorithm by name.
type CompressionConfig struct {
	// Algorithm is one of "none", "lz4", "snappy", "zstd", "deflate".
	// Empty means none.
	Algorithm string `yaml:"algorithm"`
	// Level is one of "fast", "default", "slow". Empty means default.
	// Only zstd and deflate honor it.
	Level string `yaml:"level"`
}

// Default returns the file-level view of the container defaults.
func Default() FileConfig {
	cfg := swapvec.DefaultConfig()
	return FileConfig{
		SwapAfter: cfg.SwapAfter,
		BatchSize: cfg.BatchSize,
		Compression: CompressionConfig{
			Algorithm: "none",
			Level:     "default",
		},
	}
}

// Load reads a YAML configuration file, applies environment overrides
// and builds a validated container configuration.
func Load(path string) (swapvec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return swapvec.Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse builds a validated container configuration from YAML bytes,
// applying defaults for absent fields and environment overrides on top.
func Parse(data []byte) (swapvec.Config, error) {
	fc := Default()
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return swapvec.Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := fc.applyEnvOverrides(); err != nil {
		return swapvec.Config{}, err
	}
	return fc.Build()
}

// Build converts the file-level view into a container configuration.
func (fc FileConfig) Build() (swapvec.Config, error) {
	level, err := parseLevel(fc.Compression.Level)
	if err != nil {
		return swapvec.Config{}, err
	}

	var comp compression.Compressor
	switch fc.Compression.Algorithm {
	case "", "none":
		comp = nil
	case "lz4":
		comp = compression.LZ4()
	case "snappy":
		comp = compression.Snappy()
	case "zstd":
		comp = compression.Zstd(level)
	case "deflate":
		comp = compression.Deflate(level)
	default:
		return swapvec.Config{}, fmt.Errorf("unknown compression algorithm %q", fc.Compression.Algorithm)
	}

	cfg := swapvec.Config{
		SwapAfter:   fc.SwapAfter,
		BatchSize:   fc.BatchSize,
		Compression: comp,
	}
	if err := cfg.Validate(); err != nil {
		return swapvec.Config{}, err
	}
	return cfg, nil
}

func (fc *FileConfig) applyEnvOverrides() error {
	if v := os.Getenv("SWAPVEC_SWAP_AFTER"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SWAPVEC_SWAP_AFTER %q: %w", v, err)
		}
		fc.SwapAfter = n
	}
	if v := os.Getenv("SWAPVEC_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid SWAPVEC_BATCH_SIZE %q: %w", v, err)
		}
		fc.BatchSize = n
	}
	if v := os.Getenv("SWAPVEC_COMPRESSION"); v != "" {
		fc.Compression.Algorithm = v
	}
	if v := os.Getenv("SWAPVEC_COMPRESSION_LEVEL"); v != "" {
		fc.Compression.Level = v
	}
	return nil
}

func parseLevel(s string) (compression.Level, error) {
	switch s {
	case "", "default":
		return compression.Default, nil
	case "fast":
		return compression.Fast, nil
	case "slow":
		return compression.Slow, nil
	default:
		return compression.Default, fmt.Errorf("unknown compression level %q", s)
	}
}
