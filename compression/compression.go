// Package compression provides the reversible transforms applied to
// serialized batches before they reach the backing store.
//
// Every algorithm satisfies the same contract: for any input b,
// Decompress(Compress(b)) must reproduce b exactly. Compression is
// allowed to fail to shrink the data, but never to fail the round trip.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// ErrDecompression reports that a batch could not be decompressed.
// It is distinct from a checksum mismatch: the bytes read back from the
// store were intact, but the configured algorithm rejected them.
var ErrDecompression = errors.New("decompression failed")

// Compressor is the two-operation capability every algorithm implements.
// Caller-supplied algorithms plug in through this same interface; the
// rest of the system never knows which variant is active.
//
// Name identifies the configured variant for debugging and configuration
// output. Compressor values are copied by assignment when a container's
// configuration is handed to its iterator, so implementations must be
// safe to use through such a copy (stateless implementations trivially
// are).
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
	Name() string
}

// Level tunes the speed/ratio trade-off of algorithms that support one.
// The zero value is Default.
type Level int

const (
	// Default is a good ratio of compression ratio to CPU time.
	Default Level = iota
	// Fast accepts worse compression for speed.
	Fast
	// Slow is slower than default with higher compression. Useful for
	// large amounts of easily compressible data.
	Slow
)

// String returns the lower-case name of the level.
func (l Level) String() string {
	switch l {
	case Fast:
		return "fast"
	case Slow:
		return "slow"
	default:
		return "default"
	}
}

// None returns the identity transform.
func None() Compressor { return noneCompressor{} }

// LZ4 returns an LZ4 frame-format compressor.
func LZ4() Compressor { return lz4Compressor{} }

// Snappy returns a Snappy block-format compressor.
func Snappy() Compressor { return snappyCompressor{} }

// Zstd returns a Zstandard compressor at the given level.
func Zstd(level Level) Compressor { return &zstdCompressor{level: level} }

// Deflate returns a DEFLATE compressor at the given level.
func Deflate(level Level) Compressor { return deflateCompressor{level: level} }

type noneCompressor struct{}

func (noneCompressor) Name() string { return "none" }

func (noneCompressor) Compress(data []byte) ([]byte, error) { return data, nil }

func (noneCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

type lz4Compressor struct{}

func (lz4Compressor) Name() string { return "lz4" }

func (lz4Compressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := lz4.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (lz4Compressor) Decompress(data []byte) ([]byte, error) {
	out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: lz4: %v", ErrDecompression, err)
	}
	return out, nil
}

type snappyCompressor struct{}

func (snappyCompressor) Name() string { return "snappy" }

func (snappyCompressor) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (snappyCompressor) Decompress(data []byte) ([]byte, error) {
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("%w: snappy: %v", ErrDecompression, err)
	}
	return out, nil
}

type zstdCompressor struct {
	level   Level
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func (z *zstdCompressor) Name() string {
	return fmt.Sprintf("zstd(%s)", z.level)
}

func (z *zstdCompressor) Compress(data []byte) ([]byte, error) {
	if z.encoder == nil {
		var err error
		z.encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(z.encoderLevel()))
		if err != nil {
			return nil, err
		}
	}
	return z.encoder.EncodeAll(data, nil), nil
}

func (z *zstdCompressor) Decompress(data []byte) ([]byte, error) {
	if z.decoder == nil {
		var err error
		z.decoder, err = zstd.NewReader(nil)
		if err != nil {
			return nil, err
		}
	}
	out, err := z.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: zstd: %v", ErrDecompression, err)
	}
	return out, nil
}

func (z *zstdCompressor) encoderLevel() zstd.EncoderLevel {
	switch z.level {
	case Fast:
		return zstd.SpeedFastest
	case Slow:
		return zstd.SpeedBestCompression
	default:
		return zstd.SpeedDefault
	}
}

type deflateCompressor struct {
	level Level
}

func (d deflateCompressor) Name() string {
	return fmt.Sprintf("deflate(%s)", d.level)
}

func (d deflateCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer, err := flate.NewWriter(&buf, d.flateLevel())
	if err != nil {
		return nil, err
	}
	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (d deflateCompressor) Decompress(data []byte) ([]byte, error) {
	reader := flate.NewReader(bytes.NewReader(data))
	out, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrDecompression, err)
	}
	if err := reader.Close(); err != nil {
		return nil, fmt.Errorf("%w: deflate: %v", ErrDecompression, err)
	}
	return out, nil
}

func (d deflateCompressor) flateLevel() int {
	switch d.level {
	case Fast:
		return 2
	case Slow:
		return 9
	default:
		return 6
	}
}
