package swapvec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"

	"github.com/julianbuettner/swapvec/codec"
	"github.com/julianbuettner/swapvec/compression"
)

var (
	// ErrMissingPermissions reports that the backing store could not be
	// created due to insufficient permissions.
	ErrMissingPermissions = errors.New("swapvec: missing permissions for backing store")

	// ErrOutOfDisk reports a storage-exhaustion failure while writing
	// a batch to the backing store.
	ErrOutOfDisk = errors.New("swapvec: out of disk space")

	// ErrSerialization reports that a batch could not be serialized
	// before being written to the backing store.
	ErrSerialization = errors.New("swapvec: batch serialization failed")

	// ErrDeserialization reports that a persisted batch could not be
	// deserialized back into elements.
	ErrDeserialization = errors.New("swapvec: batch deserialization failed")

	// ErrIteratorExhausted is returned by Iterator.Next once the full
	// sequence has been yielded. Match it with errors.Is.
	ErrIteratorExhausted = errors.New("swapvec: iterator exhausted")

	// ErrConsumed reports use of a container after Iter has taken
	// ownership of its contents.
	ErrConsumed = errors.New("swapvec: container already consumed")

	// ErrChecksumMismatch reports that a persisted batch was corrupted
	// between write and read.
	ErrChecksumMismatch = codec.ErrChecksumMismatch

	// ErrDecompression reports that a persisted batch could not be
	// decompressed with the configured algorithm.
	ErrDecompression = compression.ErrDecompression
)

// classifyIOError maps storage errors onto the package sentinels so
// callers can errors.Is against a stable kind. Unrecognized errors pass
// through unchanged.
func classifyIOError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %v", ErrMissingPermissions, err)
	case errors.Is(err, syscall.ENOSPC), errors.Is(err, io.ErrShortWrite):
		return fmt.Errorf("%w: %v", ErrOutOfDisk, err)
	default:
		return err
	}
}
