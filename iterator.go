package swapvec

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/julianbuettner/swapvec/codec"
	"github.com/julianbuettner/swapvec/compression"
)

// Iterator replays the full sequence of a finalized container in
// original insertion order: first the persisted batches in write order,
// then the tail elements that never left memory.
//
// Iteration stops at the first error; after an error the iterator makes
// no guarantee about the validity of further items. Callers that need
// full-sequence correctness should stop consuming once Next fails with
// anything but ErrIteratorExhausted.
type Iterator[T any] struct {
	comp       compression.Compressor
	logger     *zap.Logger
	serializer Serializer[T]

	// deferredErr holds a failure from finalization or Reset, surfaced
	// on the next read attempt. Finalization itself never fails.
	deferredErr error

	// staged holds the batch currently being drained, in reverse order
	// so that popping from the end yields original order.
	staged []T

	reader    *codec.BatchReader
	file      *os.File
	tail      deque[T]
	tailIndex int
}

// Next returns the next element of the sequence. Once the sequence is
// exhausted it returns ErrIteratorExhausted on every call (until a
// Reset).
func (it *Iterator[T]) Next() (T, error) {
	var zero T
	for {
		if n := len(it.staged); n > 0 {
			element := it.staged[n-1]
			it.staged[n-1] = zero
			it.staged = it.staged[:n-1]
			return element, nil
		}
		batch, err := it.nextBatch()
		if err != nil {
			return zero, err
		}
		if batch == nil {
			break
		}
		reverse(batch)
		it.staged = batch
	}

	if element, ok := it.tail.at(it.tailIndex); ok {
		it.tailIndex++
		return element, nil
	}
	return zero, ErrIteratorExhausted
}

// Collect drains the remaining elements into a slice, stopping at the
// first error. Exhaustion is not an error.
func (it *Iterator[T]) Collect() ([]T, error) {
	out := make([]T, 0, it.tail.len())
	for {
		element, err := it.Next()
		if errors.Is(err, ErrIteratorExhausted) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, element)
	}
}

// Reset restarts the sequence from position zero: the staged batch is
// discarded, the tail cursor rewinds and the store, if any, seeks back
// to its first batch. An IO failure during the rewind is deferred and
// surfaced by the next Next call rather than here.
func (it *Iterator[T]) Reset() {
	it.staged = nil
	it.tailIndex = 0
	if it.reader != nil {
		if err := it.reader.Reset(); err != nil {
			it.deferredErr = classifyIOError(err)
		}
	}
	it.logger.Debug("iterator reset")
}

// Close releases the temporary file backing the iterator. The iterator
// must not be used afterwards. Close is a no-op for containers that
// never spilled.
func (it *Iterator[T]) Close() error {
	it.reader = nil
	it.staged = nil
	if it.file == nil {
		return nil
	}
	file := it.file
	it.file = nil
	return file.Close()
}

// nextBatch reads, verifies, decompresses and deserializes the next
// persisted batch, or returns (nil, nil) once the store is exhausted
// (or was never created).
func (it *Iterator[T]) nextBatch() ([]T, error) {
	if it.deferredErr != nil {
		err := it.deferredErr
		it.deferredErr = nil
		return nil, err
	}
	if it.reader == nil {
		return nil, nil
	}

	raw, err := it.reader.ReadBatch()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, classifyIOError(err)
	}

	decompressed, err := it.comp.Decompress(raw)
	if err != nil {
		if errors.Is(err, compression.ErrDecompression) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDecompression, err)
	}

	batch, err := it.serializer.UnmarshalBatch(decompressed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return batch, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
