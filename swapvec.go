package swapvec

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/julianbuettner/swapvec/codec"
	"github.com/julianbuettner/swapvec/compression"
)

// SwapVec is a growing sequence container that transparently swaps its
// oldest elements onto a temporary file once the configured in-memory
// threshold is exceeded.
//
// Elements are appended with Push or Consume, then the finished
// container is turned into a replay iterator with Iter. At any point
// the full logical sequence is the persisted batches in write order
// followed by the in-memory buffer in insertion order.
//
// A SwapVec is single-owner and not safe for concurrent use.
type SwapVec[T any] struct {
	cfg        Config
	comp       compression.Compressor
	logger     *zap.Logger
	serializer Serializer[T]
	buffer     deque[T]
	writer     *codec.BatchWriter
	file       *os.File
	consumed   bool
}

// New returns a container with the given configuration and the default
// JSON batch serializer.
func New[T any](cfg Config) *SwapVec[T] {
	return NewWithSerializer[T](cfg, JSONSerializer[T]{})
}

// NewWithSerializer returns a container using a caller-supplied batch
// serializer.
func NewWithSerializer[T any](cfg Config, serializer Serializer[T]) *SwapVec[T] {
	return &SwapVec[T]{
		cfg:        cfg,
		comp:       cfg.compressor(),
		logger:     cfg.logger(),
		serializer: serializer,
	}
}

// Push appends a single element. It may trigger a batch flush and
// therefore IO.
func (v *SwapVec[T]) Push(element T) error {
	if v.consumed {
		return ErrConsumed
	}
	v.buffer.pushBack(element)
	return v.afterPush()
}

// Consume appends all given elements in order. The spill check runs
// after every element, so a huge single call still bounds memory growth
// at each step.
func (v *SwapVec[T]) Consume(elements []T) error {
	if v.consumed {
		return ErrConsumed
	}
	for _, element := range elements {
		v.buffer.pushBack(element)
		if err := v.afterPush(); err != nil {
			return err
		}
	}
	return nil
}

// WrittenToFile reports whether the temporary file has been created,
// i.e. at least one batch has been swapped out.
func (v *SwapVec[T]) WrittenToFile() bool {
	return v.writer != nil
}

// FileSize returns the byte size of the temporary file, or false if no
// file has been created.
func (v *SwapVec[T]) FileSize() (int64, bool) {
	if v.writer == nil {
		return 0, false
	}
	return v.writer.BytesWritten(), true
}

// BatchesWritten returns the number of batches persisted so far.
func (v *SwapVec[T]) BatchesWritten() int {
	if v.writer == nil {
		return 0
	}
	return v.writer.BatchCount()
}

// Len returns the number of elements held, in memory and on disk
// combined.
func (v *SwapVec[T]) Len() int {
	return v.buffer.len() + v.BatchesWritten()*v.cfg.BatchSize
}

// String describes the memory/disk split for debugging.
func (v *SwapVec[T]) String() string {
	return fmt.Sprintf("SwapVec{elements_in_ram: %d, elements_in_file: %d}",
		v.buffer.len(), v.BatchesWritten()*v.cfg.BatchSize)
}

// Iter finalizes the container into a replay iterator. The write-mode
// store converts to read mode and the remaining buffer becomes the
// iterator's tail; the container is consumed and every later Push or
// Consume returns ErrConsumed. A conversion failure is deferred into
// the iterator and surfaced on its first read.
//
// Close the iterator to release the temporary file.
func (v *SwapVec[T]) Iter() *Iterator[T] {
	it := &Iterator[T]{
		comp:       v.comp,
		logger:     v.logger,
		serializer: v.serializer,
		tail:       v.buffer,
		file:       v.file,
	}
	if v.writer != nil {
		reader, err := v.writer.IntoReader()
		if err != nil {
			it.deferredErr = classifyIOError(err)
		} else {
			it.reader = reader
		}
	}
	v.consumed = true
	v.writer = nil
	v.file = nil
	v.buffer = deque[T]{}
	v.logger.Debug("container finalized into iterator",
		zap.Int("tail_elements", it.tail.len()),
		zap.Bool("has_store", it.reader != nil))
	return it
}

// afterPush flushes the oldest full batch if the thresholds say so.
// Spilling is deferred until the buffer also exceeds SwapAfter, but
// only for the first batch; once the file exists every BatchSize
// insertions trigger a write.
func (v *SwapVec[T]) afterPush() error {
	if v.buffer.len() <= v.cfg.BatchSize {
		return nil
	}
	if v.writer == nil && v.buffer.len() <= v.cfg.SwapAfter {
		return nil
	}

	if v.writer == nil {
		file, err := newScratchFile()
		if err != nil {
			return classifyIOError(err)
		}
		v.file = file
		v.writer = codec.NewBatchWriter(file)
		v.logger.Debug("created backing store",
			zap.String("compression", v.comp.Name()),
			zap.Int("batch_size", v.cfg.BatchSize))
	}

	batch := v.buffer.drainFront(v.cfg.BatchSize)
	data, err := v.serializer.MarshalBatch(batch)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	compressed, err := v.comp.Compress(data)
	if err != nil {
		return fmt.Errorf("swapvec: compressing batch: %w", err)
	}
	if err := v.writer.WriteBatch(compressed); err != nil {
		return classifyIOError(err)
	}
	v.logger.Debug("spilled batch",
		zap.Int("elements", len(batch)),
		zap.Int("bytes", len(compressed)),
		zap.Int("batches_written", v.writer.BatchCount()))
	return nil
}

// newScratchFile creates the backing store. The file is unlinked right
// away so the OS reclaims it as soon as the handle closes, including on
// abnormal termination; removal failure (e.g. on platforms that forbid
// unlinking open files) is ignored and only delays cleanup.
func newScratchFile() (*os.File, error) {
	file, err := os.CreateTemp("", "swapvec-*")
	if err != nil {
		return nil, err
	}
	_ = os.Remove(file.Name())
	return file, nil
}
