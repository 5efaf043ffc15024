// Package codec implements the checksummed batch store backing a
// swapped-out vector.
//
// Batches are written back-to-back into a single seekable handle with no
// in-band delimiters. Record boundaries live only in the in-memory index
// kept alongside the handle, so the store cannot be parsed without the
// writer that produced it. The index is never persisted; the store is a
// single-process scratch area, not a durable file format.
package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
)

var (
	// ErrChecksumMismatch reports that the bytes read back for a batch
	// do not hash to the value recorded when the batch was written.
	ErrChecksumMismatch = errors.New("batch checksum mismatch")

	// ErrWriterConsumed reports use of a BatchWriter after it has been
	// converted into a BatchReader.
	ErrWriterConsumed = errors.New("batch writer already converted to reader")
)

// BatchInfo is the integrity metadata recorded for one persisted batch.
// It is created at write time from the exact bytes handed to WriteBatch
// and never mutated afterwards.
type BatchInfo struct {
	Hash   uint64
	Length int
}

// BatchWriter appends opaque byte blocks to a backing store and records
// a BatchInfo per block. It is the write-mode half of the store handle;
// IntoReader performs the one-way conversion to read mode.
type BatchWriter struct {
	file  io.ReadWriteSeeker
	w     *bufio.Writer
	infos []BatchInfo
}

// NewBatchWriter wraps file in a buffered batch writer. The handle must
// be positioned at the start of an empty store.
func NewBatchWriter(file io.ReadWriteSeeker) *BatchWriter {
	return &BatchWriter{
		file: file,
		w:    bufio.NewWriter(file),
	}
}

// WriteBatch appends p to the store, flushes the buffered writer and
// records the batch's hash and length in the index. On error the index
// is left unchanged and the batch is considered lost.
func (bw *BatchWriter) WriteBatch(p []byte) error {
	if bw.w == nil {
		return ErrWriterConsumed
	}
	if _, err := bw.w.Write(p); err != nil {
		return fmt.Errorf("writing batch %d: %w", len(bw.infos), err)
	}
	if err := bw.w.Flush(); err != nil {
		return fmt.Errorf("flushing batch %d: %w", len(bw.infos), err)
	}
	bw.infos = append(bw.infos, BatchInfo{
		Hash:   xxhash.Sum64(p),
		Length: len(p),
	})
	return nil
}

// BatchCount returns the number of batches written so far.
func (bw *BatchWriter) BatchCount() int {
	return len(bw.infos)
}

// BytesWritten returns the total byte size of all written batches.
func (bw *BatchWriter) BytesWritten() int64 {
	var total int64
	for _, info := range bw.infos {
		total += int64(info.Length)
	}
	return total
}

// IntoReader converts the writer into a reader positioned at the first
// batch, carrying the accumulated index over unchanged. The conversion
// is one-way: on success the writer is dead and any further WriteBatch
// returns ErrWriterConsumed. It fails if the buffered data cannot be
// flushed or the handle cannot be seeked back to the start.
func (bw *BatchWriter) IntoReader() (*BatchReader, error) {
	if bw.w == nil {
		return nil, ErrWriterConsumed
	}
	if err := bw.w.Flush(); err != nil {
		return nil, fmt.Errorf("flushing store before read: %w", err)
	}
	if _, err := bw.file.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewinding store: %w", err)
	}
	br := &BatchReader{
		file:  bw.file,
		r:     bufio.NewReader(bw.file),
		infos: bw.infos,
	}
	bw.w = nil
	bw.infos = nil
	return br, nil
}

// BatchReader replays the batches recorded by a BatchWriter, in write
// order, through a cursor over the shared index.
type BatchReader struct {
	file  io.ReadSeeker
	r     *bufio.Reader
	infos []BatchInfo
	index int
	buf   []byte
}

// ReadBatch returns the raw bytes of the next batch, verified against
// the hash recorded at write time, or io.EOF once the index is
// exhausted. The returned slice is only valid until the next call to
// ReadBatch or Reset.
func (br *BatchReader) ReadBatch() ([]byte, error) {
	if br.index >= len(br.infos) {
		return nil, io.EOF
	}
	info := br.infos[br.index]
	br.index++

	if cap(br.buf) < info.Length {
		br.buf = make([]byte, info.Length)
	}
	buf := br.buf[:info.Length]
	if _, err := io.ReadFull(br.r, buf); err != nil {
		return nil, fmt.Errorf("reading batch %d: %w", br.index-1, err)
	}
	if xxhash.Sum64(buf) != info.Hash {
		return nil, fmt.Errorf("batch %d: %w", br.index-1, ErrChecksumMismatch)
	}
	return buf, nil
}

// BatchCount returns the number of batches in the index.
func (br *BatchReader) BatchCount() int {
	return len(br.infos)
}

// Reset repositions the cursor at the first batch and rewinds the
// backing store to its start.
func (br *BatchReader) Reset() error {
	if _, err := br.file.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewinding store: %w", err)
	}
	br.r.Reset(br.file)
	br.index = 0
	return nil
}
