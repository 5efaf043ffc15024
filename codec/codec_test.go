package codec

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func newStoreFile(t *testing.T) *os.File {
	t.Helper()
	f, err := os.Create(filepath.Join(t.TempDir(), "store"))
	if err != nil {
		t.Fatalf("failed to create store file: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWriteReadBack(t *testing.T) {
	writer := NewBatchWriter(newStoreFile(t))

	if err := writer.WriteBatch([]byte{1, 2, 3}); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}
	if err := writer.WriteBatch([]byte{44, 55}); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}

	if writer.BatchCount() != 2 {
		t.Errorf("expected 2 batches, got %d", writer.BatchCount())
	}
	if writer.BytesWritten() != 5 {
		t.Errorf("expected 5 bytes written, got %d", writer.BytesWritten())
	}

	reader, err := writer.IntoReader()
	if err != nil {
		t.Fatalf("failed to convert writer to reader: %v", err)
	}

	first, err := reader.ReadBatch()
	if err != nil {
		t.Fatalf("failed to read batch: %v", err)
	}
	if !bytes.Equal(first, []byte{1, 2, 3}) {
		t.Errorf("first batch mismatch: got %v", first)
	}

	// Reset mid-stream and replay from the first batch.
	if err := reader.Reset(); err != nil {
		t.Fatalf("failed to reset reader: %v", err)
	}
	first, err = reader.ReadBatch()
	if err != nil {
		t.Fatalf("failed to read batch after reset: %v", err)
	}
	if !bytes.Equal(first, []byte{1, 2, 3}) {
		t.Errorf("first batch mismatch after reset: got %v", first)
	}

	second, err := reader.ReadBatch()
	if err != nil {
		t.Fatalf("failed to read batch: %v", err)
	}
	if !bytes.Equal(second, []byte{44, 55}) {
		t.Errorf("second batch mismatch: got %v", second)
	}

	if _, err := reader.ReadBatch(); err != io.EOF {
		t.Errorf("expected io.EOF past the last batch, got: %v", err)
	}
}

func TestChecksumMismatch(t *testing.T) {
	file := newStoreFile(t)
	writer := NewBatchWriter(file)

	if err := writer.WriteBatch([]byte("some batch payload")); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}

	reader, err := writer.IntoReader()
	if err != nil {
		t.Fatalf("failed to convert writer to reader: %v", err)
	}

	// Corrupt one byte of the persisted batch through a second handle.
	corrupter, err := os.OpenFile(file.Name(), os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("failed to reopen store file: %v", err)
	}
	defer corrupter.Close()
	if _, err := corrupter.WriteAt([]byte{0xFF}, 4); err != nil {
		t.Fatalf("failed to corrupt store file: %v", err)
	}

	_, err = reader.ReadBatch()
	if !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("expected checksum mismatch error, got: %v", err)
	}
}

func TestWriterConsumed(t *testing.T) {
	writer := NewBatchWriter(newStoreFile(t))
	if err := writer.WriteBatch([]byte{9}); err != nil {
		t.Fatalf("failed to write batch: %v", err)
	}

	if _, err := writer.IntoReader(); err != nil {
		t.Fatalf("failed to convert writer to reader: %v", err)
	}

	if err := writer.WriteBatch([]byte{10}); err != ErrWriterConsumed {
		t.Errorf("expected ErrWriterConsumed, got: %v", err)
	}
	if _, err := writer.IntoReader(); err != ErrWriterConsumed {
		t.Errorf("expected ErrWriterConsumed on second conversion, got: %v", err)
	}
}

func TestEmptyStore(t *testing.T) {
	writer := NewBatchWriter(newStoreFile(t))

	reader, err := writer.IntoReader()
	if err != nil {
		t.Fatalf("failed to convert writer to reader: %v", err)
	}
	if _, err := reader.ReadBatch(); err != io.EOF {
		t.Errorf("expected io.EOF on empty store, got: %v", err)
	}
	if err := reader.Reset(); err != nil {
		t.Fatalf("failed to reset empty reader: %v", err)
	}
	if _, err := reader.ReadBatch(); err != io.EOF {
		t.Errorf("expected io.EOF after reset of empty store, got: %v", err)
	}
}
