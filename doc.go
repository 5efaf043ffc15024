// Package swapvec provides a growing sequence container that swaps its
// oldest elements onto a temporary, checksummed and optionally
// compressed file once a configurable in-memory threshold is exceeded.
//
// Useful when a program may have to collect a large amount of data that
// usually fits into memory but must not kill the process in the rare
// cases it does not. Elements are pushed in, then the container is
// finalized into an iterator that replays the full sequence in original
// order, stitching the persisted batches and the in-memory remainder
// back together:
//
//	v := swapvec.New[uint64](swapvec.Config{
//		SwapAfter:   16,
//		BatchSize:   8,
//		Compression: compression.LZ4(),
//	})
//	for i := uint64(0); i < 999; i++ {
//		if err := v.Push(i); err != nil {
//			return err
//		}
//	}
//	it := v.Iter()
//	defer it.Close()
//	for {
//		element, err := it.Next()
//		if errors.Is(err, swapvec.ErrIteratorExhausted) {
//			break
//		}
//		...
//	}
//
// The temporary file is unlinked at creation and is reclaimed by the
// operating system when the iterator is closed, or at the latest when
// the process exits. Its layout is not self-describing: batch
// boundaries exist only in the in-memory index, so the file is a
// single-process scratch area, never a durable format.
//
// Containers and iterators are single-owner and not safe for
// concurrent use.
package swapvec
