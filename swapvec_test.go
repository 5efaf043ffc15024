package swapvec_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	swapvec "github.com/julianbuettner/swapvec"
	"github.com/julianbuettner/swapvec/compression"
)

func sequence(n int) []uint64 {
	out := make([]uint64, n)
	for i := range out {
		out[i] = uint64(i)
	}
	return out
}

func TestWriteAndReadBackWithFile(t *testing.T) {
	data := sequence(999)

	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 16, BatchSize: 5})
	require.NoError(t, v.Consume(data))
	require.True(t, v.WrittenToFile())
	require.Greater(t, v.BatchesWritten(), 0)

	size, ok := v.FileSize()
	require.True(t, ok)
	require.Greater(t, size, int64(0))

	it := v.Iter()
	defer it.Close()

	readBack, err := it.Collect()
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}

func TestWriteAndReadBackWithoutFile(t *testing.T) {
	data := sequence(999)

	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 1001, BatchSize: 5})
	require.NoError(t, v.Consume(data))
	require.False(t, v.WrittenToFile())
	require.Equal(t, 0, v.BatchesWritten())

	_, ok := v.FileSize()
	require.False(t, ok)

	it := v.Iter()
	defer it.Close()

	readBack, err := it.Collect()
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}

func TestOrderPreservedAroundThresholds(t *testing.T) {
	// Below, at, and well above both batch size and swap threshold.
	for _, n := range []int{0, 1, 7, 8, 9, 16, 17, 100} {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			data := sequence(n)

			v := swapvec.New[uint64](swapvec.Config{SwapAfter: 16, BatchSize: 8})
			require.NoError(t, v.Consume(data))

			it := v.Iter()
			defer it.Close()

			readBack, err := it.Collect()
			require.NoError(t, err)
			require.Equal(t, data, readBack)
		})
	}
}

func TestSwapAfterGatesFirstSpillOnly(t *testing.T) {
	// swap_after above batch_size: no file until strictly more than
	// swap_after elements have been pushed.
	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 20, BatchSize: 4})
	for i := 0; i < 20; i++ {
		require.NoError(t, v.Push(uint64(i)))
		require.False(t, v.WrittenToFile(), "no spill expected after %d elements", i+1)
	}

	require.NoError(t, v.Push(20))
	require.True(t, v.WrittenToFile())
	require.Equal(t, 1, v.BatchesWritten())

	// Once the file exists, spilling continues every batch regardless
	// of swap_after.
	written := v.BatchesWritten()
	for i := 21; i < 40; i++ {
		require.NoError(t, v.Push(uint64(i)))
	}
	require.Greater(t, v.BatchesWritten(), written)

	it := v.Iter()
	defer it.Close()

	readBack, err := it.Collect()
	require.NoError(t, err)
	require.Equal(t, sequence(40), readBack)
}

func TestSpillStartsAtBatchSizeWhenSwapAfterIsLower(t *testing.T) {
	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 2, BatchSize: 5})
	for i := 0; i < 5; i++ {
		require.NoError(t, v.Push(uint64(i)))
		require.False(t, v.WrittenToFile())
	}

	require.NoError(t, v.Push(5))
	require.True(t, v.WrittenToFile())
	require.Equal(t, 1, v.BatchesWritten())
}

func TestWriteAndReadBackWithCompression(t *testing.T) {
	data := sequence(999)

	compressors := []compression.Compressor{
		nil,
		compression.LZ4(),
		compression.Snappy(),
		compression.Zstd(compression.Fast),
		compression.Zstd(compression.Default),
		compression.Zstd(compression.Slow),
		compression.Deflate(compression.Fast),
		compression.Deflate(compression.Default),
		compression.Deflate(compression.Slow),
	}

	for _, comp := range compressors {
		name := "none"
		if comp != nil {
			name = comp.Name()
		}
		t.Run(name, func(t *testing.T) {
			v := swapvec.New[uint64](swapvec.Config{
				SwapAfter:   16,
				BatchSize:   8,
				Compression: comp,
			})
			require.NoError(t, v.Consume(data))
			require.True(t, v.WrittenToFile())

			it := v.Iter()
			defer it.Close()

			readBack, err := it.Collect()
			require.NoError(t, err)
			require.Equal(t, data, readBack)
		})
	}
}

func TestContainerConsumedByIter(t *testing.T) {
	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 16, BatchSize: 5})
	require.NoError(t, v.Consume(sequence(10)))

	it := v.Iter()
	defer it.Close()

	require.ErrorIs(t, v.Push(11), swapvec.ErrConsumed)
	require.ErrorIs(t, v.Consume([]uint64{11}), swapvec.ErrConsumed)
}

func TestLenAndString(t *testing.T) {
	v := swapvec.New[uint64](swapvec.Config{SwapAfter: 8, BatchSize: 4})
	require.NoError(t, v.Consume(sequence(9)))

	// One batch of 4 spilled, 5 elements in memory.
	require.True(t, v.WrittenToFile())
	require.Equal(t, 9, v.Len())
	require.Equal(t, "SwapVec{elements_in_ram: 5, elements_in_file: 4}", v.String())
}

func TestConfigValidate(t *testing.T) {
	require.Error(t, swapvec.Config{BatchSize: 0}.Validate())
	require.Error(t, swapvec.Config{BatchSize: 4, SwapAfter: -1}.Validate())
	require.NoError(t, swapvec.DefaultConfig().Validate())
}

func TestStructElements(t *testing.T) {
	type point struct {
		X int    `json:"x"`
		Y int    `json:"y"`
		L string `json:"l"`
	}

	data := make([]point, 0, 50)
	for i := 0; i < 50; i++ {
		data = append(data, point{X: i, Y: -i, L: fmt.Sprintf("p%d", i)})
	}

	v := swapvec.New[point](swapvec.Config{SwapAfter: 8, BatchSize: 4, Compression: compression.Snappy()})
	require.NoError(t, v.Consume(data))
	require.True(t, v.WrittenToFile())

	it := v.Iter()
	defer it.Close()

	readBack, err := it.Collect()
	require.NoError(t, err)
	require.Equal(t, data, readBack)
}
