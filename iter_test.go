package chunkvec

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/chunkvec/kv"
)

func TestIter(t *testing.T) {
	ctx := context.Background()

	vec, _ := newTestVector(t, WithChunkCapacity(3))
	for i := uint64(0); i < 10; i++ {
		require.NoError(t, vec.Push(ctx, i))
	}

	it := vec.Iter(ctx)
	assert.Equal(t, uint32(10), it.Remaining())

	value, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(0), *value)

	value, ok = it.NextBack()
	require.True(t, ok)
	assert.Equal(t, uint64(9), *value)

	value, ok = it.Nth(3)
	require.True(t, ok)
	assert.Equal(t, uint64(4), *value)

	value, ok = it.NthBack(2)
	require.True(t, ok)
	assert.Equal(t, uint64(6), *value)

	assert.Equal(t, uint32(1), it.Remaining())

	// Skipping past the end exhausts the iterator.
	_, ok = it.Nth(5)
	assert.False(t, ok)
	_, ok = it.Next()
	assert.False(t, ok)
	_, ok = it.NextBack()
	assert.False(t, ok)
	assert.Equal(t, uint32(0), it.Remaining())
	assert.NoError(t, it.Err())
}

func TestIterEmpty(t *testing.T) {
	ctx := context.Background()

	vec, _ := newTestVector(t)
	it := vec.Iter(ctx)

	_, ok := it.Next()
	assert.False(t, ok)
	_, ok = it.NextBack()
	assert.False(t, ok)
	assert.NoError(t, it.Err())
}

func TestIterMut(t *testing.T) {
	ctx := context.Background()
	medium := kv.NewMemoryStore()

	vec, err := New[uint64]("v", medium, WithChunkCapacity(2))
	require.NoError(t, err)
	require.NoError(t, vec.Extend(ctx, 1, 2, 4))

	it := vec.IterMut(ctx)
	for elem, ok := it.Next(); ok; elem, ok = it.Next() {
		*elem += 2
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []uint64{3, 4, 6}, collect(t, vec))

	// Mutations through the iterator survive a flush and reopen.
	require.NoError(t, vec.Close(ctx))
	header, err := vec.MarshalBinary()
	require.NoError(t, err)

	reopened, err := UnmarshalVector[uint64](header, medium)
	require.NoError(t, err)
	assert.Equal(t, []uint64{3, 4, 6}, collect(t, reopened))
}

func TestIterMutBack(t *testing.T) {
	ctx := context.Background()

	vec, _ := newTestVector(t, WithChunkCapacity(4))
	require.NoError(t, vec.Extend(ctx, 10, 20, 30, 40, 50))

	it := vec.IterMut(ctx)
	elem, ok := it.NthBack(1)
	require.True(t, ok)
	assert.Equal(t, uint64(40), *elem)
	*elem = 41

	elem, ok = it.NextBack()
	require.True(t, ok)
	assert.Equal(t, uint64(30), *elem)

	assert.Equal(t, []uint64{10, 20, 30, 41, 50}, collect(t, vec))
}

// sliceIter mirrors the iterator contract over a plain slice and serves as
// the oracle for TestIterEquivalence.
type sliceIter struct {
	values     []uint64
	start, end uint32
}

func (it *sliceIter) nth(n uint32) (uint64, bool) {
	if n >= it.end-it.start {
		it.start = it.end
		return 0, false
	}
	index := it.start + n
	it.start = index + 1
	return it.values[index], true
}

func (it *sliceIter) nthBack(n uint32) (uint64, bool) {
	if n >= it.end-it.start {
		it.start = it.end
		return 0, false
	}
	index := it.end - 1 - n
	it.end = index
	return it.values[index], true
}

func TestIterEquivalence(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(4))

	for run := 0; run < 32; run++ {
		vec, _ := newTestVector(t, WithChunkCapacity(rng.Uint32()%7+1))
		var baseline []uint64
		for n := rng.Intn(50); n > 0; n-- {
			value := rng.Uint64()
			require.NoError(t, vec.Push(ctx, value))
			baseline = append(baseline, value)
		}

		it := vec.Iter(ctx)
		oracle := &sliceIter{values: baseline, end: uint32(len(baseline))} //nolint:gosec

		for op := 0; op < 30; op++ {
			n := rng.Uint32() % 4

			var (
				got    *uint64
				gotOK  bool
				want   uint64
				wantOK bool
			)
			if rng.Intn(2) == 0 {
				got, gotOK = it.Nth(n)
				want, wantOK = oracle.nth(n)
			} else {
				got, gotOK = it.NthBack(n)
				want, wantOK = oracle.nthBack(n)
			}

			require.Equal(t, wantOK, gotOK)
			if gotOK {
				assert.Equal(t, want, *got)
			}
			require.NoError(t, it.Err())
			assert.Equal(t, oracle.end-oracle.start, it.Remaining())
		}
	}
}

func TestIterStorageError(t *testing.T) {
	ctx := context.Background()
	medium := kv.NewMemoryStore()

	vec, err := New[uint64]("v", medium, WithChunkCapacity(2))
	require.NoError(t, err)
	require.NoError(t, vec.Extend(ctx, 0, 1, 2, 3))
	require.NoError(t, vec.Flush(ctx))

	header, err := vec.MarshalBinary()
	require.NoError(t, err)
	require.NoError(t, medium.Delete(ctx, "v/00000001"))

	reopened, err := UnmarshalVector[uint64](header, medium)
	require.NoError(t, err)

	it := reopened.Iter(ctx)
	value, ok := it.Next()
	require.True(t, ok)
	assert.Equal(t, uint64(0), *value)

	_, ok = it.Next()
	require.True(t, ok)

	// Index 2 lives in the deleted chunk; the error fuses the iterator.
	_, ok = it.Next()
	assert.False(t, ok)
	assert.ErrorIs(t, it.Err(), ErrInconsistentState)

	_, ok = it.NextBack()
	assert.False(t, ok)
}
