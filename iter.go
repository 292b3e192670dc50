package chunkvec

import (
	"context"
)

// Iter is a double-ended iterator over shared references to the elements
// of a vector. Elements are resolved lazily from storage at yield time.
//
// Iter is fused: once exhausted, or once a storage error is recorded, all
// calls report exhausted. Check Err after iteration, as with bufio.Scanner.
type Iter[T any] struct {
	// The construction context is captured so that per-yield chunk loads
	// don't force a context parameter on every call.
	ctx context.Context
	vec *Vector[T]
	// Half-open range of indices left to yield.
	start, end uint32
	err        error
}

// Iter returns an iterator over the vector. Any chunks iterated over are
// lazily loaded from storage.
func (v *Vector[T]) Iter(ctx context.Context) *Iter[T] {
	return &Iter[T]{
		ctx: ctx,
		vec: v,
		end: v.length,
	}
}

// Remaining returns the number of elements left to yield, in O(1).
func (it *Iter[T]) Remaining() uint32 {
	return it.end - it.start
}

// Err returns the first storage error encountered, if any.
func (it *Iter[T]) Err() error {
	return it.err
}

// Next yields the next element from the front of the range.
// ok is false when the iterator is exhausted.
func (it *Iter[T]) Next() (*T, bool) {
	return it.Nth(0)
}

// NextBack yields the next element from the back of the range.
func (it *Iter[T]) NextBack() (*T, bool) {
	return it.NthBack(0)
}

// Nth skips n elements from the front of the range and yields the next
// one. Nth(0) is Next.
func (it *Iter[T]) Nth(n uint32) (*T, bool) {
	if it.err != nil || n >= it.Remaining() {
		it.start = it.end
		return nil, false
	}

	index := it.start + n
	it.start = index + 1

	value, err := it.vec.Get(it.ctx, index)
	if err != nil {
		it.err = err
		it.start = it.end
		return nil, false
	}
	return value, true
}

// NthBack skips n elements from the back of the range and yields the next
// one. NthBack(0) is NextBack.
func (it *Iter[T]) NthBack(n uint32) (*T, bool) {
	if it.err != nil || n >= it.Remaining() {
		it.start = it.end
		return nil, false
	}

	index := it.end - 1 - n
	it.end = index

	value, err := it.vec.Get(it.ctx, index)
	if err != nil {
		it.err = err
		it.start = it.end
		return nil, false
	}
	return value, true
}

// MutIter is a double-ended iterator over exclusive references to the
// elements of a vector. Every yielded pointer marks its owning chunk
// dirty, so mutations through it are persisted on the next flush.
//
// The range narrows with every yield and the two ends never overlap, so
// no index is yielded twice in any traversal order; each yielded pointer
// stays valid for the iterator's lifetime.
type MutIter[T any] struct {
	ctx context.Context
	vec *Vector[T]
	// Half-open range of indices left to yield.
	start, end uint32
	err        error
}

// IterMut returns an iterator over the vector that allows modifying each
// element. Any chunks iterated over are lazily loaded from storage.
func (v *Vector[T]) IterMut(ctx context.Context) *MutIter[T] {
	return &MutIter[T]{
		ctx: ctx,
		vec: v,
		end: v.length,
	}
}

// Remaining returns the number of elements left to yield, in O(1).
func (it *MutIter[T]) Remaining() uint32 {
	return it.end - it.start
}

// Err returns the first storage error encountered, if any.
func (it *MutIter[T]) Err() error {
	return it.err
}

// Next yields the next element from the front of the range.
func (it *MutIter[T]) Next() (*T, bool) {
	return it.Nth(0)
}

// NextBack yields the next element from the back of the range.
func (it *MutIter[T]) NextBack() (*T, bool) {
	return it.NthBack(0)
}

// Nth skips n elements from the front of the range and yields the next one.
func (it *MutIter[T]) Nth(n uint32) (*T, bool) {
	if it.err != nil || n >= it.Remaining() {
		it.start = it.end
		return nil, false
	}

	index := it.start + n
	it.start = index + 1

	value, err := it.vec.GetMut(it.ctx, index)
	if err != nil {
		it.err = err
		it.start = it.end
		return nil, false
	}
	return value, true
}

// NthBack skips n elements from the back of the range and yields the next one.
func (it *MutIter[T]) NthBack(n uint32) (*T, bool) {
	if it.err != nil || n >= it.Remaining() {
		it.start = it.end
		return nil, false
	}

	index := it.end - 1 - n
	it.end = index

	value, err := it.vec.GetMut(it.ctx, index)
	if err != nil {
		it.err = err
		it.start = it.end
		return nil, false
	}
	return value, true
}
