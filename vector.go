package chunkvec

import (
	"context"
	"fmt"
	"math"

	"github.com/hupe1980/chunkvec/chunkstore"
	"github.com/hupe1980/chunkvec/kv"
)

func chunkIndex(index, capacity uint32) uint32 {
	return index / capacity
}

func chunkPos(index, capacity uint32) uint32 {
	return index % capacity
}

// Vector is a persisted, chunked, lazily-loaded vector.
//
// Elements are grouped into chunks of fixed capacity; each chunk is read
// and written to the medium as one serialized unit, keyed by
// chunkIndex = index / capacity under the vector's namespace. A chunk
// exists in storage iff it holds at least one live element; slots past the
// last live element hold zero values and are never exposed.
//
// A Vector is exclusively owned by a single caller; it is not safe for
// concurrent use. Call Close (or Flush) before discarding it, otherwise
// buffered mutations are lost.
type Vector[T any] struct {
	length   uint32
	capacity uint32
	store    *chunkstore.Store[[]T]
	logger   *Logger
}

// New creates an empty vector bound to the given namespace.
//
// The namespace scopes all medium keys the vector produces, so multiple
// vectors can share one medium without collisions. Reopening a populated
// namespace requires the same chunk capacity and codec it was written with.
func New[T any](namespace string, medium kv.Store, opts ...Option) (*Vector[T], error) {
	o := options{
		chunkCapacity: DefaultChunkCapacity,
		logger:        NoopLogger(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.chunkCapacity < 1 {
		return nil, fmt.Errorf("chunkvec: chunk capacity must be >= 1")
	}
	if medium == nil {
		return nil, fmt.Errorf("chunkvec: nil medium")
	}

	return &Vector[T]{
		capacity: o.chunkCapacity,
		store:    chunkstore.New[[]T](namespace, medium, o.codec),
		logger:   o.logger.WithNamespace(namespace),
	}, nil
}

// Len returns the number of elements in the vector.
func (v *Vector[T]) Len() uint32 {
	return v.length
}

// IsEmpty returns true if the vector contains no elements.
func (v *Vector[T]) IsEmpty() bool {
	return v.length == 0
}

// Namespace returns the storage namespace the vector is bound to.
func (v *Vector[T]) Namespace() string {
	return v.store.Namespace()
}

// ChunkCapacity returns the number of elements per chunk.
func (v *Vector[T]) ChunkCapacity() uint32 {
	return v.capacity
}

// chunkAt resolves the chunk owning an in-range index. A missing or
// short chunk for an in-range index means the medium was mutated outside
// the vector's control.
func (v *Vector[T]) chunkAt(ctx context.Context, index uint32, mutate bool) ([]T, uint32, error) {
	idx := chunkIndex(index, v.capacity)
	pos := chunkPos(index, v.capacity)

	var (
		chunk []T
		ok    bool
		err   error
	)
	if mutate {
		chunk, ok, err = v.store.GetMut(ctx, idx)
	} else {
		chunk, ok, err = v.store.Get(ctx, idx)
	}
	if err != nil {
		return nil, 0, err
	}
	if !ok || pos >= uint32(len(chunk)) {
		return nil, 0, fmt.Errorf("%w: chunk %d missing for index %d", ErrInconsistentState, idx, index)
	}
	return chunk, pos, nil
}

// Get returns a pointer to the element at index, resolving the owning
// chunk from the medium on first access.
//
// The pointer must be treated as read-only; use GetMut for mutation.
// Returns ErrIndexOutOfBounds if index >= Len, ErrInconsistentState if the
// owning chunk is absent from storage.
func (v *Vector[T]) Get(ctx context.Context, index uint32) (*T, error) {
	if index >= v.length {
		return nil, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfBounds, index, v.length)
	}
	chunk, pos, err := v.chunkAt(ctx, index, false)
	if err != nil {
		return nil, err
	}
	return &chunk[pos], nil
}

// GetMut returns a pointer to the element at index and marks the owning
// chunk dirty: mutations through the pointer are persisted on the next
// flush.
func (v *Vector[T]) GetMut(ctx context.Context, index uint32) (*T, error) {
	if index >= v.length {
		return nil, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfBounds, index, v.length)
	}
	chunk, pos, err := v.chunkAt(ctx, index, true)
	if err != nil {
		return nil, err
	}
	return &chunk[pos], nil
}

// Set overwrites the element at index.
func (v *Vector[T]) Set(ctx context.Context, index uint32, value T) error {
	elem, err := v.GetMut(ctx, index)
	if err != nil {
		return err
	}
	*elem = value
	return nil
}

// Push appends an element to the back of the vector.
//
// Returns ErrCapacityExhausted if the length is already math.MaxUint32.
func (v *Vector[T]) Push(ctx context.Context, value T) error {
	if v.length == math.MaxUint32 {
		return fmt.Errorf("%w: len %d", ErrCapacityExhausted, v.length)
	}

	last := v.length
	idx := chunkIndex(last, v.capacity)
	pos := chunkPos(last, v.capacity)

	if pos == 0 {
		// Push starts a new chunk; the tail slots stay zero-valued until
		// later pushes claim them.
		chunk := make([]T, v.capacity)
		chunk[0] = value
		v.store.Set(idx, chunk)
	} else {
		chunk, ok, err := v.store.GetMut(ctx, idx)
		if err != nil {
			return err
		}
		if !ok || pos >= uint32(len(chunk)) {
			return fmt.Errorf("%w: chunk %d missing during push at index %d", ErrInconsistentState, idx, last)
		}
		chunk[pos] = value
	}

	v.length = last + 1
	return nil
}

// Pop removes the last element from the vector and returns it.
// ok is false if the vector is empty.
func (v *Vector[T]) Pop(ctx context.Context) (value T, ok bool, err error) {
	var zero T
	if v.length == 0 {
		return zero, false, nil
	}

	lastIndex := v.length - 1
	idx := chunkIndex(lastIndex, v.capacity)
	pos := chunkPos(lastIndex, v.capacity)

	var prev T
	if pos == 0 {
		// The popped element is alone in its chunk; remove the whole chunk.
		chunk, ok, err := v.store.Remove(ctx, idx)
		if err != nil {
			return zero, false, err
		}
		if !ok || len(chunk) == 0 {
			return zero, false, fmt.Errorf("%w: chunk %d missing during pop at index %d", ErrInconsistentState, idx, lastIndex)
		}
		prev = chunk[0]
	} else {
		chunk, ok, err := v.store.GetMut(ctx, idx)
		if err != nil {
			return zero, false, err
		}
		if !ok || pos >= uint32(len(chunk)) {
			return zero, false, fmt.Errorf("%w: chunk %d missing during pop at index %d", ErrInconsistentState, idx, lastIndex)
		}
		prev = chunk[pos]
		// Reset the vacated slot so references held by T are released.
		chunk[pos] = zero
	}

	// Decrement last, after the value is safely extracted.
	v.length = lastIndex
	return prev, true, nil
}

// Swap exchanges the elements at indices a and b.
func (v *Vector[T]) Swap(ctx context.Context, a, b uint32) error {
	if a >= v.length || b >= v.length {
		return fmt.Errorf("%w: indices %d, %d, len %d", ErrIndexOutOfBounds, a, b, v.length)
	}
	if a == b {
		return nil
	}

	if chunkIndex(a, v.capacity) == chunkIndex(b, v.capacity) {
		chunk, _, err := v.chunkAt(ctx, a, true)
		if err != nil {
			return err
		}
		pa := chunkPos(a, v.capacity)
		pb := chunkPos(b, v.capacity)
		chunk[pa], chunk[pb] = chunk[pb], chunk[pa]
		return nil
	}

	// Distinct chunk indices resolve to distinct cached slices, so the two
	// element pointers never alias; loading b does not move a's backing array.
	ea, err := v.GetMut(ctx, a)
	if err != nil {
		return err
	}
	eb, err := v.GetMut(ctx, b)
	if err != nil {
		return err
	}
	*ea, *eb = *eb, *ea
	return nil
}

// SwapRemove removes the element at index and returns it. The removed
// element is replaced by the last element of the vector.
// Does not preserve ordering, but is amortized O(1).
func (v *Vector[T]) SwapRemove(ctx context.Context, index uint32) (T, error) {
	var zero T
	if v.length == 0 || index >= v.length {
		return zero, fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfBounds, index, v.length)
	}

	if err := v.Swap(ctx, index, v.length-1); err != nil {
		return zero, err
	}
	value, ok, err := v.Pop(ctx)
	if err != nil {
		return zero, err
	}
	if !ok {
		// Unreachable: length was checked above.
		return zero, fmt.Errorf("%w: pop after swap on non-empty vector", ErrInconsistentState)
	}
	return value, nil
}

// Extend appends all given values to the back of the vector.
func (v *Vector[T]) Extend(ctx context.Context, values ...T) error {
	for _, value := range values {
		if err := v.Push(ctx, value); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every chunk from storage and resets the length to 0.
// Equivalent in final state to repeated Pop, without materializing values.
func (v *Vector[T]) Clear(ctx context.Context) error {
	if v.length == 0 {
		return nil
	}

	last := chunkIndex(v.length-1, v.capacity)
	for c := uint32(0); ; c++ {
		v.store.Delete(c)
		if c == last {
			break
		}
	}

	v.logger.DebugContext(ctx, "cleared", "len", v.length, "chunks", last+1)
	v.length = 0
	return nil
}

// Flush writes all modified chunks to the medium.
//
// Call it to persist intermediate writes; Close flushes as well. Flushing
// is idempotent with respect to the final storage state but not atomic
// across chunks: an abort mid-flush can leave the medium partially
// updated, and the retained dirty set makes a retry rewrite everything.
func (v *Vector[T]) Flush(ctx context.Context) error {
	dirty := v.store.DirtyCount()
	if err := v.store.Flush(ctx); err != nil {
		v.logger.ErrorContext(ctx, "flush failed", "chunks", dirty, "error", err)
		return err
	}
	if dirty > 0 {
		v.logger.DebugContext(ctx, "flush completed", "chunks", dirty)
	}
	return nil
}

// Close flushes buffered mutations and ends the vector's mutation session.
//
// Go has no guaranteed finalizers, so Close must be called explicitly
// before a vector goes out of use; discarding an unflushed vector loses
// its buffered mutations.
func (v *Vector[T]) Close(ctx context.Context) error {
	return v.Flush(ctx)
}

// String returns a short debug representation. Chunk contents are not
// loaded.
func (v *Vector[T]) String() string {
	return fmt.Sprintf("Vector{len: %d, namespace: %q}", v.length, v.store.Namespace())
}
