// Package chunkstore implements the lazy, write-back chunk cache that sits
// between logical chunk indices and the persistent key-value medium.
//
// During a Store's lifetime the medium is read at most once per index and
// written at most once per index per mutation session: all reads are cached
// (including negative results) and all writes are buffered until Flush.
package chunkstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/chunkvec/codec"
	"github.com/hupe1980/chunkvec/kv"
)

// flushConcurrency bounds the fan-out of a single flush. Remote mediums
// benefit from parallel puts; local ones are unharmed.
const flushConcurrency = 16

type slot[V any] struct {
	value   V
	present bool
}

// Store is a chunk-indexed, lazily-loaded view over a kv.Store.
//
// Not safe for concurrent use: it mirrors the single-writer execution model
// of the vector that owns it.
type Store[V any] struct {
	namespace string
	medium    kv.Store
	codec     codec.Codec

	// cache holds every slot touched this session. A cached slot with
	// present=false is a negative result or a pending delete.
	cache map[uint32]slot[V]
	// dirty tracks the indices whose cached state differs from the medium.
	dirty *roaring.Bitmap

	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a Store bound to the given namespace. All medium keys derive
// deterministically from the namespace and a chunk index, so distinct
// namespaces never collide.
// If c is nil, codec.Default is used.
func New[V any](namespace string, medium kv.Store, c codec.Codec) *Store[V] {
	if c == nil {
		c = codec.Default
	}
	return &Store[V]{
		namespace: namespace,
		medium:    medium,
		codec:     c,
		cache:     make(map[uint32]slot[V]),
		dirty:     roaring.New(),
	}
}

// Namespace returns the namespace the store is bound to.
func (s *Store[V]) Namespace() string {
	return s.namespace
}

// Key returns the medium key for the given chunk index.
// Keys sort lexicographically in index order.
func (s *Store[V]) Key(index uint32) string {
	return fmt.Sprintf("%s/%08x", s.namespace, index)
}

func (s *Store[V]) load(ctx context.Context, index uint32) (slot[V], error) {
	if sl, ok := s.cache[index]; ok {
		s.hits.Add(1)
		return sl, nil
	}
	s.misses.Add(1)

	data, err := s.medium.Get(ctx, s.Key(index))
	if errors.Is(err, kv.ErrNotFound) {
		// Cache the negative result so the medium is not asked again.
		sl := slot[V]{}
		s.cache[index] = sl
		return sl, nil
	}
	if err != nil {
		return slot[V]{}, err
	}

	var value V
	if err := s.codec.Unmarshal(data, &value); err != nil {
		return slot[V]{}, fmt.Errorf("chunkstore: decode %s: %w", s.Key(index), err)
	}

	sl := slot[V]{value: value, present: true}
	s.cache[index] = sl
	return sl, nil
}

// Get returns the value at index, loading it from the medium on first access.
// ok is false if no value exists at index.
func (s *Store[V]) Get(ctx context.Context, index uint32) (value V, ok bool, err error) {
	sl, err := s.load(ctx, index)
	if err != nil {
		var zero V
		return zero, false, err
	}
	return sl.value, sl.present, nil
}

// GetMut is Get plus marking the index dirty, so that in-place mutations of
// the returned value are persisted on the next flush.
func (s *Store[V]) GetMut(ctx context.Context, index uint32) (value V, ok bool, err error) {
	sl, err := s.load(ctx, index)
	if err != nil {
		var zero V
		return zero, false, err
	}
	if sl.present {
		s.dirty.Add(index)
	}
	return sl.value, sl.present, nil
}

// Set caches the value at index and marks it dirty. No medium I/O happens
// until Flush.
func (s *Store[V]) Set(index uint32, value V) {
	s.cache[index] = slot[V]{value: value, present: true}
	s.dirty.Add(index)
}

// Delete caches an absence marker at index and marks it dirty; the medium
// key is removed on the next flush.
func (s *Store[V]) Delete(index uint32) {
	s.cache[index] = slot[V]{}
	s.dirty.Add(index)
}

// Remove returns the value at index (loading it if needed) and deletes it.
func (s *Store[V]) Remove(ctx context.Context, index uint32) (value V, ok bool, err error) {
	sl, err := s.load(ctx, index)
	if err != nil {
		var zero V
		return zero, false, err
	}
	s.Delete(index)
	return sl.value, sl.present, nil
}

// DirtyCount returns the number of indices pending flush.
func (s *Store[V]) DirtyCount() int {
	return int(s.dirty.GetCardinality()) //nolint:gosec
}

// Flush persists every dirty slot to the medium: a put for present values,
// a delete for absence markers. Safe to call when nothing is dirty.
//
// Flush is not atomic across indices. On error the dirty set is retained in
// full, so a retry re-writes everything; puts and deletes are idempotent,
// which makes the retry safe.
func (s *Store[V]) Flush(ctx context.Context) error {
	if s.dirty.IsEmpty() {
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(flushConcurrency)

	for _, index := range s.dirty.ToArray() {
		index := index
		sl := s.cache[index]
		g.Go(func() error {
			if !sl.present {
				return s.medium.Delete(gctx, s.Key(index))
			}
			data, err := s.codec.Marshal(sl.value)
			if err != nil {
				return fmt.Errorf("chunkstore: encode %s: %w", s.Key(index), err)
			}
			return s.medium.Put(gctx, s.Key(index), data)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	s.dirty.Clear()
	return nil
}

// Stats returns cache hit/miss counters.
func (s *Store[V]) Stats() (hits, misses int64) {
	return s.hits.Load(), s.misses.Load()
}
