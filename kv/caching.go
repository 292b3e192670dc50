package kv

import (
	"context"

	"github.com/hupe1980/chunkvec/internal/cache"
)

// CachingStore wraps a Store and adds a read-through byte cache.
//
// It is intended for remote mediums (object stores) where a vector is
// reopened repeatedly and re-reading unchanged chunks is wasteful. Writes
// go through to the inner store and update the cache; deletes invalidate.
type CachingStore struct {
	inner Store
	cache *cache.LRU
}

// NewCachingStore creates a new CachingStore.
// capacity is the cache size in bytes and defaults to 32MB if <= 0.
func NewCachingStore(inner Store, capacity int64) *CachingStore {
	if capacity <= 0 {
		capacity = 32 << 20
	}
	return &CachingStore{
		inner: inner,
		cache: cache.NewLRU(capacity),
	}
}

// Get returns the value stored under key, serving repeated reads from the cache.
// The returned slice must be treated as read-only.
func (s *CachingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if b, ok := s.cache.Get(key); ok {
		return b, nil
	}

	b, err := s.inner.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, b)
	return b, nil
}

// Put writes the value through to the inner store and refreshes the cache.
func (s *CachingStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.inner.Put(ctx, key, value); err != nil {
		// The write may or may not have landed; drop the stale entry.
		s.cache.Invalidate(func(k string) bool { return k == key })
		return err
	}

	copied := make([]byte, len(value))
	copy(copied, value)
	s.cache.Set(key, copied)
	return nil
}

// Delete removes the value from the inner store and invalidates the cache.
func (s *CachingStore) Delete(ctx context.Context, key string) error {
	s.cache.Invalidate(func(k string) bool { return k == key })
	return s.inner.Delete(ctx, key)
}

// List returns all keys with the given prefix, sorted.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns cache hit/miss counters.
func (s *CachingStore) Stats() (hits, misses int64) {
	return s.cache.Stats()
}

var _ Store = (*CachingStore)(nil)
