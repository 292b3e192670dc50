package kv

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitStore wraps a Store and throttles operations with a token bucket.
//
// Useful in front of remote mediums with request-rate quotas: a flush fans
// out many small puts and deletes, which can otherwise trip provider limits.
type RateLimitStore struct {
	inner   Store
	limiter *rate.Limiter
}

// NewRateLimitStore creates a RateLimitStore allowing opsPerSec operations
// per second with the given burst.
func NewRateLimitStore(inner Store, opsPerSec float64, burst int) *RateLimitStore {
	return &RateLimitStore{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(opsPerSec), burst),
	}
}

// Get waits for the limiter, then reads from the inner store.
func (s *RateLimitStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.Get(ctx, key)
}

// Put waits for the limiter, then writes to the inner store.
func (s *RateLimitStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.inner.Put(ctx, key, value)
}

// Delete waits for the limiter, then deletes from the inner store.
func (s *RateLimitStore) Delete(ctx context.Context, key string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	return s.inner.Delete(ctx, key)
}

// List waits for the limiter, then lists from the inner store.
func (s *RateLimitStore) List(ctx context.Context, prefix string) ([]string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return s.inner.List(ctx, prefix)
}

var _ Store = (*RateLimitStore)(nil)
