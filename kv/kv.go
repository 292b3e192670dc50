package kv

import (
	"context"
	"os"
)

// ErrNotFound is returned when a key does not exist.
//
// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
// The default maps to `os.ErrNotExist`.
var ErrNotFound = os.ErrNotExist

// Store is a persistent key-value medium. Values are read and written as
// whole units; there is no partial or streaming access.
//
// Implementations must be safe for concurrent use: the chunk store fans
// flushes out over multiple goroutines.
type Store interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Put writes the value under key atomically, replacing any previous value.
	Put(ctx context.Context, key string, value []byte) error
	// Delete removes the value under key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// List returns all keys with the given prefix, sorted.
	List(ctx context.Context, prefix string) ([]string, error)
}
