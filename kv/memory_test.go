package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "a/1", []byte("one")))
	require.NoError(t, store.Put(ctx, "a/2", []byte("two")))
	require.NoError(t, store.Put(ctx, "b/1", []byte("three")))

	value, err := store.Get(ctx, "a/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), value)

	// Overwrite.
	require.NoError(t, store.Put(ctx, "a/1", []byte("uno")))
	value, err = store.Get(ctx, "a/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), value)

	keys, err := store.List(ctx, "a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2"}, keys)

	keys, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"a/1", "a/2", "b/1"}, keys)

	require.NoError(t, store.Delete(ctx, "a/1"))
	_, err = store.Get(ctx, "a/1")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, store.Delete(ctx, "a/1"))
}

func TestMemoryStoreIsolation(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := []byte("data")
	require.NoError(t, store.Put(ctx, "k", original))
	original[0] = 'X'

	value, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), value)

	// Mutating the returned slice must not leak into the store.
	value[0] = 'Y'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("data"), again)
}
