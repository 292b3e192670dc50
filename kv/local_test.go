package kv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(t.TempDir())

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "ns/00000000", []byte("one")))
	require.NoError(t, store.Put(ctx, "ns/00000001", []byte("two")))
	require.NoError(t, store.Put(ctx, "other/00000000", []byte("three")))

	value, err := store.Get(ctx, "ns/00000000")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), value)

	require.NoError(t, store.Put(ctx, "ns/00000000", []byte("uno")))
	value, err = store.Get(ctx, "ns/00000000")
	require.NoError(t, err)
	assert.Equal(t, []byte("uno"), value)

	keys, err := store.List(ctx, "ns/")
	require.NoError(t, err)
	assert.Equal(t, []string{"ns/00000000", "ns/00000001"}, keys)

	require.NoError(t, store.Delete(ctx, "ns/00000001"))
	require.NoError(t, store.Delete(ctx, "ns/00000001"))
	_, err = store.Get(ctx, "ns/00000001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStoreNoTempLeftovers(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store := NewLocalStore(root)

	require.NoError(t, store.Put(ctx, "ns/k", []byte("v")))

	entries, err := os.ReadDir(filepath.Join(root, "ns"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "k", entries[0].Name())
}

func TestLocalStoreListMissingRoot(t *testing.T) {
	ctx := context.Background()
	store := NewLocalStore(filepath.Join(t.TempDir(), "nope"))

	keys, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}
