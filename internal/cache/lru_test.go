package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUSetGet(t *testing.T) {
	c := NewLRU(100)

	c.Set("a", []byte("one"))
	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("one"), value)

	_, ok = c.Get("b")
	assert.False(t, ok)

	hits, misses := c.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLRUEviction(t *testing.T) {
	c := NewLRU(10)

	c.Set("a", []byte("aaaa"))
	c.Set("b", []byte("bbbb"))

	// Touch "a" so "b" is the eviction candidate.
	_, ok := c.Get("a")
	require.True(t, ok)

	c.Set("c", []byte("cccc"))

	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("b")
	assert.False(t, ok)
	_, ok = c.Get("c")
	assert.True(t, ok)
	assert.LessOrEqual(t, c.Size(), int64(10))
}

func TestLRUUpdateAdjustsSize(t *testing.T) {
	c := NewLRU(10)

	c.Set("a", []byte("aaaa"))
	c.Set("a", []byte("aa"))
	assert.Equal(t, int64(2), c.Size())

	value, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, []byte("aa"), value)
}

func TestLRUOversizedItem(t *testing.T) {
	c := NewLRU(4)

	c.Set("big", []byte(strings.Repeat("x", 5)))
	_, ok := c.Get("big")
	assert.False(t, ok)
	assert.Equal(t, int64(0), c.Size())
}

func TestLRUInvalidate(t *testing.T) {
	c := NewLRU(100)

	c.Set("ns/1", []byte("one"))
	c.Set("ns/2", []byte("two"))
	c.Set("other/1", []byte("three"))

	c.Invalidate(func(key string) bool { return strings.HasPrefix(key, "ns/") })

	_, ok := c.Get("ns/1")
	assert.False(t, ok)
	_, ok = c.Get("ns/2")
	assert.False(t, ok)
	_, ok = c.Get("other/1")
	assert.True(t, ok)
	assert.Equal(t, int64(5), c.Size())
}
