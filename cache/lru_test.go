package cache_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/KilimcininKorOglu/bptree/cache"
)

func TestLRUEvictsOldestOnOverflow(t *testing.T) {
	c := cache.New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	_, ok := c.Get("a")
	require.False(t, ok, "a should have been evicted")

	v, ok := c.Get("b")
	require.True(t, ok)
	require.Equal(t, 2, v)

	v, ok = c.Get("c")
	require.True(t, ok)
	require.Equal(t, 3, v)
}

func TestLRUGetRefreshesRecency(t *testing.T) {
	c := cache.New[string, int](2)

	c.Put("a", 1)
	c.Put("b", 2)
	c.Get("a") // a is now most recently used
	c.Put("c", 3)

	_, ok := c.Get("b")
	require.False(t, ok, "b should have been evicted instead of a")

	_, ok = c.Get("a")
	require.True(t, ok)
}

func TestLRUEvictAndClear(t *testing.T) {
	c := cache.New[string, int](4)
	c.Put("a", 1)
	c.Put("b", 2)

	c.Evict("a")
	require.False(t, c.Contains("a"))
	require.True(t, c.Contains("b"))

	c.Clear()
	require.Equal(t, 0, c.Len())
}
