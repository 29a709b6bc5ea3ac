package cache

import (
	"testing"

	"github.com/hupe1980/recgo/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func insertReleased(t *testing.T, c *LRU, key uint32, data []byte) {
	t.Helper()
	e, err := c.Insert(key, data)
	require.NoError(t, err)
	c.Release(e)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU(2, nil)

	insertReleased(t, c, 1, []byte("one"))
	insertReleased(t, c, 2, []byte("two"))

	// Touch 1 so that 2 becomes the eviction candidate.
	e, ok := c.Acquire(1)
	require.True(t, ok)
	c.Release(e)

	insertReleased(t, c, 3, []byte("three"))

	_, ok = c.Acquire(2)
	assert.False(t, ok, "2 should have been evicted")

	e, ok = c.Acquire(1)
	require.True(t, ok)
	assert.Equal(t, "one", string(e.Bytes()))
	c.Release(e)

	assert.Equal(t, int64(1), c.Stats().Evictions)
}

func TestLRU_PinnedEntriesSurvive(t *testing.T) {
	c := NewLRU(2, nil)

	pinned, err := c.Insert(1, []byte("pinned"))
	require.NoError(t, err)
	insertReleased(t, c, 2, []byte("two"))

	// 1 is older but pinned, so 2 must go.
	insertReleased(t, c, 3, []byte("three"))

	assert.Equal(t, "pinned", string(pinned.Bytes()))
	_, ok := c.Acquire(2)
	assert.False(t, ok)

	c.Release(pinned)
}

func TestLRU_Exhausted(t *testing.T) {
	c := NewLRU(2, nil)

	a, err := c.Insert(1, []byte("a"))
	require.NoError(t, err)
	b, err := c.Insert(2, []byte("b"))
	require.NoError(t, err)

	_, err = c.Insert(3, []byte("c"))
	assert.ErrorIs(t, err, ErrExhausted)

	// Existing entries are untouched by the failed insert.
	assert.Equal(t, "a", string(a.Bytes()))
	assert.Equal(t, "b", string(b.Bytes()))

	c.Release(a)
	e, err := c.Insert(3, []byte("c"))
	require.NoError(t, err)
	c.Release(e)
	c.Release(b)
}

func TestLRU_InsertExistingPins(t *testing.T) {
	c := NewLRU(4, nil)

	first, err := c.Insert(7, []byte("seven"))
	require.NoError(t, err)
	second, err := c.Insert(7, []byte("ignored"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, int32(2), first.Refs())
	assert.Equal(t, "seven", string(second.Bytes()))

	c.Release(first)
	c.Release(second)
	assert.Equal(t, 0, c.Stats().Pinned)
}

func TestLRU_RecyclesBuffers(t *testing.T) {
	c := NewLRU(1, nil)

	e, err := c.Insert(1, make([]byte, 64))
	require.NoError(t, err)
	buf := e.Bytes()
	c.Release(e)

	e, err = c.Insert(2, []byte("short"))
	require.NoError(t, err)
	defer c.Release(e)

	assert.Equal(t, "short", string(e.Bytes()))
	assert.Same(t, &buf[0], &e.Bytes()[0], "evicted buffer should be reused")
}

func TestLRU_ResourceController(t *testing.T) {
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 100})
	c := NewLRU(10, rc)

	insertReleased(t, c, 1, make([]byte, 60))
	assert.Equal(t, int64(60), rc.MemoryUsage())

	_, err := c.Insert(2, make([]byte, 60))
	assert.ErrorIs(t, err, resource.ErrMemoryLimitExceeded)
	assert.Equal(t, int64(60), rc.MemoryUsage())

	c.Clear()
	assert.Equal(t, int64(0), rc.MemoryUsage())
	assert.Equal(t, 0, c.Len())
}

func TestLRU_DoubleReleasePanics(t *testing.T) {
	c := NewLRU(1, nil)
	e, err := c.Insert(1, []byte("x"))
	require.NoError(t, err)
	c.Release(e)

	assert.Panics(t, func() { c.Release(e) })
}
