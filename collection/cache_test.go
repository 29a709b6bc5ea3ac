package collection_test

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/recgo/collection"
	"github.com/hupe1980/recgo/resource"
	"github.com/hupe1980/recgo/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingSource wraps a collection, counts Gets and can hold them at a gate.
type countingSource struct {
	collection.Collection
	gets   atomic.Int64
	gate   chan struct{}
	closed atomic.Bool
	fail   error
}

func (s *countingSource) Get(ctx context.Context, i uint32, item *collection.Item) error {
	s.gets.Add(1)
	if s.gate != nil {
		<-s.gate
	}
	if s.fail != nil {
		item.Release()
		return s.fail
	}
	return s.Collection.Get(ctx, i, item)
}

func (s *countingSource) Close() error {
	s.closed.Store(true)
	return s.Collection.Close()
}

func newCountingSource(t *testing.T, fx fixture) *countingSource {
	t.Helper()
	m, err := collection.NewMemory(fx.header, fx.data, fx.opts...)
	require.NoError(t, err)
	return &countingSource{Collection: m}
}

func TestCache_HitsAndMisses(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 20, 8)
	src := newCountingSource(t, fx)

	c, err := collection.NewCache(src, collection.Config{Capacity: 20, Concurrency: 1})
	require.NoError(t, err)
	defer c.Close()

	var item collection.Item
	for range 3 {
		for i := range c.Count() {
			require.NoError(t, c.Get(ctx, i, &item))
			require.Equal(t, fx.records[i], item.Data)
			c.Release(&item)
		}
	}

	st := c.State()
	assert.Equal(t, int64(20), src.gets.Load(), "each record is loaded once")
	assert.Equal(t, int64(20), st.Misses)
	assert.Equal(t, int64(40), st.Hits)
	assert.InDelta(t, 2.0/3.0, st.HitRatio(), 1e-9)
	assert.Equal(t, 20, st.Entries)
	assert.Equal(t, uint64(20), st.Resident.GetCardinality())
	assert.Zero(t, st.Pinned)
}

func TestCache_Transparent(t *testing.T) {
	ctx := context.Background()
	fx := variableFixture(t, 200, 30, false)

	m, err := collection.NewMemory(fx.header, fx.data, fx.opts...)
	require.NoError(t, err)
	c, err := collection.NewCache(m, collection.Config{Capacity: 16, Concurrency: 4})
	require.NoError(t, err)
	defer c.Close()

	rng := testutil.NewRNG(5)
	held := make([]collection.Item, 3)
	for step, i := range rng.ZipfOrdinals(5000, c.Count(), 1.3) {
		it := &held[step%len(held)]
		require.NoError(t, c.Get(ctx, i, it))
		require.Equal(t, fx.records[i], it.Data, "step %d ordinal %d", step, i)
	}
	for i := range held {
		c.Release(&held[i])
	}

	st := c.State()
	assert.Positive(t, st.Hits)
	assert.Positive(t, st.Evictions)
	assert.Zero(t, st.Pinned)
	assert.LessOrEqual(t, st.Entries, st.Capacity)
}

func TestCache_PinnedEntriesSurviveChurn(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 1000, 32)

	f, err := collection.NewFile(ctx, fx.header, fx.source(), collection.WithConcurrency(4))
	require.NoError(t, err)
	c, err := collection.NewCache(f, collection.Config{Capacity: 64, Concurrency: 4}, collection.WithOwnedSource(true))
	require.NoError(t, err)
	defer c.Close()

	// Pin a handful of records and snapshot them.
	pinned := []uint32{0, 1, 2, 3}
	held := make([]collection.Item, len(pinned))
	for k, i := range pinned {
		require.NoError(t, c.Get(ctx, i, &held[k]))
	}

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := testutil.NewRNG(seed)
			var item collection.Item
			for _, i := range rng.Ordinals(2000, c.Count()) {
				if i < 4 {
					continue
				}
				err := c.Get(ctx, i, &item)
				if errors.Is(err, collection.ErrCacheExhausted) {
					continue
				}
				if !assert.NoError(t, err) {
					return
				}
				if !bytes.Equal(fx.records[i], item.Data) {
					t.Errorf("ordinal %d corrupted", i)
				}
				c.Release(&item)
			}
		}(int64(g))
	}
	wg.Wait()

	for k, i := range pinned {
		assert.Equal(t, fx.records[i], held[k].Data, "pinned ordinal %d was overwritten", i)
		assert.True(t, c.State().Resident.Contains(i))
	}
	assert.Equal(t, len(pinned), c.State().Pinned)

	for k := range held {
		c.Release(&held[k])
	}
	assert.Zero(t, c.State().Pinned)
	assert.Positive(t, c.State().Evictions)
}

func TestCache_Exhausted(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 10, 4)

	m, err := collection.NewMemory(fx.header, fx.data)
	require.NoError(t, err)
	c, err := collection.NewCache(m, collection.Config{Capacity: 2, Concurrency: 1})
	require.NoError(t, err)
	defer c.Close()

	var a, b, x collection.Item
	require.NoError(t, c.Get(ctx, 0, &a))
	require.NoError(t, c.Get(ctx, 1, &b))

	err = c.Get(ctx, 2, &x)
	require.ErrorIs(t, err, collection.ErrCacheExhausted)
	assert.True(t, x.Empty())
	assert.Equal(t, int64(1), c.Exhausted())

	// The pinned records are intact and a hit still works.
	assert.Equal(t, fx.records[0], a.Data)
	require.NoError(t, c.Get(ctx, 1, &x))
	assert.Equal(t, fx.records[1], x.Data)
	c.Release(&x)

	c.Release(&a)
	require.NoError(t, c.Get(ctx, 2, &x))
	assert.Equal(t, fx.records[2], x.Data)
	c.Release(&x)
	c.Release(&b)

	assert.Zero(t, c.State().Pinned)
}

func TestCache_BalancedReferences(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 50, 8)

	m, err := collection.NewMemory(fx.header, fx.data)
	require.NoError(t, err)
	c, err := collection.NewCache(m, collection.Config{Capacity: 50, Concurrency: 5})
	require.NoError(t, err)
	defer c.Close()

	var wg sync.WaitGroup
	for g := range 8 {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := testutil.NewRNG(seed)
			items := make([]collection.Item, 3)
			for step, i := range rng.Ordinals(3000, c.Count()) {
				it := &items[step%3]
				err := c.Get(ctx, i, it)
				if errors.Is(err, collection.ErrCacheExhausted) {
					continue
				}
				if err != nil {
					t.Error(err)
					return
				}
			}
			for k := range items {
				c.Release(&items[k])
			}
		}(int64(g))
	}
	wg.Wait()

	assert.Zero(t, c.State().Pinned)
}

func TestCache_CoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 10, 8)
	src := newCountingSource(t, fx)
	src.gate = make(chan struct{})

	c, err := collection.NewCache(src, collection.Config{Capacity: 10, Concurrency: 2})
	require.NoError(t, err)
	defer c.Close()

	const callers = 8
	var wg sync.WaitGroup
	results := make([][]byte, callers)
	for g := range callers {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			var item collection.Item
			if err := c.Get(ctx, 7, &item); err != nil {
				t.Error(err)
				return
			}
			results[g] = append([]byte(nil), item.Data...)
			c.Release(&item)
		}(g)
	}

	// Let every caller reach the load before it completes.
	time.Sleep(50 * time.Millisecond)
	close(src.gate)
	wg.Wait()

	assert.Equal(t, int64(1), src.gets.Load())
	for _, r := range results {
		assert.Equal(t, fx.records[7], r)
	}
	assert.Zero(t, c.State().Pinned)
}

func TestCache_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	fx := fixedFixture(t, 10, 8)
	src := newCountingSource(t, fx)
	src.gate = make(chan struct{})

	c, err := collection.NewCache(src, collection.Config{Capacity: 10, Concurrency: 2})
	require.NoError(t, err)
	defer c.Close()

	ctxA, cancelA := context.WithCancel(context.Background())
	defer cancelA()

	errA := make(chan error, 1)
	go func() {
		var item collection.Item
		err := c.Get(ctxA, 5, &item)
		c.Release(&item)
		errA <- err
	}()
	require.Eventually(t, func() bool { return src.gets.Load() == 1 }, time.Second, time.Millisecond)

	type result struct {
		data []byte
		err  error
	}
	resB := make(chan result, 1)
	go func() {
		var item collection.Item
		err := c.Get(context.Background(), 5, &item)
		data := append([]byte(nil), item.Data...)
		c.Release(&item)
		resB <- result{data, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("canceled caller did not return")
	}

	close(src.gate)
	b := <-resB
	require.NoError(t, b.err)
	assert.Equal(t, fx.records[5], b.data)
	assert.Equal(t, int64(1), src.gets.Load())
	assert.Zero(t, c.State().Pinned)
}

func TestCache_ResidentEntriesBoundedByCapacity(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 200, 8)
	m, err := collection.NewMemory(fx.header, fx.data)
	require.NoError(t, err)

	c, err := collection.NewCache(m, collection.Config{Capacity: 10, Concurrency: 4})
	require.NoError(t, err)
	defer c.Close()

	var item collection.Item
	for i := range c.Count() {
		require.NoError(t, c.Get(ctx, i, &item))
		c.Release(&item)
	}

	st := c.State()
	assert.Equal(t, 10, st.Capacity)
	assert.Equal(t, 4, st.Shards)
	assert.LessOrEqual(t, st.Entries, 10)
}

func TestCache_SourceErrorsPropagate(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 10, 8)
	src := newCountingSource(t, fx)

	c, err := collection.NewCache(src, collection.Config{Capacity: 4, Concurrency: 1})
	require.NoError(t, err)
	defer c.Close()

	boom := &collection.IOError{Op: "read", Offset: 42, Err: errors.New("gone")}
	src.fail = boom

	var item collection.Item
	err = c.Get(ctx, 3, &item)
	assert.ErrorIs(t, err, boom)
	assert.True(t, item.Empty())
	assert.False(t, c.State().Resident.Contains(3), "failed loads are not cached")

	src.fail = nil
	require.NoError(t, c.Get(ctx, 3, &item))
	assert.Equal(t, fx.records[3], item.Data)
	c.Release(&item)
}

func TestCache_Close(t *testing.T) {
	fx := fixedFixture(t, 10, 8)
	rc := resource.NewController(resource.Config{MemoryLimitBytes: 1 << 20})

	t.Run("owned", func(t *testing.T) {
		src := newCountingSource(t, fx)
		c, err := collection.NewCache(src, collection.Config{Capacity: 4, Concurrency: 1},
			collection.WithOwnedSource(true), collection.WithResourceController(rc))
		require.NoError(t, err)

		_ = readAll(t, c)
		assert.Positive(t, rc.MemoryUsage())

		require.NoError(t, c.Close())
		assert.True(t, src.closed.Load())
		assert.Zero(t, rc.MemoryUsage())
	})

	t.Run("borrowed", func(t *testing.T) {
		src := newCountingSource(t, fx)
		c, err := collection.NewCache(src, collection.Config{Capacity: 4, Concurrency: 1})
		require.NoError(t, err)
		require.NoError(t, c.Close())
		assert.False(t, src.closed.Load())
	})
}

func TestCache_InvalidConfig(t *testing.T) {
	fx := fixedFixture(t, 10, 8)
	m, err := collection.NewMemory(fx.header, fx.data)
	require.NoError(t, err)

	_, err = collection.NewCache(m, collection.Config{Concurrency: 2})
	assert.ErrorIs(t, err, collection.ErrInvalidConfig)

	// More shards than entries collapse to one entry per shard.
	c, err := collection.NewCache(m, collection.Config{Capacity: 2, Concurrency: 8})
	require.NoError(t, err)
	assert.Equal(t, 2, c.State().Shards)
}

func TestCache_Warm(t *testing.T) {
	ctx := context.Background()
	fx := fixedFixture(t, 100, 8)
	src := newCountingSource(t, fx)

	rc := resource.NewController(resource.Config{MaxBackgroundWorkers: 3})
	c, err := collection.NewCache(src, collection.Config{Capacity: 32, Concurrency: 4},
		collection.WithResourceController(rc))
	require.NoError(t, err)
	defer c.Close()

	sel := roaring.BitmapOf(1, 5, 9, 50, 99, 500)
	n, err := c.Warm(ctx, sel)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	resident := c.State().Resident
	for _, i := range []uint32{1, 5, 9, 50, 99} {
		assert.True(t, resident.Contains(i), "ordinal %d", i)
	}

	before := src.gets.Load()
	var item collection.Item
	require.NoError(t, c.Get(ctx, 50, &item))
	c.Release(&item)
	assert.Equal(t, before, src.gets.Load(), "warmed ordinals are hits")

	// A nil selection fills the cache from ordinal 0.
	n, err = c.Warm(ctx, nil)
	require.NoError(t, err)
	assert.Positive(t, n)
	assert.LessOrEqual(t, c.State().Entries, c.State().Capacity)
	assert.Zero(t, c.State().Pinned)
}
