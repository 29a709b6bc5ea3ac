package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/hupe1980/recgo/internal/cache"
	"golang.org/x/sync/singleflight"
)

// Cache keeps recently used records of a source collection in a bounded,
// sharded LRU.
//
// Records handed out by Get are pinned until released and are never evicted
// or overwritten while pinned. Eviction is lazy: released entries stay
// resident until an insert into the same shard needs their slot.
type Cache struct {
	id     uuid.UUID
	source Collection
	shards *cache.Sharded
	loads  singleflight.Group

	exhausted atomic.Int64

	closed  atomic.Bool
	opts    options
	logger  *slog.Logger
	metrics MetricsObserver
}

// NewCache wraps source with a cache of cfg.Capacity entries split over
// cfg.Concurrency shards. The shard of an ordinal is chosen by hashing it.
func NewCache(source Collection, cfg Config, optFns ...Option) (*Cache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()
	if cfg.Capacity == 0 {
		return nil, fmt.Errorf("%w: cache capacity must be positive", ErrInvalidConfig)
	}

	o := applyOptions(optFns)
	shards := min(cfg.Concurrency, cfg.Capacity)

	c := &Cache{
		id:      uuid.New(),
		source:  source,
		shards:  cache.NewSharded(int(cfg.Capacity), int(shards), o.rc),
		opts:    o,
		logger:  o.logger,
		metrics: o.metrics,
	}
	c.logger.Debug("collection created",
		"id", c.id, "kind", KindCache, "source", source.Kind(), "count", source.Count(),
		"capacity", c.shards.Capacity(), "shards", c.shards.NumShards())
	return c, nil
}

// Get returns record i from the cache, loading it from the source on a miss.
// Concurrent misses for the same ordinal load it once.
func (c *Cache) Get(ctx context.Context, i uint32, item *Item) error {
	item.Release()
	err := c.get(ctx, i, item)
	c.metrics.OnGet(KindCache, err)
	return err
}

func (c *Cache) get(ctx context.Context, i uint32, item *Item) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if err := checkOrdinal(i, c.source.Count()); err != nil {
		return err
	}

	if e, ok := c.shards.Acquire(i); ok {
		c.metrics.OnCacheHit()
		c.fill(item, i, e)
		return nil
	}
	c.metrics.OnCacheMiss()

	// The shared load is detached from any one caller's cancellation. Each
	// caller waits on its own ctx.
	ch := c.loads.DoChan(strconv.FormatUint(uint64(i), 10), func() (any, error) {
		return c.load(context.WithoutCancel(ctx), i)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return ctx.Err()
	}
	if res.Err != nil {
		return res.Err
	}

	// Every caller inserts its own pin. The first insert copies the loaded
	// bytes into a cache buffer; later ones pin the resident entry.
	e, err := c.shards.Insert(i, res.Val.([]byte))
	if err != nil {
		if errors.Is(err, cache.ErrExhausted) {
			c.exhausted.Add(1)
			c.metrics.OnCacheExhausted()
			c.logger.Warn("cache shard exhausted", "id", c.id, "ordinal", i)
			return fmt.Errorf("%w: ordinal %d", ErrCacheExhausted, i)
		}
		return err
	}
	c.fill(item, i, e)
	return nil
}

// load reads record i from the source into a private copy, so the source
// item can be released before the record is inserted.
func (c *Cache) load(ctx context.Context, i uint32) ([]byte, error) {
	var src Item
	if err := c.source.Get(ctx, i, &src); err != nil {
		return nil, err
	}
	defer c.source.Release(&src)

	data := make([]byte, len(src.Data))
	copy(data, src.Data)
	return data, nil
}

func (c *Cache) fill(item *Item, i uint32, e *cache.Entry) {
	item.Data = e.Bytes()
	item.entry = e
	item.owner = c
	item.ordinal = i
}

// Release unpins the item's entry. The entry stays resident.
func (c *Cache) Release(item *Item) {
	if item.entry != nil {
		c.shards.Release(item.entry)
	}
	item.reset()
}

func (c *Cache) Count() uint32       { return c.source.Count() }
func (c *Cache) ElementSize() uint32 { return c.source.ElementSize() }
func (c *Cache) Length() uint32      { return c.source.Length() }
func (c *Cache) Kind() Kind          { return KindCache }

// Source returns the wrapped collection.
func (c *Cache) Source() Collection { return c.source }

func (c *Cache) State() State {
	stats := c.shards.Stats()
	src := c.source.State()
	return State{
		ID:          c.id,
		Kind:        KindCache,
		Count:       c.source.Count(),
		ElementSize: c.source.ElementSize(),
		Length:      c.source.Length(),
		LoadedBytes: stats.Bytes,
		Hits:        stats.Hits,
		Misses:      stats.Misses,
		Evictions:   stats.Evictions,
		Entries:     stats.Entries,
		Pinned:      stats.Pinned,
		Capacity:    c.shards.Capacity(),
		Shards:      c.shards.NumShards(),
		Resident:    c.shards.Resident(),
		Source:      &src,
	}
}

// Exhausted returns how many inserts failed because a shard was fully pinned.
func (c *Cache) Exhausted() int64 { return c.exhausted.Load() }

// Close frees every entry and closes the source collection when owned.
func (c *Cache) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	stats := c.shards.Stats()
	if stats.Pinned > 0 {
		c.logger.Warn("cache closed with pinned entries", "id", c.id, "pinned", stats.Pinned)
	}
	c.shards.Clear()
	c.logger.Debug("collection closed", "id", c.id, "kind", KindCache,
		"hits", stats.Hits, "misses", stats.Misses, "evictions", stats.Evictions)
	if c.opts.ownsSource {
		return c.source.Close()
	}
	return nil
}
