package collection

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"
)

// Warm loads the given ordinals into the cache in parallel. A nil selection
// warms ordinals from 0 up to the cache capacity.
//
// Workers are bounded by the resource controller's background slots, or by
// the shard count without a controller. Ordinals that cannot be cached
// because a shard is fully pinned are skipped.
func (c *Cache) Warm(ctx context.Context, ordinals *roaring.Bitmap) (int, error) {
	if ordinals == nil {
		n := min(uint64(c.Count()), uint64(c.shards.Capacity()))
		ordinals = roaring.New()
		ordinals.AddRange(0, n)
	}

	workers := c.shards.NumShards()
	if c.opts.rc != nil {
		workers = max(c.opts.rc.MaxBackgroundWorkers(), 1)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var warmed atomic.Int64
	it := ordinals.Iterator()
	for it.HasNext() {
		i := it.Next()
		if i >= c.Count() {
			break
		}
		g.Go(func() error {
			if err := c.opts.rc.AcquireBackground(ctx); err != nil {
				return err
			}
			defer c.opts.rc.ReleaseBackground()

			var item Item
			err := c.Get(ctx, i, &item)
			if errors.Is(err, ErrCacheExhausted) {
				return nil
			}
			if err != nil {
				return err
			}
			c.Release(&item)
			warmed.Add(1)
			return nil
		})
	}

	err := g.Wait()
	c.logger.Debug("cache warmed", "id", c.id, "requested", ordinals.GetCardinality(), "warmed", warmed.Load())
	return int(warmed.Load()), err
}
