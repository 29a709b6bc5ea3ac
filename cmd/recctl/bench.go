package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/testutil"
	"golang.org/x/sync/errgroup"
)

// bench runs N random gets spread over Workers goroutines.
func bench(ctx context.Context, c Config, w io.Writer) error {
	if c.Workers < 1 {
		return fmt.Errorf("invalid worker count %d", c.Workers)
	}

	metrics := &recgo.BasicMetricsCollector{}
	f, coll, err := openCollection(ctx, c, recgo.WithMetricsCollector(metrics))
	if err != nil {
		return err
	}
	defer f.Close()

	count := coll.Count()
	if count == 0 {
		return errors.New("collection is empty")
	}

	perWorker := c.N / c.Workers
	plans := make([][]uint32, c.Workers)
	for i := range plans {
		rng := testutil.NewRNG(c.Seed + int64(i))
		if c.Zipf > 1 {
			plans[i] = rng.ZipfOrdinals(perWorker, count, c.Zipf)
		} else {
			plans[i] = rng.Ordinals(perWorker, count)
		}
	}

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, plan := range plans {
		g.Go(func() error {
			var item recgo.Item
			for _, i := range plan {
				if err := coll.Get(gctx, i, &item); err != nil {
					if errors.Is(err, recgo.ErrCacheExhausted) {
						continue
					}
					return err
				}
				coll.Release(&item)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	elapsed := time.Since(start)

	total := perWorker * c.Workers
	stats := metrics.GetStats()
	s := coll.State()

	fmt.Fprintf(w, "kind=%s count=%d gets=%d workers=%d elapsed=%s ops/s=%.0f\n",
		s.Kind, count, total, c.Workers, elapsed.Round(time.Millisecond), float64(total)/elapsed.Seconds())
	fmt.Fprintf(w, "reads=%d read_bytes=%d read_avg=%s\n",
		stats.ReadCount, stats.ReadBytes, time.Duration(stats.ReadAvgNanos))
	if s.Capacity > 0 {
		fmt.Fprintf(w, "hits=%d misses=%d hit_ratio=%.3f evictions=%d exhausted=%d\n",
			s.Hits, s.Misses, s.HitRatio(), s.Evictions, stats.CacheExhausted)
	}
	return nil
}
