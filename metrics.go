package recgo

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/recgo/collection"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    getCounter    *prometheus.CounterVec
//	    readHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordGet(kind collection.Kind, err error) {
//	    p.getCounter.WithLabelValues(kind.String()).Inc()
//	}
type MetricsCollector interface {
	// RecordOpen is called after each collection is opened.
	RecordOpen(kind collection.Kind, duration time.Duration, err error)

	// RecordGet is called after each Get. It runs on the lookup path and
	// must be cheap.
	RecordGet(kind collection.Kind, err error)

	// RecordCacheHit and RecordCacheMiss are called by cached collections.
	RecordCacheHit()
	RecordCacheMiss()

	// RecordCacheExhausted is called when a cache shard has no evictable entry.
	RecordCacheExhausted()

	// RecordRead is called after each read of the underlying file.
	RecordRead(bytes int, duration time.Duration, err error)

	// RecordLoad is called when a region is copied into memory or scanned
	// for record offsets.
	RecordLoad(kind collection.Kind, bytes int64, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordOpen(collection.Kind, time.Duration, error) {}
func (NoopMetricsCollector) RecordGet(collection.Kind, error)                 {}
func (NoopMetricsCollector) RecordCacheHit()                                  {}
func (NoopMetricsCollector) RecordCacheMiss()                                 {}
func (NoopMetricsCollector) RecordCacheExhausted()                            {}
func (NoopMetricsCollector) RecordRead(int, time.Duration, error)             {}
func (NoopMetricsCollector) RecordLoad(collection.Kind, int64, time.Duration) {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	OpenCount      atomic.Int64
	OpenErrors     atomic.Int64
	GetCount       atomic.Int64
	GetErrors      atomic.Int64
	CacheHits      atomic.Int64
	CacheMisses    atomic.Int64
	CacheExhausted atomic.Int64
	ReadCount      atomic.Int64
	ReadErrors     atomic.Int64
	ReadBytes      atomic.Int64
	ReadTotalNanos atomic.Int64
	LoadCount      atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
}

// RecordOpen implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOpen(_ collection.Kind, _ time.Duration, err error) {
	b.OpenCount.Add(1)
	if err != nil {
		b.OpenErrors.Add(1)
	}
}

// RecordGet implements MetricsCollector.
func (b *BasicMetricsCollector) RecordGet(_ collection.Kind, err error) {
	b.GetCount.Add(1)
	if err != nil {
		b.GetErrors.Add(1)
	}
}

// RecordCacheHit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheHit() { b.CacheHits.Add(1) }

// RecordCacheMiss implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheMiss() { b.CacheMisses.Add(1) }

// RecordCacheExhausted implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCacheExhausted() { b.CacheExhausted.Add(1) }

// RecordRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRead(bytes int, duration time.Duration, err error) {
	b.ReadCount.Add(1)
	b.ReadBytes.Add(int64(bytes))
	b.ReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ReadErrors.Add(1)
	}
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(_ collection.Kind, bytes int64, duration time.Duration) {
	b.LoadCount.Add(1)
	b.LoadBytes.Add(bytes)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		OpenCount:      b.OpenCount.Load(),
		OpenErrors:     b.OpenErrors.Load(),
		GetCount:       b.GetCount.Load(),
		GetErrors:      b.GetErrors.Load(),
		CacheHits:      b.CacheHits.Load(),
		CacheMisses:    b.CacheMisses.Load(),
		CacheExhausted: b.CacheExhausted.Load(),
		ReadCount:      b.ReadCount.Load(),
		ReadErrors:     b.ReadErrors.Load(),
		ReadBytes:      b.ReadBytes.Load(),
		ReadAvgNanos:   avg(b.ReadTotalNanos.Load(), b.ReadCount.Load()),
		LoadCount:      b.LoadCount.Load(),
		LoadBytes:      b.LoadBytes.Load(),
		LoadAvgNanos:   avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	OpenCount      int64
	OpenErrors     int64
	GetCount       int64
	GetErrors      int64
	CacheHits      int64
	CacheMisses    int64
	CacheExhausted int64
	ReadCount      int64
	ReadErrors     int64
	ReadBytes      int64
	ReadAvgNanos   int64
	LoadCount      int64
	LoadBytes      int64
	LoadAvgNanos   int64
}

// metricsObserver feeds collection events into a MetricsCollector.
type metricsObserver struct {
	mc MetricsCollector
}

func (o metricsObserver) OnGet(kind collection.Kind, err error) { o.mc.RecordGet(kind, err) }
func (o metricsObserver) OnCacheHit()                           { o.mc.RecordCacheHit() }
func (o metricsObserver) OnCacheMiss()                          { o.mc.RecordCacheMiss() }
func (o metricsObserver) OnCacheExhausted()                     { o.mc.RecordCacheExhausted() }

func (o metricsObserver) OnRead(bytes int, d time.Duration, err error) {
	o.mc.RecordRead(bytes, d, err)
}

func (o metricsObserver) OnLoad(kind collection.Kind, bytes int64, d time.Duration) {
	o.mc.RecordLoad(kind, bytes, d)
}
