package collection

import "time"

// MetricsObserver receives collection events. Implementations must be safe
// for concurrent use and cheap, since OnGet runs on every lookup.
type MetricsObserver interface {
	// OnGet is called when a Get completes.
	OnGet(kind Kind, err error)

	// OnCacheHit and OnCacheMiss are called by cache collections.
	OnCacheHit()
	OnCacheMiss()

	// OnCacheExhausted is called when an insert finds every entry pinned.
	OnCacheExhausted()

	// OnRead is called after each source read of a file collection.
	OnRead(bytes int, duration time.Duration, err error)

	// OnLoad is called when a collection finishes construction work that
	// touched the source: copying a loaded region or building an offset index.
	OnLoad(kind Kind, bytes int64, duration time.Duration)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnGet(Kind, error)                 {}
func (NoopMetricsObserver) OnCacheHit()                       {}
func (NoopMetricsObserver) OnCacheMiss()                      {}
func (NoopMetricsObserver) OnCacheExhausted()                 {}
func (NoopMetricsObserver) OnRead(int, time.Duration, error)  {}
func (NoopMetricsObserver) OnLoad(Kind, int64, time.Duration) {}
