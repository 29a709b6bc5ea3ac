// Package resource implements the Controller that governs memory, IO and
// background work shared by collections.
//
//	┌─────────────────────────────────────────────────────────────┐
//	│                        Controller                           │
//	├─────────────────┬─────────────────┬─────────────────────────┤
//	│  Memory Limit   │  Background     │  IO Rate Limiter        │
//	│  (fail-fast)    │  Workers (sem)  │  (token bucket)         │
//	├─────────────────┼─────────────────┼─────────────────────────┤
//	│  loaded regions │  cache warm-up  │  file collection reads  │
//	│  cache entries  │                 │  RateLimitedReaderAt    │
//	└─────────────────┴─────────────────┴─────────────────────────┘
//
// # Memory
//
// AcquireMemory never blocks. It returns ErrMemoryLimitExceeded when the
// budget would be exceeded and the caller reports the error:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//	if err := rc.AcquireMemory(int64(header.Length)); err != nil {
//	    return err
//	}
//	defer rc.ReleaseMemory(int64(header.Length))
//
// # IO
//
// A token bucket limits bytes read per second. AcquireIO blocks until the
// bucket allows the read or ctx is done.
//
// # Nil Safety
//
// All methods accept a nil *Controller and become no-ops, so components can
// hold an optional controller without nil checks.
package resource
