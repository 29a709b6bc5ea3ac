package cache

import (
	"errors"
	"sync/atomic"
)

// ErrExhausted is returned by Insert when the shard is full and every
// resident entry is pinned.
var ErrExhausted = errors.New("cache: all entries pinned")

// Entry is a resident copy of one record.
type Entry struct {
	key  uint32
	data []byte
	refs atomic.Int32
}

// Key returns the ordinal the entry holds.
func (e *Entry) Key() uint32 { return e.key }

// Bytes returns the cached record. Valid only while the entry is pinned.
func (e *Entry) Bytes() []byte { return e.data }

// Refs returns the current reference count.
func (e *Entry) Refs() int32 { return e.refs.Load() }

// Stats is a point-in-time snapshot of cache counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Pinned    int
	Bytes     int64
}

func (s *Stats) add(o Stats) {
	s.Hits += o.Hits
	s.Misses += o.Misses
	s.Evictions += o.Evictions
	s.Entries += o.Entries
	s.Pinned += o.Pinned
	s.Bytes += o.Bytes
}
