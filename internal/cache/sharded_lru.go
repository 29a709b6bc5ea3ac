package cache

import (
	"encoding/binary"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/cespare/xxhash/v2"
	"github.com/hupe1980/recgo/resource"
)

// Sharded distributes entries across independent LRU shards to reduce lock
// contention.
type Sharded struct {
	shards []*LRU
}

// NewSharded creates a cache of capacity entries split over the given number
// of shards. The first capacity%shards shards hold one extra entry, so the
// shard capacities sum to capacity. Every shard holds at least one entry.
func NewSharded(capacity, shards int, rc *resource.Controller) *Sharded {
	if shards < 1 {
		shards = 1
	}
	base, extra := capacity/shards, capacity%shards

	s := &Sharded{shards: make([]*LRU, shards)}
	for i := range s.shards {
		n := base
		if i < extra {
			n++
		}
		if n < 1 {
			n = 1
		}
		s.shards[i] = NewLRU(n, rc)
	}
	return s
}

// shardIndex maps a key to a shard. Ordinals are hashed rather than taken
// modulo the shard count so strided scans do not pile onto one shard.
func (s *Sharded) shardIndex(key uint32) int {
	if len(s.shards) == 1 {
		return 0
	}
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], key)
	return int(xxhash.Sum64(buf[:]) % uint64(len(s.shards)))
}

// Shard returns the shard owning key.
func (s *Sharded) Shard(key uint32) *LRU {
	return s.shards[s.shardIndex(key)]
}

// Acquire pins and returns the entry for key if it is resident.
func (s *Sharded) Acquire(key uint32) (*Entry, bool) {
	return s.Shard(key).Acquire(key)
}

// Insert copies data into a pinned entry for key. See LRU.Insert.
func (s *Sharded) Insert(key uint32, data []byte) (*Entry, error) {
	return s.Shard(key).Insert(key, data)
}

// Release unpins an entry.
func (s *Sharded) Release(e *Entry) {
	s.Shard(e.key).Release(e)
}

// Clear drops all entries in every shard.
func (s *Sharded) Clear() {
	for _, sh := range s.shards {
		sh.Clear()
	}
}

// NumShards returns the shard count.
func (s *Sharded) NumShards() int {
	return len(s.shards)
}

// Capacity returns the total entry capacity across shards.
func (s *Sharded) Capacity() int {
	total := 0
	for _, sh := range s.shards {
		total += sh.Capacity()
	}
	return total
}

// Stats returns counters aggregated over all shards.
func (s *Sharded) Stats() Stats {
	var total Stats
	for _, sh := range s.shards {
		total.add(sh.Stats())
	}
	return total
}

// ShardStats returns per-shard counters in shard order.
func (s *Sharded) ShardStats() []Stats {
	stats := make([]Stats, len(s.shards))
	for i, sh := range s.shards {
		stats[i] = sh.Stats()
	}
	return stats
}

// Resident returns the set of resident keys.
func (s *Sharded) Resident() *roaring.Bitmap {
	bm := roaring.New()
	for _, sh := range s.shards {
		sh.Keys(bm.Add)
	}
	return bm
}
