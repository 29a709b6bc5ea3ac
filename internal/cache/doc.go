// Package cache provides the pinned LRU used by the cache collection.
//
// # Shards
//
// Sharded splits a bounded number of entries across independent LRU shards.
// A key is routed to its shard by an xxhash of the ordinal, so strided access
// patterns still spread evenly.
//
// Key features:
//   - Per-shard mutex; operations on different shards never block each other
//   - Reference counted entries; a pinned entry is never evicted
//   - Evicted entry buffers are recycled for the incoming key
//   - Optional accounting against a resource.Controller memory budget
//
// # Pinning
//
// Acquire and Insert return an Entry with its reference count incremented.
// The caller must call Release exactly once per returned Entry. Bytes stays
// valid until that Release; afterwards the entry may be evicted and its
// buffer handed to another key.
package cache
