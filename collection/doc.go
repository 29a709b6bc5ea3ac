// Package collection serves binary records by dense ordinal from three
// interchangeable backends.
//
//   - [Memory]: records already resident (a byte slice or a memory map).
//     Get returns a slice into the region, with no copy and no locking.
//   - [File]: records read on demand from a [Source] (a file, an mmap, an
//     object store blob). Reads are spread over independent stripes, each
//     with its own read position and buffer pool.
//   - [Cache]: a bounded, sharded LRU over any other collection. Entries
//     handed out to callers are pinned and never evicted until released.
//
// All backends implement [Collection]. Callers follow the same protocol
// regardless of backend:
//
//	var item collection.Item
//	if err := c.Get(ctx, i, &item); err != nil {
//	    return err
//	}
//	defer c.Release(&item)
//	use(item.Data)
//
// item.Data must not be retained after Release.
//
// # Variable-size records
//
// Collections with ElementSize 0 need a [SizeResolver]. An offset index is
// built once when the collection is created (one sequential pass, 4 bytes per
// record), after which Get is O(1) for every backend.
//
// # Choosing a backend
//
// [Open] picks the backend from a [Config]: Loaded copies (or maps) the whole
// region into memory, a non-zero Capacity puts a cache in front of a file
// collection, and otherwise records are read from the source on every Get.
package collection
