// Package recgo serves fixed- and variable-size binary records from a
// read-only data file.
//
// A data file is a sequence of regions. Each region starts with a 4-byte
// little-endian header word that holds either the record count or the byte
// length of the records that follow. Records are addressed by ordinal
// (0..count-1) and are never interpreted beyond their length.
//
// # Quick Start
//
// Local mode:
//
//	ctx := context.Background()
//	f, _ := recgo.Open(ctx, recgo.Local("./data/terms.dat"))
//	defer f.Close()
//
//	terms, _ := f.Collection(ctx, 0, recgo.Fixed(16), recgo.Config{Capacity: 1024, Concurrency: 8})
//
// Memory-mapped:
//
//	f, _ := recgo.Open(ctx, recgo.Local("./data/terms.dat"), recgo.WithMmap())
//	terms, _ := f.Collection(ctx, 0, recgo.Fixed(16), recgo.Config{Loaded: true})
//
// Cloud mode:
//
//	s3Store, _ := s3.New(ctx, "my-bucket", s3.WithPrefix("index/"))
//	f, _ := recgo.Open(ctx, recgo.Remote(s3Store, "terms.dat"))
//
// # Backends
//
// The Config passed to Collection picks the backend:
//
//   - Loaded: the region is held in memory (copied, or served from the
//     mapping when the file is memory-mapped). Get never blocks.
//   - Capacity > 0: a sharded LRU cache of pinned records in front of
//     positioned reads of the file.
//   - Otherwise: every Get reads the record from the file. Reads are spread
//     over Concurrency independent stripes.
//
// # Reading Records
//
//	var item recgo.Item
//	if err := terms.Get(ctx, 42, &item); err != nil {
//	    return err
//	}
//	defer terms.Release(&item)
//	use(item.Data)
//
// Sorted collections can be searched:
//
//	i, err := terms.Search(ctx, collection.Uint32Comparer(7))
//	if errors.Is(err, recgo.ErrNotFound) { ... }
//
// The collection package holds the backends and can be used without this
// package when the caller already has a Source and a Header.
package recgo
