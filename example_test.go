package recgo_test

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/hupe1980/recgo"
	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/collection"
	"github.com/hupe1980/recgo/datafile"
)

// writeExampleFile writes a sorted key region and a region of
// length-prefixed strings, and returns the path and region positions.
func writeExampleFile(dir string) (string, []datafile.Region, error) {
	w := datafile.NewWriter()

	keys := make([][]byte, 0, 5)
	for _, k := range []uint32{2, 4, 8, 16, 32} {
		keys = append(keys, []byte{byte(k), byte(k >> 8), byte(k >> 16), byte(k >> 24)})
	}
	if _, err := w.AddFixed(4, keys, true); err != nil {
		return "", nil, err
	}

	var names [][]byte
	for _, s := range []string{"two", "four", "eight", "sixteen", "thirty-two"} {
		rec, err := datafile.LengthPrefixed16([]byte(s))
		if err != nil {
			return "", nil, err
		}
		names = append(names, rec)
	}
	if _, err := w.AddVariable(names, true); err != nil {
		return "", nil, err
	}

	path := filepath.Join(dir, "example.dat")
	return path, w.Regions(), w.WriteFile(path)
}

// Example_lookup demonstrates a key search followed by a record lookup.
func Example_lookup() {
	dir, err := os.MkdirTemp("", "recgo-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path, regions, err := writeExampleFile(dir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	f, err := recgo.Open(ctx, recgo.Local(path), recgo.WithSizeResolver(collection.LengthPrefix16{}))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	keys, err := f.Collection(ctx, regions[0].Position, recgo.FixedCounted(4), recgo.Config{Loaded: true})
	if err != nil {
		log.Fatal(err)
	}
	names, err := f.Collection(ctx, regions[1].Position, recgo.Variable(true), recgo.Config{Capacity: 2})
	if err != nil {
		log.Fatal(err)
	}

	i, err := keys.Search(ctx, collection.Uint32Comparer(16))
	if err != nil {
		log.Fatal(err)
	}

	var item recgo.Item
	if err := names.Get(ctx, i, &item); err != nil {
		log.Fatal(err)
	}
	defer names.Release(&item)

	fmt.Printf("%d: %s\n", i, item.Data[2:])
	// Output: 3: sixteen
}

// Example_iterate demonstrates walking every record of a memory-mapped file.
func Example_iterate() {
	dir, err := os.MkdirTemp("", "recgo-example")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	path, regions, err := writeExampleFile(dir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	f, err := recgo.Open(ctx, recgo.Local(path),
		recgo.WithMmap(),
		recgo.WithSizeResolver(collection.LengthPrefix16{}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	names, err := f.Collection(ctx, regions[1].Position, recgo.Variable(true), recgo.Config{Loaded: true})
	if err != nil {
		log.Fatal(err)
	}

	for rec, err := range collection.All(ctx, names) {
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(rec.Ordinal, string(rec.Data[2:]))
	}
	// Output:
	// 0 two
	// 1 four
	// 2 eight
	// 3 sixteen
	// 4 thirty-two
}

// Example_remote demonstrates serving a collection from a blob store.
func Example_remote() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	w := datafile.NewWriter()
	if _, err := w.AddFixed(2, [][]byte{{'h', 'i'}, {'y', 'o'}}, false); err != nil {
		log.Fatal(err)
	}
	if err := store.Put(ctx, "greetings.dat", w.Bytes()); err != nil {
		log.Fatal(err)
	}

	metrics := &recgo.BasicMetricsCollector{}
	f, err := recgo.Open(ctx, recgo.Remote(store, "greetings.dat"), recgo.WithMetricsCollector(metrics))
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	c, err := f.Collection(ctx, 0, recgo.Fixed(2), recgo.Config{Concurrency: 2})
	if err != nil {
		log.Fatal(err)
	}

	var item recgo.Item
	if err := c.Get(ctx, 1, &item); err != nil {
		log.Fatal(err)
	}
	fmt.Println(c.Kind(), c.Count(), string(item.Data))
	c.Release(&item)

	fmt.Println("reads:", metrics.GetStats().ReadCount)
	// Output:
	// file 2 yo
	// reads: 1
}
