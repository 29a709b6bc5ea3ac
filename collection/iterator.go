package collection

import (
	"context"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

// Next moves item to the record after the one it holds, or to record 0 if it
// is empty. It returns false with the item released once the collection is
// exhausted.
func Next(ctx context.Context, c Collection, item *Item) (bool, error) {
	next := uint32(0)
	if !item.Empty() {
		next = item.Ordinal() + 1
		item.Release()
	}
	if next >= c.Count() {
		return false, nil
	}
	if err := c.Get(ctx, next, item); err != nil {
		return false, err
	}
	return true, nil
}

// Iterator walks records forward. It is not safe for concurrent use and
// cannot be rewound; create a new one to start over.
//
//	it := collection.NewIterator(c)
//	defer it.Close()
//	for it.Next(ctx) {
//	    use(it.Ordinal(), it.Data())
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	c    Collection
	item Item
	err  error

	sel  roaring.IntPeekable // nil iterates every ordinal
	next uint32
}

// NewIterator returns an iterator over every record of c.
func NewIterator(c Collection) *Iterator {
	return &Iterator{c: c}
}

// NewSelectionIterator returns an iterator over the ordinals in sel, in
// ascending order. Ordinals beyond Count end the iteration.
func NewSelectionIterator(c Collection, sel *roaring.Bitmap) *Iterator {
	return &Iterator{c: c, sel: sel.Iterator()}
}

// Next advances to the next record and reports whether there is one.
func (it *Iterator) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	it.item.Release()

	i := it.next
	if it.sel != nil {
		if !it.sel.HasNext() {
			return false
		}
		i = it.sel.Next()
	}
	if i >= it.c.Count() {
		return false
	}
	it.next = i + 1

	if err := it.c.Get(ctx, i, &it.item); err != nil {
		it.err = err
		return false
	}
	return true
}

// Ordinal returns the ordinal of the current record.
func (it *Iterator) Ordinal() uint32 { return it.item.Ordinal() }

// Data returns the current record. It is valid until the next call to Next
// or Close.
func (it *Iterator) Data() []byte { return it.item.Data }

// Err returns the error that stopped the iteration, if any.
func (it *Iterator) Err() error { return it.err }

// Close releases the current record.
func (it *Iterator) Close() {
	it.item.Release()
}

// Record is one element of the sequence returned by All.
type Record struct {
	Ordinal uint32
	Data    []byte
}

// All returns a sequence over every record of c. Each record is released
// before the next one is fetched, so Data must not be retained. Iteration
// stops after the first error is yielded.
func All(ctx context.Context, c Collection) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		var item Item
		defer item.Release()

		for i := range c.Count() {
			if err := c.Get(ctx, i, &item); err != nil {
				yield(Record{Ordinal: i}, err)
				return
			}
			if !yield(Record{Ordinal: i, Data: item.Data}, nil) {
				return
			}
		}
	}
}
