package collection

import "github.com/hupe1980/recgo/internal/cache"

// Item is a caller-owned handle to one retrieved record.
//
// The zero value is an empty item. Get populates it; Release returns the
// backend resources it holds and empties it again. Items are cheap and meant
// to live on the stack.
type Item struct {
	// Data holds the record bytes. It is valid until the item is released.
	Data []byte

	owner   Collection
	ordinal uint32

	// backend handles
	buf    []byte
	stripe int
	entry  *cache.Entry
}

// Ordinal returns the ordinal of the record held by the item.
func (it *Item) Ordinal() uint32 { return it.ordinal }

// Empty reports whether the item holds no record.
func (it *Item) Empty() bool { return it.owner == nil }

// Release releases the item through the collection that populated it.
// Releasing an empty item is a no-op.
func (it *Item) Release() {
	if it.owner != nil {
		it.owner.Release(it)
	}
}

func (it *Item) reset() {
	*it = Item{}
}
