package collection

import (
	"context"
	"fmt"
	"io"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
)

// Collection is a read-only set of records addressed by ordinal.
//
// Get and Release are safe for concurrent use. Close is not synchronized with
// them: every item must be released before the collection is closed.
type Collection interface {
	// Get populates item with record i. A populated item is released first.
	Get(ctx context.Context, i uint32, item *Item) error
	// Release returns the resources held by item and empties it.
	Release(item *Item)
	// Count returns the number of records.
	Count() uint32
	// ElementSize returns the fixed record size, or 0 for variable-size records.
	ElementSize() uint32
	// Length returns the byte length of the region.
	Length() uint32
	// Kind reports the backend.
	Kind() Kind
	// State returns a diagnostic snapshot.
	State() State
	// Close releases all backend resources.
	Close() error
}

// Source is a positioned reader of known size, such as an *os.File wrapper
// or a blobstore.Blob.
type Source interface {
	io.ReaderAt
	Size() int64
}

// Mappable is implemented by sources that can expose their bytes directly.
type Mappable interface {
	Bytes() ([]byte, error)
}

// Kind identifies a backend.
type Kind uint8

const (
	KindMemory Kind = iota
	KindFile
	KindCache
)

func (k Kind) String() string {
	switch k {
	case KindMemory:
		return "memory"
	case KindFile:
		return "file"
	case KindCache:
		return "cache"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// State is a diagnostic snapshot of a collection.
type State struct {
	ID          uuid.UUID
	Kind        Kind
	Count       uint32
	ElementSize uint32
	Length      uint32

	// LoadedBytes is the number of bytes copied into memory at construction.
	LoadedBytes int64
	// Mapped reports a memory collection served from a memory map.
	Mapped bool

	// File collections.
	Reads     int64
	ReadBytes int64
	Stripes   int

	// Cache collections.
	Hits      int64
	Misses    int64
	Evictions int64
	Entries   int
	Pinned    int
	Capacity  int
	Shards    int
	Resident  *roaring.Bitmap

	// Source is the state of the collection wrapped by a cache.
	Source *State
}

// HitRatio returns Hits/(Hits+Misses), or 0 before the first lookup.
func (s State) HitRatio() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Open creates the collection described by cfg over the region h of src.
//
// Loaded regions are served from memory. Otherwise a non-zero Capacity puts
// a cache in front of a file collection, and a zero Capacity reads from src
// on every Get.
func Open(ctx context.Context, src Source, h Header, cfg Config, optFns ...Option) (Collection, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalize()

	if cfg.Loaded {
		return LoadMemory(ctx, h, src, optFns...)
	}

	fileOpts := append(append([]Option(nil), optFns...), WithConcurrency(int(cfg.Concurrency)))
	if cfg.Capacity == 0 {
		return NewFile(ctx, h, src, fileOpts...)
	}

	// The cache owns the file collection; ownership of src is passed down.
	f, err := NewFile(ctx, h, src, fileOpts...)
	if err != nil {
		return nil, err
	}
	cacheOpts := append(append([]Option(nil), optFns...), WithOwnedSource(true))
	c, err := NewCache(f, cfg, cacheOpts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return c, nil
}

func checkOrdinal(i, count uint32) error {
	if i >= count {
		return &RangeError{Ordinal: i, Count: count}
	}
	return nil
}

func closeSource(src any) error {
	if c, ok := src.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
