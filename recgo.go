package recgo

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"
	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/collection"
)

// Aliases for the collection types used with this package.
type (
	Header = collection.Header
	Layout = collection.Layout
	Config = collection.Config
	Item   = collection.Item
	State  = collection.State
	Kind   = collection.Kind
)

// Fixed returns the layout of a region whose header word is the byte length
// of fixed-size records.
func Fixed(elementSize uint32) Layout {
	return Layout{ElementSize: elementSize}
}

// FixedCounted returns the layout of a region whose header word is the
// record count of fixed-size records.
func FixedCounted(elementSize uint32) Layout {
	return Layout{ElementSize: elementSize, Counted: true}
}

// Variable returns the layout of a region of variable-size records. Counted
// selects whether the header word is the record count or the byte length.
func Variable(counted bool) Layout {
	return Layout{Counted: counted}
}

// Location identifies a data file.
type Location struct {
	dir    string
	name   string
	remote blobstore.BlobStore
}

// Local returns the location of a file on the local file system.
func Local(path string) Location {
	return Location{dir: filepath.Dir(path), name: filepath.Base(path)}
}

// Remote returns the location of the blob name in store.
func Remote(store blobstore.BlobStore, name string) Location {
	return Location{remote: store, name: name}
}

func (l Location) store(o options) blobstore.BlobStore {
	switch {
	case l.remote != nil:
		return l.remote
	case o.mmap:
		return blobstore.NewLocalStore(l.dir)
	default:
		return blobstore.NewFileStore(l.dir, o.fsys)
	}
}

func (l Location) String() string {
	if l.remote != nil {
		return l.name
	}
	return filepath.Join(l.dir, l.name)
}

// File is an open data file. Collections opened from it share the
// underlying blob and are closed with it.
type File struct {
	mu          sync.Mutex
	blob        blobstore.Blob
	name        string
	opts        options
	logger      *Logger
	collections map[uuid.UUID]*Collection
	closed      bool
}

// Open opens the data file at loc.
func Open(ctx context.Context, loc Location, optFns ...Option) (*File, error) {
	o := applyOptions(optFns)
	logger := o.logger.WithFile(loc.String())

	blob, err := loc.store(o).Open(ctx, loc.name)
	if err != nil {
		err = translateError(err)
		logger.ErrorContext(ctx, "open file failed", "error", err)
		return nil, err
	}
	logger.DebugContext(ctx, "file opened", "size", blob.Size())

	return &File{
		blob:        blob,
		name:        loc.String(),
		opts:        o,
		logger:      logger,
		collections: make(map[uuid.UUID]*Collection),
	}, nil
}

// Name returns the location the file was opened from.
func (f *File) Name() string { return f.name }

// Size returns the size of the file in bytes.
func (f *File) Size() int64 { return f.blob.Size() }

// Mapped reports whether the file is served from a memory mapping.
func (f *File) Mapped() bool {
	_, ok := f.blob.(blobstore.Mappable)
	return ok
}

// Header reads the header of the region at position.
func (f *File) Header(position int64, layout Layout) (Header, error) {
	h, err := collection.HeaderFromFile(f.blob, position, layout)
	if err != nil {
		return Header{}, err
	}
	if end := h.End(); end > f.blob.Size() {
		return Header{}, &ErrRegionOutOfBounds{
			Position: position,
			End:      end,
			Size:     f.blob.Size(),
			cause:    collection.ErrTruncatedInput,
		}
	}
	return h, nil
}

// Collection opens the region at position as a collection. The backend is
// chosen from cfg, see collection.Open.
func (f *File) Collection(ctx context.Context, position int64, layout Layout, cfg Config) (*Collection, error) {
	f.mu.Lock()
	closed := f.closed
	f.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	start := time.Now()
	h, err := f.Header(position, layout)
	if err == nil && cfg.Loaded {
		if p, ok := f.blob.(blobstore.Prefetcher); ok {
			if perr := p.Prefetch(int64(h.StartPosition), int64(h.Length)); perr != nil {
				f.logger.DebugContext(ctx, "prefetch failed", "position", position, "error", perr)
			}
		}
	}
	if err == nil {
		var c collection.Collection
		c, err = collection.Open(ctx, f.blob, h, cfg, f.opts.collectionOptions(f.logger)...)
		if err == nil {
			return f.register(ctx, position, c, start)
		}
	}

	f.opts.metricsCollector.RecordOpen(kindFor(cfg), time.Since(start), err)
	f.logger.LogOpen(ctx, position, State{}, err)
	return nil, err
}

func (f *File) register(ctx context.Context, position int64, c collection.Collection, start time.Time) (*Collection, error) {
	s := c.State()
	f.opts.metricsCollector.RecordOpen(s.Kind, time.Since(start), nil)
	f.logger.LogOpen(ctx, position, s, nil)

	rc := &Collection{
		Collection: c,
		id:         s.ID,
		file:       f,
		logger:     f.logger.WithCollection(s),
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		_ = c.Close()
		return nil, ErrClosed
	}
	f.collections[s.ID] = rc
	return rc, nil
}

func kindFor(cfg Config) Kind {
	switch {
	case cfg.Loaded:
		return collection.KindMemory
	case cfg.Capacity > 0:
		return collection.KindCache
	default:
		return collection.KindFile
	}
}

// Collections returns the number of open collections.
func (f *File) Collections() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.collections)
}

// Close closes every collection opened from f and then the file itself.
// Items of those collections must have been released.
func (f *File) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	open := make([]*Collection, 0, len(f.collections))
	for _, c := range f.collections {
		open = append(open, c)
	}
	f.collections = nil
	f.mu.Unlock()

	var errs []error
	for _, c := range open {
		if err := c.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := f.blob.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close %s: %w", f.name, err))
	}

	err := errors.Join(errs...)
	f.logger.LogClose(context.Background(), err)
	return err
}

func (f *File) forget(id uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.collections, id)
}

// Collection is a collection opened from a File. It implements
// collection.Collection and adds search, iteration and cache warm-up.
type Collection struct {
	collection.Collection

	id     uuid.UUID
	file   *File
	logger *Logger
	once   sync.Once
	err    error
}

// ID returns the collection's identifier, as used in logs and State.
func (c *Collection) ID() uuid.UUID { return c.id }

// Get populates item with record i.
func (c *Collection) Get(ctx context.Context, i uint32, item *Item) error {
	err := c.Collection.Get(ctx, i, item)
	if err != nil {
		c.logger.LogGet(ctx, i, err)
	}
	return err
}

// Search returns the lowest ordinal whose record compares equal, or
// ErrNotFound. The collection must be sorted consistently with cmp.
func (c *Collection) Search(ctx context.Context, cmp collection.Comparer) (uint32, error) {
	return collection.BinarySearch(ctx, c.Collection, cmp)
}

// SearchRange is Search restricted to ordinals [lower, upper).
func (c *Collection) SearchRange(ctx context.Context, lower, upper uint32, cmp collection.Comparer) (uint32, error) {
	return collection.BinarySearchRange(ctx, c.Collection, lower, upper, cmp)
}

// Iterator returns an iterator over every record.
func (c *Collection) Iterator() *collection.Iterator {
	return collection.NewIterator(c.Collection)
}

// Select returns an iterator over the records whose ordinals are in sel.
func (c *Collection) Select(sel *roaring.Bitmap) *collection.Iterator {
	return collection.NewSelectionIterator(c.Collection, sel)
}

// Warm loads the given ordinals into the cache. It returns ErrNotCached for
// collections without a cache.
func (c *Collection) Warm(ctx context.Context, ordinals *roaring.Bitmap) (int, error) {
	cache, ok := c.Collection.(*collection.Cache)
	if !ok {
		return 0, ErrNotCached
	}
	n, err := cache.Warm(ctx, ordinals)
	c.logger.LogWarm(ctx, ordinals.GetCardinality(), n, err)
	return n, err
}

// Close closes the collection. It is safe to call more than once.
func (c *Collection) Close() error {
	c.file.forget(c.id)
	return c.close()
}

func (c *Collection) close() error {
	c.once.Do(func() {
		c.err = c.Collection.Close()
		c.logger.LogClose(context.Background(), c.err)
	})
	return c.err
}
