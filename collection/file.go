package collection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// maxFreeBuffers bounds the number of idle read buffers kept per stripe.
const maxFreeBuffers = 8

// File reads records from a Source on every Get.
//
// Reads are spread round robin over stripes. Each stripe owns its own read
// position and pool of buffers, so callers on different stripes never block
// each other and callers on the same stripe serialize.
type File struct {
	id          uuid.UUID
	src         Source
	start       int64
	length      uint32
	count       uint32
	elementSize uint32
	offsets     []uint32 // nil for fixed-size records

	stripes []*stripe
	next    atomic.Uint32

	reads     atomic.Int64
	readBytes atomic.Int64

	closed  atomic.Bool
	opts    options
	logger  *slog.Logger
	metrics MetricsObserver
}

type stripe struct {
	mu   sync.Mutex
	r    *io.SectionReader
	lr   io.LimitedReader
	free [][]byte
}

func (s *stripe) buffer(size int) []byte {
	for i := len(s.free) - 1; i >= 0; i-- {
		if cap(s.free[i]) >= size {
			buf := s.free[i][:size]
			s.free[i] = s.free[len(s.free)-1]
			s.free[len(s.free)-1] = nil
			s.free = s.free[:len(s.free)-1]
			return buf
		}
	}
	return make([]byte, size)
}

func (s *stripe) recycle(buf []byte) {
	s.mu.Lock()
	if len(s.free) < maxFreeBuffers {
		s.free = append(s.free, buf[:0])
	}
	s.mu.Unlock()
}

// NewFile creates a collection reading the region h of src. Variable-size
// regions are scanned once to build the offset index.
func NewFile(ctx context.Context, h Header, src Source, optFns ...Option) (*File, error) {
	o := applyOptions(optFns)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	size := src.Size()
	start := int64(h.StartPosition)
	if start > size {
		return nil, truncated("region starts at %d, source has %d bytes", start, size)
	}

	f := &File{
		id:          uuid.New(),
		src:         src,
		start:       start,
		elementSize: h.ElementSize,
		opts:        o,
		logger:      o.logger,
		metrics:     o.metrics,
	}

	if h.ElementSize > 0 {
		if uint64(h.Count)*uint64(h.ElementSize) > uint64(h.Length) {
			return nil, invalidFixedHeader(h)
		}
		f.count = h.Count
		f.length = h.Length
	} else {
		scanStart := time.Now()
		avail := size - start
		if h.Length > 0 || h.Count == 0 {
			avail = min(avail, int64(h.Length))
		}
		offsets, err := scanOffsets(io.NewSectionReader(src, start, avail), h, o.resolver)
		if err != nil {
			return nil, err
		}
		f.offsets = offsets
		f.count = uint32(len(offsets) - 1)
		f.length = offsets[len(offsets)-1]
		o.metrics.OnLoad(KindFile, int64(f.length), time.Since(scanStart))
	}

	if end := start + int64(f.length); end > size {
		return nil, truncated("region [%d, %d) exceeds source size %d", start, end, size)
	}

	f.stripes = make([]*stripe, o.concurrency)
	for i := range f.stripes {
		f.stripes[i] = &stripe{r: io.NewSectionReader(src, start, int64(f.length))}
	}

	f.logger.Debug("collection created",
		"id", f.id, "kind", KindFile, "count", f.count, "length", f.length,
		"element_size", f.elementSize, "stripes", len(f.stripes))
	return f, nil
}

// Get reads record i into a buffer owned by item.
func (f *File) Get(ctx context.Context, i uint32, item *Item) error {
	item.Release()
	err := f.get(ctx, i, item)
	f.metrics.OnGet(KindFile, err)
	return err
}

func (f *File) get(ctx context.Context, i uint32, item *Item) error {
	if f.closed.Load() {
		return ErrClosed
	}
	if err := checkOrdinal(i, f.count); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	off, size := f.extent(i)
	if err := f.opts.rc.AcquireIO(ctx, size); err != nil {
		return err
	}

	idx := int(f.next.Add(1)-1) % len(f.stripes)
	s := f.stripes[idx]

	readStart := time.Now()
	s.mu.Lock()
	buf := s.buffer(size)
	n, err := f.readLocked(s, off, buf)
	s.mu.Unlock()

	f.reads.Add(1)
	f.readBytes.Add(int64(n))
	f.metrics.OnRead(n, time.Since(readStart), err)

	if err != nil {
		s.recycle(buf)
		return err
	}

	item.Data = buf
	item.buf = buf
	item.stripe = idx
	item.owner = f
	item.ordinal = i
	return nil
}

func (f *File) readLocked(s *stripe, off int64, buf []byte) (int, error) {
	if _, err := s.r.Seek(off, io.SeekStart); err != nil {
		return 0, &IOError{Op: "seek", Offset: f.start + off, Err: err}
	}
	s.lr = io.LimitedReader{R: s.r, N: int64(len(buf))}
	n, err := f.opts.readMethod(&s.lr, buf)
	switch {
	case err == nil && n < len(buf):
		return n, truncated("record at %d: read %d of %d bytes", f.start+off, n, len(buf))
	case err == nil:
		return n, nil
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return n, truncated("record at %d: read %d of %d bytes", f.start+off, n, len(buf))
	default:
		return n, &IOError{Op: "read", Offset: f.start + off, Err: err}
	}
}

// extent returns the offset of record i relative to the region and its size.
func (f *File) extent(i uint32) (int64, int) {
	if f.offsets != nil {
		return int64(f.offsets[i]), int(f.offsets[i+1] - f.offsets[i])
	}
	return int64(i) * int64(f.elementSize), int(f.elementSize)
}

// Release returns the item's buffer to its stripe.
func (f *File) Release(item *Item) {
	if item.buf != nil {
		f.stripes[item.stripe].recycle(item.buf)
	}
	item.reset()
}

func (f *File) Count() uint32       { return f.count }
func (f *File) ElementSize() uint32 { return f.elementSize }
func (f *File) Length() uint32      { return f.length }
func (f *File) Kind() Kind          { return KindFile }

func (f *File) State() State {
	return State{
		ID:          f.id,
		Kind:        KindFile,
		Count:       f.count,
		ElementSize: f.elementSize,
		Length:      f.length,
		Reads:       f.reads.Load(),
		ReadBytes:   f.readBytes.Load(),
		Stripes:     len(f.stripes),
	}
}

// Close drops the stripe buffers and closes an owned source.
func (f *File) Close() error {
	if f.closed.Swap(true) {
		return nil
	}
	for _, s := range f.stripes {
		s.mu.Lock()
		s.free = nil
		s.mu.Unlock()
	}
	f.logger.Debug("collection closed", "id", f.id, "kind", KindFile, "reads", f.reads.Load())
	if f.opts.ownsSource {
		return closeSource(f.src)
	}
	return nil
}
