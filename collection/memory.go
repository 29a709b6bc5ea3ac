package collection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/recgo/resource"
)

// Memory serves records straight out of a resident byte slice.
//
// Get is lock-free and allocation-free; the returned data aliases the
// region, so callers must treat it as read-only.
type Memory struct {
	id          uuid.UUID
	data        []byte
	offsets     []uint32 // nil for fixed-size records
	count       uint32
	elementSize uint32

	loaded int64 // bytes charged to rc
	mapped bool
	src    any // closed on Close when owned

	closed  atomic.Bool
	opts    options
	logger  *slog.Logger
	metrics MetricsObserver
}

// NewMemory creates a collection over the region h of buf. buf must not be
// modified while the collection is in use.
func NewMemory(h Header, buf []byte, optFns ...Option) (*Memory, error) {
	return newMemory(h, buf, nil, applyOptions(optFns))
}

// LoadMemory brings the region h of src into memory and serves it from
// there. Sources implementing Mappable are used in place without copying.
// Copied regions are charged to the resource controller until Close.
func LoadMemory(ctx context.Context, h Header, src Source, optFns ...Option) (*Memory, error) {
	o := applyOptions(optFns)

	if m, ok := src.(Mappable); ok {
		buf, err := m.Bytes()
		if err != nil {
			return nil, &IOError{Op: "map", Offset: 0, Err: err}
		}
		mem, err := newMemory(h, buf, nil, o)
		if err != nil {
			return nil, err
		}
		mem.mapped = true
		mem.src = src
		return mem, nil
	}

	start := time.Now()
	if int64(h.StartPosition) > src.Size() {
		return nil, truncated("region starts at %d, source has %d bytes", h.StartPosition, src.Size())
	}

	var offsets []uint32
	length := int64(h.Length)
	if h.ElementSize == 0 && h.Length == 0 && h.Count > 0 {
		// The length of a counted variable-size region is only known
		// after walking it.
		sr := io.NewSectionReader(src, int64(h.StartPosition), src.Size()-int64(h.StartPosition))
		var err error
		offsets, err = scanOffsets(sr, h, o.resolver)
		if err != nil {
			return nil, err
		}
		length = int64(offsets[len(offsets)-1])
	}
	if int64(h.StartPosition)+length > src.Size() {
		return nil, truncated("region [%d, %d) exceeds source size %d", h.StartPosition, int64(h.StartPosition)+length, src.Size())
	}

	if err := o.rc.AcquireMemory(length); err != nil {
		return nil, fmt.Errorf("load %d bytes: %w", length, err)
	}
	buf := make([]byte, length)
	n, err := resource.NewRateLimitedReaderAt(ctx, src, o.rc).ReadAt(buf, int64(h.StartPosition))
	if n < len(buf) {
		o.rc.ReleaseMemory(length)
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, truncated("loaded %d of %d bytes", n, len(buf))
		}
		return nil, &IOError{Op: "load", Offset: int64(h.StartPosition), Err: err}
	}

	loaded := h
	loaded.StartPosition = 0
	loaded.Length = uint32(length)
	mem, err := newMemory(loaded, buf, offsets, o)
	if err != nil {
		o.rc.ReleaseMemory(length)
		return nil, err
	}
	mem.loaded = length
	mem.src = src
	o.metrics.OnLoad(KindMemory, length, time.Since(start))
	return mem, nil
}

func newMemory(h Header, buf []byte, offsets []uint32, o options) (*Memory, error) {
	start := int(h.StartPosition)
	if start > len(buf) {
		return nil, truncated("region starts at %d, buffer has %d bytes", start, len(buf))
	}

	m := &Memory{
		id:          uuid.New(),
		elementSize: h.ElementSize,
		opts:        o,
		logger:      o.logger,
		metrics:     o.metrics,
	}

	if h.ElementSize > 0 {
		if uint64(h.Count)*uint64(h.ElementSize) > uint64(h.Length) {
			return nil, invalidFixedHeader(h)
		}
		end := start + int(h.Length)
		if end > len(buf) {
			return nil, truncated("region [%d, %d) exceeds buffer size %d", start, end, len(buf))
		}
		m.data = buf[start:end:end]
		m.count = h.Count
	} else {
		if offsets == nil {
			scanStart := time.Now()
			region := buf[start:]
			if h.Length > 0 || h.Count == 0 {
				end := start + int(h.Length)
				if end > len(buf) {
					return nil, truncated("region [%d, %d) exceeds buffer size %d", start, end, len(buf))
				}
				region = buf[start:end]
			}
			var err error
			offsets, err = scanOffsets(bytes.NewReader(region), h, o.resolver)
			if err != nil {
				return nil, err
			}
			o.metrics.OnLoad(KindMemory, int64(len(offsets))*4, time.Since(scanStart))
		}
		end := start + int(offsets[len(offsets)-1])
		if end > len(buf) {
			return nil, truncated("region [%d, %d) exceeds buffer size %d", start, end, len(buf))
		}
		m.data = buf[start:end:end]
		m.offsets = offsets
		m.count = uint32(len(offsets) - 1)
	}

	m.logger.Debug("collection created",
		"id", m.id, "kind", KindMemory, "count", m.count, "length", len(m.data), "element_size", m.elementSize)
	return m, nil
}

// Get points item at record i without copying.
func (m *Memory) Get(_ context.Context, i uint32, item *Item) error {
	item.Release()
	if m.closed.Load() {
		return ErrClosed
	}
	if err := checkOrdinal(i, m.count); err != nil {
		m.metrics.OnGet(KindMemory, err)
		return err
	}

	lo, hi := m.bounds(i)
	item.Data = m.data[lo:hi:hi]
	item.owner = m
	item.ordinal = i
	m.metrics.OnGet(KindMemory, nil)
	return nil
}

func (m *Memory) bounds(i uint32) (int, int) {
	if m.offsets != nil {
		return int(m.offsets[i]), int(m.offsets[i+1])
	}
	lo := int(i) * int(m.elementSize)
	return lo, lo + int(m.elementSize)
}

// Release empties item. Memory records own no per-item resources.
func (m *Memory) Release(item *Item) {
	item.reset()
}

func (m *Memory) Count() uint32       { return m.count }
func (m *Memory) ElementSize() uint32 { return m.elementSize }
func (m *Memory) Length() uint32      { return uint32(len(m.data)) }
func (m *Memory) Kind() Kind          { return KindMemory }

// Bytes returns the whole region.
func (m *Memory) Bytes() []byte { return m.data }

func (m *Memory) State() State {
	return State{
		ID:          m.id,
		Kind:        KindMemory,
		Count:       m.count,
		ElementSize: m.elementSize,
		Length:      uint32(len(m.data)),
		LoadedBytes: m.loaded,
		Mapped:      m.mapped,
	}
}

// Close returns loaded memory to the resource controller and closes an
// owned source. A mapped region becomes invalid once its source is closed.
func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.opts.rc.ReleaseMemory(m.loaded)
	m.logger.Debug("collection closed", "id", m.id, "kind", KindMemory)
	if m.opts.ownsSource {
		return closeSource(m.src)
	}
	return nil
}
