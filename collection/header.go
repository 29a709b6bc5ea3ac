package collection

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// HeaderSize is the size of the header word preceding every region.
const HeaderSize = 4

// Header describes a record region within its enclosing source.
type Header struct {
	// Count is the number of records. Zero for variable-size regions whose
	// header word is a length; the count is then found by scanning.
	Count uint32
	// Length is the byte length of the region. Zero for variable-size regions
	// whose header word is a count; the length is then found by scanning.
	Length uint32
	// StartPosition is the offset of the first record in the source.
	StartPosition uint32
	// ElementSize is the fixed record size, or 0 for variable-size records.
	ElementSize uint32
}

// End returns the offset just past the region.
func (h Header) End() int64 {
	return int64(h.StartPosition) + int64(h.Length)
}

// Layout describes how the header word of a region is interpreted.
type Layout struct {
	// ElementSize is the fixed record size, or 0 for variable-size records.
	ElementSize uint32
	// Counted means the header word is the record count. Otherwise it is the
	// byte length of the region.
	Counted bool
}

// Header builds the header for a region whose word is word and whose first
// record starts at start.
func (l Layout) Header(word, start uint32) (Header, error) {
	h := Header{StartPosition: start, ElementSize: l.ElementSize}
	if l.Counted {
		length := uint64(word) * uint64(l.ElementSize)
		if length > math.MaxUint32 {
			return Header{}, fmt.Errorf("%w: %d records of %d bytes overflow", ErrInvalidHeader, word, l.ElementSize)
		}
		h.Count = word
		h.Length = uint32(length)
		return h, nil
	}
	h.Length = word
	if l.ElementSize > 0 {
		h.Count = word / l.ElementSize
	}
	return h, nil
}

// MemoryReader is a cursor over a byte slice.
type MemoryReader struct {
	buf []byte
	pos int
}

// NewMemoryReader returns a reader positioned at the start of buf.
func NewMemoryReader(buf []byte) *MemoryReader {
	return &MemoryReader{buf: buf}
}

// Current returns the cursor position.
func (r *MemoryReader) Current() int { return r.pos }

// Remaining returns the number of bytes after the cursor.
func (r *MemoryReader) Remaining() int { return len(r.buf) - r.pos }

// Bytes returns the whole underlying buffer.
func (r *MemoryReader) Bytes() []byte { return r.buf }

// Advance moves the cursor n bytes forward.
func (r *MemoryReader) Advance(n int) error {
	if n < 0 || n > r.Remaining() {
		return truncated("advance %d bytes with %d remaining", n, r.Remaining())
	}
	r.pos += n
	return nil
}

// HeaderFromMemory reads a header word at the cursor and advances past it.
// StartPosition is the cursor position after the word.
func HeaderFromMemory(r *MemoryReader, layout Layout) (Header, error) {
	if r.Remaining() < HeaderSize {
		return Header{}, truncated("header needs %d bytes, %d remaining", HeaderSize, r.Remaining())
	}
	word := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += HeaderSize
	if r.pos > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: start position %d exceeds 32 bits", ErrInvalidHeader, r.pos)
	}
	return layout.Header(word, uint32(r.pos))
}

// HeaderFromFile reads a header word at position. The region starts right
// after the word.
func HeaderFromFile(r io.ReaderAt, position int64, layout Layout) (Header, error) {
	start := position + HeaderSize
	if position < 0 || start > math.MaxUint32 {
		return Header{}, fmt.Errorf("%w: position %d", ErrInvalidHeader, position)
	}

	var word [HeaderSize]byte
	n, err := r.ReadAt(word[:], position)
	if n < HeaderSize {
		if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Header{}, truncated("header at %d: read %d of %d bytes", position, n, HeaderSize)
		}
		return Header{}, &IOError{Op: "read header", Offset: position, Err: err}
	}
	return layout.Header(binary.LittleEndian.Uint32(word[:]), uint32(start))
}
