package datafile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/recgo/collection"
	"github.com/hupe1980/recgo/internal/conv"
	"github.com/natefinch/atomic"
)

// ErrRecordSize is returned when a record does not match the region's
// element size.
var ErrRecordSize = errors.New("datafile: record size does not match element size")

// Region describes a region written by a Writer.
type Region struct {
	// Position is the offset of the region's header word.
	Position int64
	Layout   collection.Layout
	// Header is what collection.HeaderFromFile returns at Position.
	Header collection.Header
}

// Writer accumulates regions in memory.
type Writer struct {
	buf     bytes.Buffer
	regions []Region
}

// NewWriter returns an empty Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// AddFixed appends a region of records of exactly size bytes each and
// returns its index. counted selects a count header word over a length one.
func (w *Writer) AddFixed(size uint32, records [][]byte, counted bool) (int, error) {
	if size == 0 {
		return 0, fmt.Errorf("%w: fixed regions need a positive element size", ErrRecordSize)
	}
	for i, rec := range records {
		if len(rec) != int(size) {
			return 0, fmt.Errorf("%w: record %d has %d bytes, want %d", ErrRecordSize, i, len(rec), size)
		}
	}
	return w.add(collection.Layout{ElementSize: size, Counted: counted}, records)
}

// AddVariable appends a region of variable-size records and returns its
// index. Records must carry whatever prefix their SizeResolver reads.
func (w *Writer) AddVariable(records [][]byte, counted bool) (int, error) {
	return w.add(collection.Layout{Counted: counted}, records)
}

func (w *Writer) add(layout collection.Layout, records [][]byte) (int, error) {
	var total uint64
	for _, rec := range records {
		total += uint64(len(rec))
	}
	length, err := conv.Uint64ToUint32(total)
	if err != nil {
		return 0, fmt.Errorf("datafile: region length: %w", err)
	}
	count, err := conv.IntToUint32(len(records))
	if err != nil {
		return 0, fmt.Errorf("datafile: region count: %w", err)
	}

	pos := int64(w.buf.Len())
	start, err := conv.Int64ToUint32(pos + collection.HeaderSize)
	if err != nil {
		return 0, fmt.Errorf("datafile: file exceeds 4 GiB: %w", err)
	}

	word := length
	if layout.Counted {
		word = count
	}
	var hdr [collection.HeaderSize]byte
	binary.LittleEndian.PutUint32(hdr[:], word)
	w.buf.Write(hdr[:])
	for _, rec := range records {
		w.buf.Write(rec)
	}

	h, err := layout.Header(word, start)
	if err != nil {
		return 0, err
	}
	w.regions = append(w.regions, Region{Position: pos, Layout: layout, Header: h})
	return len(w.regions) - 1, nil
}

// Regions returns the regions written so far, in order.
func (w *Writer) Regions() []Region {
	return append([]Region(nil), w.regions...)
}

// Bytes returns the encoded file. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the encoded size in bytes.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// WriteTo writes the encoded file to dst.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf.Bytes())
	return int64(n), err
}

// WriteFile atomically replaces path with the encoded file.
func (w *Writer) WriteFile(path string) error {
	if err := atomic.WriteFile(path, bytes.NewReader(w.buf.Bytes())); err != nil {
		return fmt.Errorf("datafile: write %s: %w", path, err)
	}
	return nil
}

// LengthPrefixed16 returns payload prefixed with its little-endian uint16
// length, the encoding read by collection.LengthPrefix16.
func LengthPrefixed16(payload []byte) ([]byte, error) {
	if len(payload) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: payload of %d bytes exceeds uint16 prefix", ErrRecordSize, len(payload))
	}
	rec := make([]byte, 2+len(payload))
	binary.LittleEndian.PutUint16(rec, uint16(len(payload)))
	copy(rec[2:], payload)
	return rec, nil
}

// LengthPrefixed32 returns payload prefixed with its little-endian uint32
// length, the encoding read by collection.LengthPrefix32.
func LengthPrefixed32(payload []byte) []byte {
	rec := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(rec, uint32(len(payload)))
	copy(rec[4:], payload)
	return rec
}
