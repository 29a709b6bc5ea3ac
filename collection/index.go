package collection

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
)

const indexScanBufferSize = 64 << 10

// scanOffsets walks the variable-size records of a region sequentially and
// returns their offsets relative to the region start, plus one trailing
// offset equal to the region length. Record i spans offsets[i]:offsets[i+1].
//
// A non-zero h.Count bounds the scan by records, otherwise h.Length bounds
// it by bytes. When both are set they must agree.
func scanOffsets(r io.Reader, h Header, res SizeResolver) ([]uint32, error) {
	if res == nil {
		return nil, ErrNoSizeResolver
	}
	prefixSize := res.PrefixSize()
	if prefixSize <= 0 {
		return nil, fmt.Errorf("%w: resolver prefix size %d", ErrInvalidConfig, prefixSize)
	}

	br := bufio.NewReaderSize(r, indexScanBufferSize)
	prefix := make([]byte, prefixSize)

	byCount := h.Count > 0
	capHint := int(h.Count) + 1
	if !byCount {
		capHint = int(h.Length/uint32(prefixSize)) / 4
	}
	offsets := make([]uint32, 1, max(capHint, 1))

	var off uint64
	for {
		if byCount && uint32(len(offsets)-1) == h.Count {
			break
		}
		if !byCount && off == uint64(h.Length) {
			break
		}

		start := int64(h.StartPosition) + int64(off)
		if _, err := io.ReadFull(br, prefix); err != nil {
			return nil, scanError(err, start, "record prefix")
		}
		size, err := res.RecordSize(prefix)
		if err != nil {
			return nil, fmt.Errorf("record at %d: %w", start, err)
		}
		if size < prefixSize {
			return nil, fmt.Errorf("%w: record at %d has size %d below its prefix", ErrInvalidHeader, start, size)
		}
		if _, err := br.Discard(size - prefixSize); err != nil {
			return nil, scanError(err, start, "record body")
		}

		off += uint64(size)
		if !byCount && off > uint64(h.Length) {
			return nil, truncated("record at %d ends at %d, past region length %d", start, off, h.Length)
		}
		if off > math.MaxUint32 {
			return nil, fmt.Errorf("%w: region exceeds 4 GiB", ErrInvalidHeader)
		}
		if len(offsets) == math.MaxUint32 {
			return nil, fmt.Errorf("%w: too many records", ErrInvalidHeader)
		}
		offsets = append(offsets, uint32(off))
	}

	if byCount && h.Length > 0 && uint64(h.Length) != off {
		return nil, fmt.Errorf("%w: %d records span %d bytes, header says %d", ErrInvalidHeader, h.Count, off, h.Length)
	}
	return offsets, nil
}

func scanError(err error, off int64, what string) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncated("%s at %d", what, off)
	}
	return &IOError{Op: "scan " + what, Offset: off, Err: err}
}
