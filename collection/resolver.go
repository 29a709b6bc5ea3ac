package collection

import (
	"encoding/binary"
	"fmt"
)

// SizeResolver determines the size of a variable-size record from a fixed
// size prefix at its start.
type SizeResolver interface {
	// PrefixSize is the number of leading bytes RecordSize needs.
	PrefixSize() int
	// RecordSize returns the full record size, prefix included.
	RecordSize(prefix []byte) (int, error)
}

// SizeResolverFunc adapts a function to a SizeResolver.
type SizeResolverFunc struct {
	Prefix int
	Fn     func(prefix []byte) (int, error)
}

func (f SizeResolverFunc) PrefixSize() int { return f.Prefix }

func (f SizeResolverFunc) RecordSize(prefix []byte) (int, error) { return f.Fn(prefix) }

// LengthPrefix16 resolves records that start with a little-endian uint16
// payload length.
type LengthPrefix16 struct{}

func (LengthPrefix16) PrefixSize() int { return 2 }

func (LengthPrefix16) RecordSize(prefix []byte) (int, error) {
	return 2 + int(binary.LittleEndian.Uint16(prefix)), nil
}

// LengthPrefix32 resolves records that start with a little-endian uint32
// payload length.
type LengthPrefix32 struct{}

func (LengthPrefix32) PrefixSize() int { return 4 }

func (LengthPrefix32) RecordSize(prefix []byte) (int, error) {
	n := binary.LittleEndian.Uint32(prefix)
	if uint64(n)+4 > 1<<31-1 {
		return 0, fmt.Errorf("%w: record length %d", ErrInvalidHeader, n)
	}
	return 4 + int(n), nil
}
