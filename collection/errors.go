package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncatedInput is returned when a source holds fewer bytes than its
	// header or a record prefix declares.
	ErrTruncatedInput = errors.New("collection: truncated input")

	// ErrIO is matched by every *IOError.
	ErrIO = errors.New("collection: i/o error")

	// ErrIndexOutOfRange is returned by Get for ordinals >= Count.
	ErrIndexOutOfRange = errors.New("collection: index out of range")

	// ErrCacheExhausted is returned when every entry of a cache shard is pinned.
	ErrCacheExhausted = errors.New("collection: cache exhausted")

	// ErrNotFound is returned by BinarySearch when no record matches.
	ErrNotFound = errors.New("collection: not found")

	// ErrClosed is returned by calls on a closed collection.
	ErrClosed = errors.New("collection: closed")

	// ErrInvalidConfig is returned for unusable Config values.
	ErrInvalidConfig = errors.New("collection: invalid config")

	// ErrNoSizeResolver is returned when a variable-size collection is created
	// without a SizeResolver.
	ErrNoSizeResolver = errors.New("collection: variable-size records require a size resolver")

	// ErrInvalidHeader is returned for headers that cannot describe a region.
	ErrInvalidHeader = errors.New("collection: invalid header")
)

// IOError reports a failed read on the underlying source.
//
// It matches ErrIO and the wrapped cause with errors.Is.
type IOError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("collection: %s at offset %d: %v", e.Op, e.Offset, e.Err)
}

func (e *IOError) Unwrap() []error { return []error{ErrIO, e.Err} }

// RangeError reports an ordinal outside the collection.
type RangeError struct {
	Ordinal uint32
	Count   uint32
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("collection: ordinal %d out of range [0, %d)", e.Ordinal, e.Count)
}

func (e *RangeError) Unwrap() error { return ErrIndexOutOfRange }

func truncated(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrTruncatedInput}, args...)...)
}

func invalidFixedHeader(h Header) error {
	return fmt.Errorf("%w: %d records of %d bytes exceed length %d", ErrInvalidHeader, h.Count, h.ElementSize, h.Length)
}
