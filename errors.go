package recgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/hupe1980/recgo/collection"
)

var (
	// ErrTruncatedInput is returned when the file holds fewer bytes than a
	// header or record prefix declares.
	ErrTruncatedInput = collection.ErrTruncatedInput

	// ErrIO is matched by every failed read of the underlying file.
	ErrIO = collection.ErrIO

	// ErrIndexOutOfRange is returned by Get for ordinals >= Count.
	ErrIndexOutOfRange = collection.ErrIndexOutOfRange

	// ErrCacheExhausted is returned when every cache entry of a shard is pinned.
	ErrCacheExhausted = collection.ErrCacheExhausted

	// ErrNotFound is returned by Search when no record matches.
	ErrNotFound = collection.ErrNotFound

	// ErrClosed is returned by calls on a closed file or collection.
	ErrClosed = collection.ErrClosed

	// ErrInvalidConfig is returned for unusable Config values.
	ErrInvalidConfig = collection.ErrInvalidConfig

	// ErrNoSizeResolver is returned when a variable-size layout has no resolver.
	ErrNoSizeResolver = collection.ErrNoSizeResolver

	// ErrFileNotFound is returned by Open when the location does not exist.
	ErrFileNotFound = errors.New("recgo: file not found")

	// ErrNotCached is returned by Warm for collections without a cache.
	ErrNotCached = errors.New("recgo: collection has no cache")
)

// ErrRegionOutOfBounds indicates a region that does not fit in its file.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrRegionOutOfBounds struct {
	Position int64
	End      int64
	Size     int64
	cause    error
}

func (e *ErrRegionOutOfBounds) Error() string {
	return fmt.Sprintf("region [%d, %d) exceeds file size %d", e.Position, e.End, e.Size)
}

func (e *ErrRegionOutOfBounds) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, blobstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	}

	return err
}
