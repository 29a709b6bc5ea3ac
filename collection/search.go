package collection

import (
	"context"
	"encoding/binary"
	"fmt"
)

// Comparer compares a record against the search target. It returns a
// negative number if the record sorts before the target, zero if it matches
// and a positive number if it sorts after.
type Comparer func(data []byte) int

// BinarySearch returns the lowest ordinal whose record compares equal, or
// ErrNotFound. The collection must be sorted consistently with cmp.
func BinarySearch(ctx context.Context, c Collection, cmp Comparer) (uint32, error) {
	return BinarySearchRange(ctx, c, 0, c.Count(), cmp)
}

// BinarySearchRange is BinarySearch restricted to ordinals [lower, upper).
func BinarySearchRange(ctx context.Context, c Collection, lower, upper uint32, cmp Comparer) (uint32, error) {
	if upper > c.Count() {
		return 0, &RangeError{Ordinal: upper - 1, Count: c.Count()}
	}
	if lower > upper {
		return 0, fmt.Errorf("%w: lower bound %d above upper bound %d", ErrInvalidConfig, lower, upper)
	}

	var item Item
	defer item.Release()

	lo, hi := lower, upper
	for lo < hi {
		mid := lo + (hi-lo)/2
		if err := c.Get(ctx, mid, &item); err != nil {
			return 0, err
		}
		if cmp(item.Data) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	if lo == upper {
		return 0, ErrNotFound
	}
	if err := c.Get(ctx, lo, &item); err != nil {
		return 0, err
	}
	if cmp(item.Data) != 0 {
		return 0, ErrNotFound
	}
	return lo, nil
}

// GetUint32 returns the little-endian uint32 at the start of record i.
func GetUint32(ctx context.Context, c Collection, i uint32) (uint32, error) {
	var item Item
	if err := c.Get(ctx, i, &item); err != nil {
		return 0, err
	}
	defer c.Release(&item)

	if len(item.Data) < 4 {
		return 0, truncated("record %d has %d bytes, need 4", i, len(item.Data))
	}
	return binary.LittleEndian.Uint32(item.Data), nil
}

// GetInt32 returns the little-endian int32 at the start of record i.
func GetInt32(ctx context.Context, c Collection, i uint32) (int32, error) {
	v, err := GetUint32(ctx, c, i)
	return int32(v), err
}

// Uint32Comparer compares the leading little-endian uint32 of a record
// with target. Records shorter than four bytes order before every target
// and never match.
func Uint32Comparer(target uint32) Comparer {
	return func(data []byte) int {
		if len(data) < 4 {
			return -1
		}
		v := binary.LittleEndian.Uint32(data)
		switch {
		case v < target:
			return -1
		case v > target:
			return 1
		default:
			return 0
		}
	}
}
