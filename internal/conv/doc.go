// Package conv provides checked integer conversions.
//
// The data format stores counts, lengths and offsets as 32-bit words, so
// values computed as int or int64 are narrowed through these helpers when
// a region is written.
package conv
