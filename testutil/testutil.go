package testutil

import (
	"encoding/binary"
	"math/rand"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint32n returns a pseudo-random number in [0,n).
func (r *RNG) Uint32n(n uint32) uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return uint32(r.rand.Int63n(int64(n)))
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Fill fills dst with random bytes.
func (r *RNG) Fill(dst []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, _ = r.rand.Read(dst)
}

// FixedRecords returns num records of size bytes each. The first four bytes
// of every record (when size >= 4) hold its ordinal, little-endian, so
// corrupted or misplaced reads are easy to spot.
func (r *RNG) FixedRecords(num, size int) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([][]byte, num)
	for i := range records {
		rec := make([]byte, size)
		_, _ = r.rand.Read(rec)
		if size >= 4 {
			binary.LittleEndian.PutUint32(rec, uint32(i))
		}
		records[i] = rec
	}
	return records
}

// VariableRecords returns num records made of a little-endian uint16 payload
// length followed by 4 to maxPayload payload bytes. The payload starts with
// the record's ordinal.
func (r *RNG) VariableRecords(num, maxPayload int) [][]byte {
	maxPayload = max(maxPayload, 4)

	r.mu.Lock()
	defer r.mu.Unlock()

	records := make([][]byte, num)
	for i := range records {
		n := 4 + r.rand.Intn(maxPayload-3)
		rec := make([]byte, 2+n)
		binary.LittleEndian.PutUint16(rec, uint16(n))
		_, _ = r.rand.Read(rec[2:])
		binary.LittleEndian.PutUint32(rec[2:], uint32(i))
		records[i] = rec
	}
	return records
}

// SortedKeyRecords returns records of size bytes whose leading uint32 keys
// are the given keys, in order.
func SortedKeyRecords(keys []uint32, size int) [][]byte {
	size = max(size, 4)
	records := make([][]byte, len(keys))
	for i, k := range keys {
		rec := make([]byte, size)
		binary.LittleEndian.PutUint32(rec, k)
		records[i] = rec
	}
	return records
}

// Ordinals returns n uniformly distributed ordinals in [0, count).
func (r *RNG) Ordinals(n int, count uint32) []uint32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(r.rand.Int63n(int64(count)))
	}
	return out
}

// ZipfOrdinals returns n ordinals in [0, count) following Zipf's law with
// skew s > 1. Low ordinals are the hot ones, which is the access pattern a
// cache is meant for.
func (r *RNG) ZipfOrdinals(n int, count uint32, s float64) []uint32 {
	if s <= 1 {
		s = 1.0001
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	z := rand.NewZipf(r.rand, s, 1, uint64(count-1))
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(z.Uint64())
	}
	return out
}
