package testutil

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedRecords(t *testing.T) {
	rng := NewRNG(4711)

	recs := rng.FixedRecords(8, 16)

	require.Len(t, recs, 8)
	for i, rec := range recs {
		assert.Len(t, rec, 16)
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(rec))
	}
}

func TestVariableRecords(t *testing.T) {
	rng := NewRNG(4711)

	recs := rng.VariableRecords(100, 32)

	require.Len(t, recs, 100)
	for i, rec := range recs {
		n := int(binary.LittleEndian.Uint16(rec))
		assert.Equal(t, 2+n, len(rec))
		assert.GreaterOrEqual(t, n, 4)
		assert.LessOrEqual(t, n, 32)
		assert.Equal(t, uint32(i), binary.LittleEndian.Uint32(rec[2:]))
	}
}

func TestDeterministic(t *testing.T) {
	a := NewRNG(42).FixedRecords(4, 8)
	b := NewRNG(42).FixedRecords(4, 8)
	assert.Equal(t, a, b)

	rng := NewRNG(42)
	first := rng.Ordinals(10, 100)
	rng.Reset()
	assert.Equal(t, first, rng.Ordinals(10, 100))
}

func TestZipfOrdinals(t *testing.T) {
	rng := NewRNG(7)

	ords := rng.ZipfOrdinals(10000, 1000, 1.5)

	low := 0
	for _, o := range ords {
		require.Less(t, o, uint32(1000))
		if o < 10 {
			low++
		}
	}
	// The hottest 1% of ordinals should take far more than 1% of accesses.
	assert.Greater(t, low, 5000)
}
