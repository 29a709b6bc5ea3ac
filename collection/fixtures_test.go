package collection_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/hupe1980/recgo/collection"
	"github.com/hupe1980/recgo/datafile"
	"github.com/hupe1980/recgo/testutil"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	records [][]byte
	data    []byte
	header  collection.Header
	opts    []collection.Option
}

func (fx fixture) source() *bytes.Reader {
	return bytes.NewReader(fx.data)
}

// newFixture writes records after a small leading region so that the
// collection under test never starts at offset 0.
func newFixture(t testing.TB, records [][]byte, elementSize uint32, counted bool) fixture {
	t.Helper()

	w := datafile.NewWriter()
	_, err := w.AddFixed(3, [][]byte{{0xAA, 0xBB, 0xCC}}, true)
	require.NoError(t, err)

	var idx int
	if elementSize > 0 {
		idx, err = w.AddFixed(elementSize, records, counted)
	} else {
		idx, err = w.AddVariable(records, counted)
	}
	require.NoError(t, err)

	// Trailing bytes must not leak into the last record.
	_, err = w.AddFixed(1, [][]byte{{0xFF}}, true)
	require.NoError(t, err)

	fx := fixture{
		records: records,
		data:    append([]byte(nil), w.Bytes()...),
		header:  w.Regions()[idx].Header,
	}
	if elementSize == 0 {
		fx.opts = []collection.Option{collection.WithSizeResolver(collection.LengthPrefix16{})}
	}
	return fx
}

func fixedFixture(t testing.TB, n, size int) fixture {
	return newFixture(t, testutil.NewRNG(int64(n*size)).FixedRecords(n, size), uint32(size), false)
}

func variableFixture(t testing.TB, n, maxPayload int, counted bool) fixture {
	return newFixture(t, testutil.NewRNG(int64(n*maxPayload)).VariableRecords(n, maxPayload), 0, counted)
}

type backend struct {
	name string
	open func(t testing.TB, fx fixture) collection.Collection
}

func (fx fixture) with(extra ...collection.Option) []collection.Option {
	return append(append([]collection.Option(nil), fx.opts...), extra...)
}

var backends = []backend{
	{"memory", func(t testing.TB, fx fixture) collection.Collection {
		c, err := collection.NewMemory(fx.header, fx.data, fx.opts...)
		require.NoError(t, err)
		return c
	}},
	{"loaded", func(t testing.TB, fx fixture) collection.Collection {
		c, err := collection.LoadMemory(context.Background(), fx.header, fx.source(), fx.opts...)
		require.NoError(t, err)
		return c
	}},
	{"file", func(t testing.TB, fx fixture) collection.Collection {
		c, err := collection.NewFile(context.Background(), fx.header, fx.source(), fx.with(collection.WithConcurrency(3))...)
		require.NoError(t, err)
		return c
	}},
	{"cache/file", func(t testing.TB, fx fixture) collection.Collection {
		f, err := collection.NewFile(context.Background(), fx.header, fx.source(), fx.with(collection.WithConcurrency(2))...)
		require.NoError(t, err)
		c, err := collection.NewCache(f, collection.Config{Capacity: 8, Concurrency: 2}, collection.WithOwnedSource(true))
		require.NoError(t, err)
		return c
	}},
	{"cache/memory", func(t testing.TB, fx fixture) collection.Collection {
		m, err := collection.NewMemory(fx.header, fx.data, fx.opts...)
		require.NoError(t, err)
		c, err := collection.NewCache(m, collection.Config{Capacity: 4, Concurrency: 1}, collection.WithOwnedSource(true))
		require.NoError(t, err)
		return c
	}},
}

// readAll returns a copy of every record of c.
func readAll(t testing.TB, c collection.Collection) [][]byte {
	t.Helper()

	out := make([][]byte, 0, c.Count())
	for rec, err := range collection.All(context.Background(), c) {
		require.NoError(t, err)
		out = append(out, append([]byte(nil), rec.Data...))
	}
	return out
}

func bytesSource(b []byte) *bytes.Reader {
	return bytes.NewReader(b)
}
