package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	miniostore "github.com/hupe1980/recgo/blobstore/minio"
	"github.com/hupe1980/recgo/datafile"
	"github.com/hupe1980/recgo/testutil"
)

// gen writes a data file holding a single region of random records, either
// to a local path or into a MinIO bucket.
func gen(ctx context.Context, c Config, w io.Writer) error {
	if c.N < 0 {
		return fmt.Errorf("invalid record count %d", c.N)
	}

	rng := testutil.NewRNG(c.Seed)
	dw := datafile.NewWriter()

	var err error
	if c.ElementSize > 0 {
		_, err = dw.AddFixed(c.ElementSize, rng.FixedRecords(c.N, int(c.ElementSize)), c.Counted)
	} else {
		_, err = dw.AddVariable(rng.VariableRecords(c.N, 64), c.Counted)
	}
	if err != nil {
		return err
	}

	switch strings.ToUpper(c.Store) {
	case "", "LOCAL":
		err = dw.WriteFile(c.File)
	case "MINIO":
		var store *miniostore.Store
		if store, err = minioStore(c); err == nil {
			err = store.Put(ctx, c.File, dw.Bytes())
		}
	default:
		return fmt.Errorf("gen cannot write to store %q", c.Store)
	}
	if err != nil {
		return err
	}

	r := dw.Regions()[0]
	fmt.Fprintf(w, "wrote %s: %d bytes, region at %d, count %d, length %d\n",
		c.File, dw.Len(), r.Position, c.N, r.Header.Length)
	return nil
}
