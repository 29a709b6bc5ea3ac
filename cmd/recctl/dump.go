package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
)

// dump prints the first Limit records as hex. A negative Limit prints all.
func dump(ctx context.Context, c Config, w io.Writer) error {
	f, coll, err := openCollection(ctx, c)
	if err != nil {
		return err
	}
	defer f.Close()

	it := coll.Iterator()
	defer it.Close()

	for n := 0; (c.Limit < 0 || n < c.Limit) && it.Next(ctx); n++ {
		fmt.Fprintf(w, "%d\t%s\n", it.Ordinal(), hex.EncodeToString(it.Data()))
	}
	return it.Err()
}
