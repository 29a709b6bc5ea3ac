package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/hupe1980/recgo"
)

func inspect(ctx context.Context, c Config, w io.Writer) error {
	f, coll, err := openCollection(ctx, c)
	if err != nil {
		return err
	}
	defer f.Close()

	h, err := f.Header(c.Position, recgo.Layout{ElementSize: c.ElementSize, Counted: c.Counted})
	if err != nil {
		return err
	}
	s := coll.State()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "file\t%s\n", f.Name())
	fmt.Fprintf(tw, "size\t%d\n", f.Size())
	fmt.Fprintf(tw, "mapped\t%t\n", f.Mapped())
	fmt.Fprintf(tw, "collection\t%s\n", s.ID)
	fmt.Fprintf(tw, "kind\t%s\n", s.Kind)
	fmt.Fprintf(tw, "start\t%d\n", h.StartPosition)
	fmt.Fprintf(tw, "count\t%d\n", s.Count)
	fmt.Fprintf(tw, "element size\t%d\n", s.ElementSize)
	fmt.Fprintf(tw, "length\t%d\n", s.Length)
	fmt.Fprintf(tw, "loaded bytes\t%d\n", s.LoadedBytes)
	if s.Stripes > 0 {
		fmt.Fprintf(tw, "stripes\t%d\n", s.Stripes)
	}
	if s.Capacity > 0 {
		fmt.Fprintf(tw, "capacity\t%d\n", s.Capacity)
		fmt.Fprintf(tw, "shards\t%d\n", s.Shards)
	}
	return tw.Flush()
}
