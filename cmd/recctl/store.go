package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/recgo"
	miniostore "github.com/hupe1980/recgo/blobstore/minio"
	"github.com/hupe1980/recgo/blobstore/s3"
	"github.com/hupe1980/recgo/collection"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

func location(ctx context.Context, c Config) (recgo.Location, error) {
	switch strings.ToUpper(c.Store) {
	case "", "LOCAL":
		return recgo.Local(c.File), nil
	case "S3":
		opts := []s3.Option{s3.WithPrefix(c.Prefix), s3.WithRegion(c.Region)}
		if c.Endpoint != "" {
			opts = append(opts, s3.WithEndpoint(c.Endpoint, true))
		}
		store, err := s3.New(ctx, c.Bucket, opts...)
		if err != nil {
			return recgo.Location{}, err
		}
		return recgo.Remote(store, c.File), nil
	case "MINIO":
		store, err := minioStore(c)
		if err != nil {
			return recgo.Location{}, err
		}
		return recgo.Remote(store, c.File), nil
	default:
		return recgo.Location{}, fmt.Errorf("unknown store %q", c.Store)
	}
}

func minioStore(c Config) (*miniostore.Store, error) {
	client, err := minio.New(c.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(c.AccessKey, c.SecretKey, ""),
		Secure: c.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}
	return miniostore.NewStore(client, c.Bucket, c.Prefix), nil
}

// openCollection opens the region described by c. Closing the returned file
// closes the collection.
func openCollection(ctx context.Context, c Config, extra ...recgo.Option) (*recgo.File, *recgo.Collection, error) {
	loc, err := location(ctx, c)
	if err != nil {
		return nil, nil, err
	}

	opts := []recgo.Option{recgo.WithLogLevel(logLevel(c.LogLevel))}
	if c.Mmap {
		opts = append(opts, recgo.WithMmap())
	}
	if c.ElementSize == 0 {
		opts = append(opts, recgo.WithSizeResolver(collection.LengthPrefix16{}))
	}
	opts = append(opts, extra...)

	f, err := recgo.Open(ctx, loc, opts...)
	if err != nil {
		return nil, nil, err
	}

	layout := recgo.Layout{ElementSize: c.ElementSize, Counted: c.Counted}
	cfg := recgo.Config{Capacity: c.Capacity, Concurrency: c.Concurrency, Loaded: c.Loaded}
	coll, err := f.Collection(ctx, c.Position, layout, cfg)
	if err != nil {
		_ = f.Close()
		return nil, nil, err
	}
	return f, coll, nil
}
