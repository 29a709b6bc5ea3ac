// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	f, err := recgo.Open(ctx, recgo.Remote(store, "devices.dat"))
//	c, err := f.Collection(ctx, 0, recgo.Fixed(16), recgo.Config{Capacity: 4096, Concurrency: 8})
//
// Every record read is a ranged GetObject, so remote collections are almost
// always wrapped in a cache.
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
