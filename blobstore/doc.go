// Package blobstore provides read-only access to immutable data files.
//
// A Blob is anything that supports positioned reads and reports its size,
// which is exactly what the file collection needs, so every Blob can back a
// collection directly. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory mapped (blobs implement Mappable)
//   - FileStore: local filesystem, positioned reads through internal/fs
//   - MemoryStore: in-process blobs for tests
//   - s3.Store: Amazon S3 with range reads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	}
//
//	type Blob interface {
//	    io.ReaderAt
//	    io.Closer
//	    Size() int64
//	}
package blobstore
