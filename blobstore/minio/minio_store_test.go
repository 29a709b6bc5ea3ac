package minio

import (
	"context"
	"io"
	"testing"

	"github.com/hupe1980/recgo/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMinioStore_Integration requires a running MinIO instance.
// Skip if not available.
func TestMinioStore_Integration(t *testing.T) {
	endpoint := "localhost:9000"
	accessKey := "minioadmin"
	secretKey := "minioadmin"
	bucket := "test-recgo"

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()

	if _, err = client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "test.dat", data))
	defer func() { _ = store.Delete(ctx, "test.dat") }()

	blob, err := store.Open(ctx, "test.dat")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, len(data))
	n, err := blob.ReadAt(buf, 0)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.Equal(t, data, buf)

	part := make([]byte, 5)
	_, err = blob.ReadAt(part, 6)
	require.NoError(t, err)
	assert.Equal(t, "minio", string(part))

	n, err = blob.ReadAt(part, int64(len(data))-2)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "ld", string(part[:n]))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "test.dat")

	_, err = store.Open(ctx, "missing.dat")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}

func TestMinioBlob_ReadsUnderOpenContext(t *testing.T) {
	client, err := minio.New("127.0.0.1:1", &minio.Options{
		Creds: credentials.NewStaticV4("key", "secret", ""),
	})
	require.NoError(t, err)

	store := NewStore(client, "bucket", "prefix/")
	ctx, cancel := context.WithCancel(context.Background())
	b := store.blob(ctx, store.key("data.bin"), 16)
	assert.Equal(t, ctx, b.ctx)

	cancel()
	_, err = b.ReadAt(make([]byte, 4), 0)
	assert.Error(t, err)

	n, err := b.ReadAt(make([]byte, 4), 16)
	assert.Zero(t, n)
	assert.ErrorIs(t, err, io.EOF)
}
