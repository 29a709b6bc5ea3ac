package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hupe1980/recgo/internal/mmap"
)

// LocalStore implements BlobStore using memory-mapped local files.
type LocalStore struct {
	root string
}

// NewLocalStore creates a new LocalStore rooted at the given directory.
func NewLocalStore(root string) *LocalStore {
	return &LocalStore{root: root}
}

// Open maps the named file. Lookups run against the mapping without
// syscalls, which suits the random access pattern of record lookups.
func (s *LocalStore) Open(_ context.Context, name string) (Blob, error) {
	m, err := mmap.Open(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// Advice is a hint; a kernel that rejects it still serves the mapping.
	_ = m.Advise(mmap.AccessRandom)
	return &localBlob{m: m}, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	return readAtBounded(b.m.Bytes(), p, off)
}

func (b *localBlob) Close() error {
	return b.m.Close()
}

func (b *localBlob) Size() int64 {
	return int64(b.m.Size())
}

func (b *localBlob) Bytes() ([]byte, error) {
	return b.m.Bytes(), nil
}

// Prefetch asks the kernel to page in [off, off+n) of the mapping.
func (b *localBlob) Prefetch(off, n int64) error {
	r, err := b.m.Region(int(off), int(n))
	if err != nil {
		return err
	}
	return r.Advise(mmap.AccessWillNeed)
}
