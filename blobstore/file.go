package blobstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	"github.com/hupe1980/recgo/internal/fs"
)

// FileStore implements BlobStore with positioned reads on regular files.
// Unlike LocalStore nothing is mapped, so every read is a pread syscall.
type FileStore struct {
	root string
	fs   fs.FileSystem
}

// NewFileStore creates a FileStore rooted at root. A nil fsys uses fs.Default.
func NewFileStore(root string, fsys fs.FileSystem) *FileStore {
	if fsys == nil {
		fsys = fs.Default
	}
	return &FileStore{root: root, fs: fsys}
}

// Open opens the named file for reading.
func (s *FileStore) Open(_ context.Context, name string) (Blob, error) {
	f, err := s.fs.Open(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileBlob{File: f, size: fi.Size()}, nil
}

type fileBlob struct {
	fs.File
	size int64
}

func (b *fileBlob) Size() int64 {
	return b.size
}
