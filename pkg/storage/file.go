package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/deckforge/deckforge/pkg/errors"
)

// FileStore reads and writes archives on the local filesystem. Parent
// directories are created on write.
type FileStore struct{}

// NewFileStore returns a filesystem-backed store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

func (s *FileStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(key)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeNotFound, "no such file: %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}
	return data, nil
}

func (s *FileStore) WriteBytes(ctx context.Context, key string, data []byte) error {
	if dir := filepath.Dir(key); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeStorage, err, "create %s", dir)
		}
	}
	if err := os.WriteFile(key, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
