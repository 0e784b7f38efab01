package storage

import (
	"context"
	"sync"

	"github.com/deckforge/deckforge/pkg/errors"
)

// MemStore keeps archives in process memory. mem:// URIs share a single
// process-wide store, so an archive written under one key can be opened
// again later in the same process.
type MemStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// sharedMemStore backs every mem:// URI.
var sharedMemStore = NewMemStore()

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.data[key]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "no such key: %s", key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemStore) WriteBytes(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(data))
	copy(stored, data)
	s.data[key] = stored
	return nil
}

func (s *MemStore) Close() error { return nil }
