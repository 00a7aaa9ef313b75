package storage

import (
	"context"
	"sync"

	"github.com/ezoic/tsreg/pkg/errors"
)

// MemoryStore keeps blobs in process memory. Contents are lost on exit.
type MemoryStore struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	baseURL string
}

// NewMemoryStore creates an empty store whose URLs are rooted at baseURL.
func NewMemoryStore(baseURL string) *MemoryStore {
	return &MemoryStore{
		blobs:   make(map[string][]byte),
		baseURL: baseURL,
	}
}

func memoryKey(container, key string) string {
	return container + "/" + key
}

// Put implements Store.
func (s *MemoryStore) Put(ctx context.Context, container, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.NewStorageError("put", container, key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[memoryKey(container, key)] = append([]byte(nil), data...)
	return BlobURL(s.baseURL, container, key), nil
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, container, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStorageError("get", container, key, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.blobs[memoryKey(container, key)]
	if !ok {
		return nil, errors.NewStorageError("get", container, key, errors.ErrBlobNotFound)
	}
	return append([]byte(nil), data...), nil
}

// Exists implements Store.
func (s *MemoryStore) Exists(ctx context.Context, container, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewStorageError("exists", container, key, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.blobs[memoryKey(container, key)]
	return ok, nil
}

// Delete removes a blob. Deleting a missing blob is not an error.
func (s *MemoryStore) Delete(container, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, memoryKey(container, key))
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }
