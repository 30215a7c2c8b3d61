// Package store implements core.ArtifactStore backends.
package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
)

// MemoryStore is an in-memory implementation of the ArtifactStore interface
type MemoryStore struct {
	blobs  map[string][]byte
	mu     sync.RWMutex
	logger *zap.Logger
}

// NewMemoryStore creates a new in-memory artifact store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		blobs:  make(map[string][]byte),
		logger: logger,
	}
}

func memoryKey(bucket, key string) string {
	return bucket + "\x00" + key
}

// Get retrieves a copy of a stored blob
func (s *MemoryStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[memoryKey(bucket, key)]
	if !ok {
		return nil, notFound("memory", bucket, key)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Put stores a copy of data
func (s *MemoryStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[memoryKey(bucket, key)] = cp
	return nil
}

// Delete removes a blob
func (s *MemoryStore) Delete(ctx context.Context, bucket, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.blobs, memoryKey(bucket, key))
	return nil
}

// Close releases the stored blobs
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Debug("Dropping in-memory artifacts", zap.Int("count", len(s.blobs)))
	s.blobs = make(map[string][]byte)
	return nil
}

func notFound(backend, bucket, key string) error {
	return core.Errorf(core.ErrArtifactNotFound, backend, "get", "%s/%s", bucket, key)
}
