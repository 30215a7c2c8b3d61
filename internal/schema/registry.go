package schema

import (
	"sync"

	"go.uber.org/zap"
)

// Registry loads the schema once per process and hands out the cached copy.
type Registry struct {
	path   string
	logger *zap.Logger

	mu     sync.RWMutex
	schema *Schema
}

// NewRegistry creates a registry for the schema resource at path
func NewRegistry(path string, logger *zap.Logger) *Registry {
	return &Registry{path: path, logger: logger}
}

// Get returns the cached schema, loading it on first use.
func (r *Registry) Get() (*Schema, error) {
	r.mu.RLock()
	s := r.schema
	r.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.schema != nil {
		return r.schema, nil
	}
	return r.loadLocked()
}

// Reload replaces the cached schema with a fresh copy from disk. On failure
// the previous schema stays in place.
func (r *Registry) Reload() (*Schema, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked()
}

func (r *Registry) loadLocked() (*Schema, error) {
	s, err := Load(r.path)
	if err != nil {
		r.logger.Error("Failed to load schema", zap.String("path", r.path), zap.Error(err))
		return nil, err
	}
	r.schema = s
	r.logger.Info("Loaded schema",
		zap.String("path", r.path),
		zap.Strings("num_features", s.numFeatures),
		zap.Strings("num_feature2", s.numFeature2),
		zap.Strings("oh_columns", s.ohColumns),
		zap.Strings("drop_columns", s.dropColumns),
		zap.String("target_column", s.targetColumn))
	return s, nil
}
