package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// FilesystemStore keeps each blob as a file at <root>/<bucket>/<key>
type FilesystemStore struct {
	root   string
	logger *zap.Logger
}

// NewFilesystemStore creates a new filesystem artifact store
func NewFilesystemStore(root string, logger *zap.Logger) (*FilesystemStore, error) {
	if root == "" {
		return nil, fmt.Errorf("artifact root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &FilesystemStore{root: root, logger: logger}, nil
}

func (s *FilesystemStore) path(bucket, key string) (string, error) {
	rel := filepath.Join(bucket, filepath.FromSlash(key))
	if bucket == "" || key == "" || strings.HasPrefix(key, "/") || strings.ContainsAny(bucket, `/\`) || !filepath.IsLocal(rel) {
		return "", fmt.Errorf("invalid artifact location %q/%q", bucket, key)
	}
	return filepath.Join(s.root, rel), nil
}

// Get reads a blob
func (s *FilesystemStore) Get(ctx context.Context, bucket, key string) ([]byte, error) {
	path, err := s.path(bucket, key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound("filesystem", bucket, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}
	return data, nil
}

// Put writes data to a temporary file in the target directory and renames
// it into place, so readers see either the old or the new blob.
func (s *FilesystemStore) Put(ctx context.Context, bucket, key string, data []byte) error {
	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close artifact: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to commit artifact: %w", err)
	}

	s.logger.Debug("Wrote artifact", zap.String("path", path), zap.Int("bytes", len(data)))
	return nil
}

// Delete removes a blob
func (s *FilesystemStore) Delete(ctx context.Context, bucket, key string) error {
	path, err := s.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete artifact: %w", err)
	}
	return nil
}

// Close is a no-op
func (s *FilesystemStore) Close() error { return nil }
