package factory

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/adapters/store"
	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/ports"
)

// StoreFactory creates artifact stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateArtifactStore creates the artifact store selected by artifact.backend
func (f *StoreFactory) CreateArtifactStore() (ports.ArtifactStore, error) {
	ac, err := f.cfg.GetArtifact()
	if err != nil {
		return nil, core.NewError(core.ErrConfig, "factory", "artifact store", err)
	}
	logger := f.logger.Named("store")

	switch ac.Backend {
	case "memory":
		return store.NewMemoryStore(logger), nil
	case "filesystem":
		return store.NewFilesystemStore(ac.Root, logger)
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(ac.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(ac.SQLitePath, logger)
	case "mysql":
		return store.NewMySQLStore(ac.MySQLDSN, logger)
	case "s3":
		return store.NewS3Store(context.Background(), ac.Region, ac.Endpoint, logger)
	default:
		return nil, core.Errorf(core.ErrConfig, "factory", "artifact store", "unsupported artifact backend: %s", ac.Backend)
	}
}
