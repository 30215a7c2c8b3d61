package ports

import (
	"github.com/mikey/loan-predictor/internal/core"
)

// ArtifactStore is a blob store backend that holds resources until closed
type ArtifactStore interface {
	core.ArtifactStore

	// Close releases connections held by the backend
	Close() error
}
