package core

import (
	"context"

	"gonum.org/v1/gonum/mat"
)

// ArtifactStore is an opaque blob store addressed by bucket and key
type ArtifactStore interface {
	// Get returns the blob or an error matching ErrArtifactNotFound
	Get(ctx context.Context, bucket, key string) ([]byte, error)

	// Put stores a blob. A reader never observes a partially written blob.
	Put(ctx context.Context, bucket, key string, data []byte) error

	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, bucket, key string) error
}

// FeatureTransformer is a fitted, immutable feature encoder
type FeatureTransformer interface {
	Transform(t Table) (*mat.Dense, error)
	InputColumns() []string
	Width() int
	RunID() string
}

// Classifier is a fitted, immutable binary classifier
type Classifier interface {
	Predict(x mat.Matrix) ([]int, error)
	NumFeatures() int
	RunID() string
}
