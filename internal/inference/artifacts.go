package inference

import (
	"context"
	"errors"

	"github.com/mikey/loan-predictor/internal/classifier"
	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/transform"
)

func fetch(ctx context.Context, store core.ArtifactStore, bucket, key, op string) ([]byte, error) {
	data, err := store.Get(ctx, bucket, key)
	if err == nil {
		return data, nil
	}
	if errors.Is(err, core.ErrArtifactNotFound) {
		return nil, core.NewError(core.ErrArtifactNotFound, component, op, err)
	}
	return nil, core.NewError(nil, component, op, err)
}

// LoadModel fetches and decodes the fitted model stored at bucket/key.
func LoadModel(ctx context.Context, store core.ArtifactStore, bucket, key string) (*classifier.LogisticRegression, error) {
	data, err := fetch(ctx, store, bucket, key, "load model")
	if err != nil {
		return nil, err
	}
	m, err := classifier.Decode(data)
	if err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "load model", err)
	}
	return m, nil
}

// LoadTransformer fetches and decodes the fitted transformer at bucket/key.
func LoadTransformer(ctx context.Context, store core.ArtifactStore, bucket, key string) (*transform.Fitted, error) {
	data, err := fetch(ctx, store, bucket, key, "load transformer")
	if err != nil {
		return nil, err
	}
	ft, err := transform.Decode(data)
	if err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "load transformer", err)
	}
	return ft, nil
}
