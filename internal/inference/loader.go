package inference

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
)

// Pair is a transformer and model loaded together. Neither is ever mutated
// after loading, so a Pair may be shared by concurrent predictions.
type Pair struct {
	Transformer core.FeatureTransformer
	Model       core.Classifier
	LoadedAt    time.Time
}

// Loader caches the serving pair. A zero ttl keeps the pair until Invalidate.
type Loader struct {
	store          core.ArtifactStore
	bucket         string
	transformerKey string
	modelKey       string
	ttl            time.Duration
	logger         *zap.Logger
	now            func() time.Time

	mu   sync.RWMutex
	pair *Pair
}

// NewLoader creates a new artifact pair loader
func NewLoader(store core.ArtifactStore, bucket, transformerKey, modelKey string, ttl time.Duration, logger *zap.Logger) *Loader {
	return &Loader{
		store:          store,
		bucket:         bucket,
		transformerKey: transformerKey,
		modelKey:       modelKey,
		ttl:            ttl,
		logger:         logger,
		now:            time.Now,
	}
}

func (l *Loader) fresh(p *Pair) bool {
	return p != nil && (l.ttl <= 0 || l.now().Sub(p.LoadedAt) < l.ttl)
}

// Get returns the cached pair, loading it from the store when absent or
// expired. A failed load leaves the cache unchanged.
func (l *Loader) Get(ctx context.Context) (*Pair, error) {
	l.mu.RLock()
	p := l.pair
	l.mu.RUnlock()
	if l.fresh(p) {
		return p, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fresh(l.pair) {
		return l.pair, nil
	}

	ft, err := LoadTransformer(ctx, l.store, l.bucket, l.transformerKey)
	if err != nil {
		return nil, err
	}
	model, err := LoadModel(ctx, l.store, l.bucket, l.modelKey)
	if err != nil {
		return nil, err
	}

	l.pair = &Pair{Transformer: ft, Model: model, LoadedAt: l.now()}
	l.logger.Info("Loaded serving artifacts",
		zap.String("bucket", l.bucket),
		zap.String("transformer_key", l.transformerKey),
		zap.String("model_key", l.modelKey),
		zap.String("run_id", ft.RunID()))
	return l.pair, nil
}

// Invalidate drops the cached pair so the next Get reloads it.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	l.pair = nil
	l.mu.Unlock()
}
