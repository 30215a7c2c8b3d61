package predict

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/inference"
)

// PairSource supplies the serving transformer and model
type PairSource interface {
	Get(ctx context.Context) (*inference.Pair, error)
}

// Service is the prediction entry point used by the serving layer
type Service struct {
	pairs    PairSource
	mapping  inference.FieldMapping
	approved string
	rejected string
	logger   *zap.Logger
}

// NewService creates a new prediction service
func NewService(
	pairs PairSource,
	mapping inference.FieldMapping,
	approved string,
	rejected string,
	logger *zap.Logger,
) *Service {
	return &Service{
		pairs:    pairs,
		mapping:  mapping,
		approved: approved,
		rejected: rejected,
		logger:   logger,
	}
}

// Predict maps the record's fields to schema columns and returns the
// decision for it.
func (s *Service) Predict(ctx context.Context, record core.Record) (*core.Prediction, error) {
	pair, err := s.pairs.Get(ctx)
	if err != nil {
		s.logger.Error("Failed to load serving artifacts", zap.Error(err))
		return nil, err
	}

	table := inference.ToTable(s.mapping.Apply(record), pair.Transformer.InputColumns())
	label, err := Predict(pair.Transformer, pair.Model, table)
	if err != nil {
		s.logger.Warn("Prediction failed", zap.String("run_id", pair.Model.RunID()), zap.Error(err))
		return nil, err
	}

	status := s.rejected
	if label == 1 {
		status = s.approved
	}

	s.logger.Debug("Prediction",
		zap.Int("label", label),
		zap.String("status", status),
		zap.String("run_id", pair.Model.RunID()))

	return &core.Prediction{
		Label:       label,
		Status:      status,
		RunID:       pair.Model.RunID(),
		PredictedAt: time.Now(),
	}, nil
}
