// Package pipeline runs a complete training run: validation, transformation,
// model training, evaluation and publication of the serving pair.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/classifier"
	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/dataset"
	"github.com/mikey/loan-predictor/internal/executor"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/schema"
	"github.com/mikey/loan-predictor/internal/validation"
)

// ErrTrainingInProgress is returned when a run is triggered while another
// one holds the pipeline.
var ErrTrainingInProgress = errors.New("training already in progress")

// Publication locates the serving pair written for accepted models.
type Publication struct {
	Bucket         string
	TransformerKey string
	ModelKey       string
}

// Invalidator drops cached serving artifacts.
type Invalidator interface {
	Invalidate()
}

// TrainPipeline runs training runs one at a time.
type TrainPipeline struct {
	schemas     *schema.Registry
	validator   *validation.Validator
	executor    *executor.Executor
	store       core.ArtifactStore
	ingestion   core.IngestionArtifact
	publication Publication
	options     classifier.Options
	minAccuracy float64
	notifier    ports.Notifier
	cache       Invalidator
	logger      *zap.Logger

	mu sync.Mutex
}

// Config bundles the collaborators of a TrainPipeline.
type Config struct {
	Schemas     *schema.Registry
	Validator   *validation.Validator
	Executor    *executor.Executor
	Store       core.ArtifactStore
	Ingestion   core.IngestionArtifact
	Publication Publication
	Options     classifier.Options
	MinAccuracy float64
	Notifier    ports.Notifier
	Cache       Invalidator
	Logger      *zap.Logger
}

// New creates a new training pipeline. Notifier and Cache are optional.
func New(cfg Config) *TrainPipeline {
	return &TrainPipeline{
		schemas:     cfg.Schemas,
		validator:   cfg.Validator,
		executor:    cfg.Executor,
		store:       cfg.Store,
		ingestion:   cfg.Ingestion,
		publication: cfg.Publication,
		options:     cfg.Options,
		minAccuracy: cfg.MinAccuracy,
		notifier:    cfg.Notifier,
		cache:       cfg.Cache,
		logger:      cfg.Logger,
	}
}

// Run performs one training run. It fails with ErrTrainingInProgress instead
// of waiting when another run is active.
func (p *TrainPipeline) Run(ctx context.Context) (*core.TrainingResult, error) {
	if !p.mu.TryLock() {
		return nil, ErrTrainingInProgress
	}
	defer p.mu.Unlock()

	started := time.Now()
	result := &core.TrainingResult{StartedAt: started}

	err := p.run(ctx, result)
	result.Duration = time.Since(started)
	result.Err = err

	if err != nil {
		p.logger.Error("Training run failed", zap.String("run_id", result.RunID), zap.Error(err))
	} else {
		p.logger.Info("Training run finished",
			zap.String("run_id", result.RunID),
			zap.Bool("accepted", result.Model.Accepted),
			zap.Float64("test_accuracy", result.Model.TestAccuracy),
			zap.Duration("duration", result.Duration))
	}

	if p.notifier != nil {
		if nerr := p.notifier.NotifyTraining(ctx, result); nerr != nil {
			p.logger.Warn("Failed to send training notification", zap.Error(nerr))
		}
	}

	return result, err
}

func (p *TrainPipeline) run(ctx context.Context, result *core.TrainingResult) error {
	s, err := p.schemas.Get()
	if err != nil {
		return err
	}

	report := p.validator.ValidateFiles(s, p.ingestion)
	transformed, err := p.executor.RunFiles(ctx, s, report, p.ingestion)
	if err != nil {
		return err
	}
	result.RunID = transformed.Artifact.RunID
	result.Transformation = transformed.Artifact

	trainX, trainY, err := dataset.SplitTarget(transformed.Train)
	if err != nil {
		return err
	}
	testX, testY, err := dataset.SplitTarget(transformed.Test)
	if err != nil {
		return err
	}

	model, err := classifier.Fit(trainX, trainY, p.options, result.RunID)
	if err != nil {
		return err
	}
	trainAcc, err := classifier.Accuracy(model, trainX, trainY)
	if err != nil {
		return err
	}
	testAcc, err := classifier.Accuracy(model, testX, testY)
	if err != nil {
		return err
	}

	result.Model = &core.ModelArtifact{
		RunID:         result.RunID,
		Bucket:        p.publication.Bucket,
		ModelKey:      p.publication.ModelKey,
		TrainAccuracy: trainAcc,
		TestAccuracy:  testAcc,
		Accepted:      testAcc >= p.minAccuracy,
	}

	p.logger.Info("Model evaluated",
		zap.String("run_id", result.RunID),
		zap.Float64("train_accuracy", trainAcc),
		zap.Float64("test_accuracy", testAcc),
		zap.Float64("min_accuracy", p.minAccuracy))

	if !result.Model.Accepted {
		return nil
	}
	return p.publish(ctx, transformed.Artifact, model)
}

// publish writes the model then the transformer of the accepted run to the
// serving keys. A reader that sees one half of a new pair fails the run ID
// check in predict instead of mixing runs. If the transformer cannot be
// written, the previous model is put back so the serving pair stays whole.
func (p *TrainPipeline) publish(ctx context.Context, art *core.TransformationArtifact, model *classifier.LogisticRegression) error {
	modelData, err := classifier.Encode(model)
	if err != nil {
		return err
	}
	ftData, err := p.store.Get(ctx, art.Bucket, art.TransformerKey)
	if err != nil {
		return fmt.Errorf("failed to read fitted transformer: %w", err)
	}
	prevModel, err := p.store.Get(ctx, p.publication.Bucket, p.publication.ModelKey)
	if err != nil && !errors.Is(err, core.ErrArtifactNotFound) {
		return fmt.Errorf("failed to read serving model: %w", err)
	}

	if err := p.store.Put(ctx, p.publication.Bucket, p.publication.ModelKey, modelData); err != nil {
		return fmt.Errorf("failed to publish model: %w", err)
	}
	if err := p.store.Put(ctx, p.publication.Bucket, p.publication.TransformerKey, ftData); err != nil {
		err = fmt.Errorf("failed to publish transformer: %w", err)
		return multierr.Append(err, p.restoreModel(prevModel))
	}

	if p.cache != nil {
		p.cache.Invalidate()
	}
	p.logger.Info("Published serving artifacts",
		zap.String("run_id", model.RunID()),
		zap.String("bucket", p.publication.Bucket),
		zap.String("model_key", p.publication.ModelKey),
		zap.String("transformer_key", p.publication.TransformerKey))
	return nil
}

// restoreModel puts back the serving model seen before publication, or
// removes the new one when there was none. It uses a fresh context so a
// cancelled run still restores.
func (p *TrainPipeline) restoreModel(prev []byte) error {
	ctx := context.Background()
	if prev == nil {
		if err := p.store.Delete(ctx, p.publication.Bucket, p.publication.ModelKey); err != nil {
			return fmt.Errorf("failed to remove unpaired model: %w", err)
		}
		p.logger.Warn("Removed unpaired serving model", zap.String("model_key", p.publication.ModelKey))
		return nil
	}
	if err := p.store.Put(ctx, p.publication.Bucket, p.publication.ModelKey, prev); err != nil {
		return fmt.Errorf("failed to restore previous model: %w", err)
	}
	p.logger.Warn("Restored previous serving model", zap.String("model_key", p.publication.ModelKey))
	return nil
}
