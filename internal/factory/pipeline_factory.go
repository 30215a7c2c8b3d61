package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/classifier"
	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/executor"
	"github.com/mikey/loan-predictor/internal/inference"
	"github.com/mikey/loan-predictor/internal/pipeline"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/predict"
	"github.com/mikey/loan-predictor/internal/schema"
	"github.com/mikey/loan-predictor/internal/validation"
)

// PipelineFactory builds the training and prediction components
type PipelineFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPipelineFactory creates a new pipeline factory
func NewPipelineFactory(cfg *config.Config, logger *zap.Logger) *PipelineFactory {
	return &PipelineFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSchemaRegistry creates the registry for the configured schema file
func (f *PipelineFactory) CreateSchemaRegistry() *schema.Registry {
	return schema.NewRegistry(f.cfg.GetString("schema.path"), f.logger.Named("schema"))
}

// CreateExecutor creates the transformation executor
func (f *PipelineFactory) CreateExecutor(store ports.ArtifactStore) (*executor.Executor, error) {
	ac, err := f.cfg.GetArtifact()
	if err != nil {
		return nil, core.NewError(core.ErrConfig, "factory", "executor", err)
	}
	keys := executor.Keys{
		Transformer: ac.TransformerKey,
		TrainMatrix: ac.TrainMatrixKey,
		TestMatrix:  ac.TestMatrixKey,
	}
	return executor.NewExecutor(store, ac.Bucket, keys, f.logger.Named("executor")), nil
}

// CreateLoader creates the cached loader for the serving pair
func (f *PipelineFactory) CreateLoader(store ports.ArtifactStore) (*inference.Loader, error) {
	ac, err := f.cfg.GetArtifact()
	if err != nil {
		return nil, core.NewError(core.ErrConfig, "factory", "loader", err)
	}
	return inference.NewLoader(store, ac.Bucket, ac.ServingTransformerKey, ac.ModelKey, ac.CacheTTL, f.logger.Named("inference")), nil
}

// CreatePredictService creates the prediction service
func (f *PipelineFactory) CreatePredictService(loader *inference.Loader) *predict.Service {
	status := f.cfg.GetStatus()
	mapping := inference.NewFieldMapping(f.cfg.GetFieldMapping())
	return predict.NewService(loader, mapping, status.Approved, status.Rejected, f.logger.Named("predict"))
}

// CreateTrainPipeline creates the training pipeline. The loader cache is
// dropped whenever a new pair is published.
func (f *PipelineFactory) CreateTrainPipeline(
	registry *schema.Registry,
	exec *executor.Executor,
	store ports.ArtifactStore,
	loader *inference.Loader,
	notifier ports.Notifier,
) (*pipeline.TrainPipeline, error) {
	ac, err := f.cfg.GetArtifact()
	if err != nil {
		return nil, core.NewError(core.ErrConfig, "factory", "pipeline", err)
	}
	ic := f.cfg.GetIngestion()
	tc := f.cfg.GetTraining()

	var cache pipeline.Invalidator
	if loader != nil {
		cache = loader
	}

	return pipeline.New(pipeline.Config{
		Schemas:   registry,
		Validator: validation.NewValidator(f.logger.Named("validation")),
		Executor:  exec,
		Store:     store,
		Ingestion: core.IngestionArtifact{
			TrainFilePath: ic.TrainPath,
			TestFilePath:  ic.TestPath,
		},
		Publication: pipeline.Publication{
			Bucket:         ac.Bucket,
			TransformerKey: ac.ServingTransformerKey,
			ModelKey:       ac.ModelKey,
		},
		Options: classifier.Options{
			LearningRate: tc.LearningRate,
			Epochs:       tc.Epochs,
			L2:           tc.L2,
			Threshold:    tc.Threshold,
		},
		MinAccuracy: tc.MinAccuracy,
		Notifier:    notifier,
		Cache:       cache,
		Logger:      f.logger.Named("pipeline"),
	}), nil
}
