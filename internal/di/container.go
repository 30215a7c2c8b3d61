package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/executor"
	"github.com/mikey/loan-predictor/internal/factory"
	"github.com/mikey/loan-predictor/internal/inference"
	"github.com/mikey/loan-predictor/internal/logging"
	"github.com/mikey/loan-predictor/internal/pipeline"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/predict"
	"github.com/mikey/loan-predictor/internal/schema"
	"github.com/mikey/loan-predictor/internal/utils"
)

// BuildContainer creates and configures a dependency injection container for
// the prediction server. An empty configFile uses the default search paths.
func BuildContainer(configFile string) (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(func() (*config.Config, error) {
		return config.NewWithFile(configFile)
	}); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register server
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(
		f *factory.ServerFactory,
		service *predict.Service,
		trainer *pipeline.TrainPipeline,
		textProcessor *utils.TextProcessor,
	) (ports.Server, error) {
		return f.CreateServer(service, trainer, textProcessor)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideCore registers the store, schema registry, training pipeline and
// prediction service. Config and logger must already be provided.
func provideCore(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewPipelineFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewNotifierFactory); err != nil {
		return err
	}

	// Register artifact store
	if err := container.Provide(func(f *factory.StoreFactory, logger *zap.Logger) (ports.ArtifactStore, error) {
		s, err := f.CreateArtifactStore()
		if err != nil {
			return nil, err
		}
		logger.Info("Artifact store ready")
		return s, nil
	}); err != nil {
		return err
	}

	// Register notifier
	if err := container.Provide(func(f *factory.NotifierFactory) ports.Notifier {
		return f.CreateNotifier()
	}); err != nil {
		return err
	}

	// Register schema registry
	if err := container.Provide(func(f *factory.PipelineFactory) *schema.Registry {
		return f.CreateSchemaRegistry()
	}); err != nil {
		return err
	}

	// Register executor and serving pair loader
	if err := container.Provide(func(f *factory.PipelineFactory, s ports.ArtifactStore) (*executor.Executor, error) {
		return f.CreateExecutor(s)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.PipelineFactory, s ports.ArtifactStore) (*inference.Loader, error) {
		return f.CreateLoader(s)
	}); err != nil {
		return err
	}

	// Register prediction service
	if err := container.Provide(func(f *factory.PipelineFactory, loader *inference.Loader) *predict.Service {
		return f.CreatePredictService(loader)
	}); err != nil {
		return err
	}

	// Register training pipeline
	return container.Provide(func(
		f *factory.PipelineFactory,
		registry *schema.Registry,
		exec *executor.Executor,
		s ports.ArtifactStore,
		loader *inference.Loader,
		notifier ports.Notifier,
	) (*pipeline.TrainPipeline, error) {
		return f.CreateTrainPipeline(registry, exec, s, loader, notifier)
	})
}
