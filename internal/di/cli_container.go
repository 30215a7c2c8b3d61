package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/logging"
)

// CLIFlags contains the global command line flags of loanctl
type CLIFlags struct {
	ConfigFile string
	Verbose    bool
	JSONLog    bool

	// Overrides applied on top of the configuration when set
	Backend   string
	Root      string
	TrainPath string
	TestPath  string
}

// BuildCLIContainer creates and configures a dependency injection container
// for the command line tool. Logs go to the console instead of the
// configured sink.
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		cfg, err := config.NewWithFile(flags.ConfigFile)
		if err != nil {
			return nil, err
		}
		if used := cfg.GetViper().ConfigFileUsed(); used != "" {
			logger.Debug("Loaded configuration from file", zap.String("file", used))
		}
		applyOverrides(cfg, flags)
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	if err := provideCore(container); err != nil {
		return nil, err
	}

	return container, nil
}

// applyOverrides copies the non-empty flag overrides into the configuration
func applyOverrides(cfg *config.Config, flags *CLIFlags) {
	v := cfg.GetViper()
	if flags.Backend != "" {
		v.Set("artifact.backend", flags.Backend)
	}
	if flags.Root != "" {
		v.Set("artifact.root", flags.Root)
	}
	if flags.TrainPath != "" {
		v.Set("ingestion.train_path", flags.TrainPath)
	}
	if flags.TestPath != "" {
		v.Set("ingestion.test_path", flags.TestPath)
	}
}
