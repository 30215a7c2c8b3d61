package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/adapters/httpapi"
	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/utils"
	"github.com/mikey/loan-predictor/internal/whitelist"
)

// ServerFactory creates the serving layer
type ServerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewServerFactory creates a new server factory
func NewServerFactory(cfg *config.Config, logger *zap.Logger) *ServerFactory {
	return &ServerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateServer creates the HTTP server
func (f *ServerFactory) CreateServer(
	predictor httpapi.Predictor,
	trainer httpapi.Trainer,
	textProcessor *utils.TextProcessor,
) (ports.Server, error) {
	sc, err := f.cfg.GetServer()
	if err != nil {
		return nil, core.NewError(core.ErrConfig, "factory", "server", err)
	}
	logger := f.logger.Named("http")
	return httpapi.NewServer(
		sc.ListenAddress,
		sc.ReadTimeout,
		sc.WriteTimeout,
		predictor,
		trainer,
		whitelist.NewChecker(sc.AllowedOrigins, logger),
		textProcessor,
		logger,
	), nil
}
