package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/adapters/notify"
	"github.com/mikey/loan-predictor/internal/config"
	"github.com/mikey/loan-predictor/internal/ports"
)

// NotifierFactory creates training notifiers
type NotifierFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNotifierFactory creates a new notifier factory
func NewNotifierFactory(cfg *config.Config, logger *zap.Logger) *NotifierFactory {
	return &NotifierFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNotifier returns an SMTP notifier when notifications are enabled and
// recipients are configured, otherwise a notifier that only logs.
func (f *NotifierFactory) CreateNotifier() ports.Notifier {
	nc := f.cfg.GetNotify()
	logger := f.logger.Named("notify")
	if !nc.Enabled || len(nc.To) == 0 {
		return notify.NewLogNotifier(logger)
	}
	return notify.NewSMTPNotifier(nc.SMTPAddress, nc.From, nc.To, logger)
}
