package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
)

// LogNotifier records run summaries in the log only
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier used when SMTP delivery is disabled
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// NotifyTraining logs the run outcome
func (n *LogNotifier) NotifyTraining(_ context.Context, result *core.TrainingResult) error {
	n.logger.Debug(Subject(result), zap.String("run_id", result.RunID), zap.Duration("duration", result.Duration))
	return nil
}
