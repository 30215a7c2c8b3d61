package ports

import (
	"context"

	"github.com/mikey/loan-predictor/internal/core"
)

// Notifier reports the outcome of a training run
type Notifier interface {
	// NotifyTraining sends a summary of a finished run
	NotifyTraining(ctx context.Context, result *core.TrainingResult) error
}
