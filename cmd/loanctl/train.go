package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/adapters/notify"
	"github.com/mikey/loan-predictor/internal/di"
	"github.com/mikey/loan-predictor/internal/pipeline"
	"github.com/mikey/loan-predictor/internal/ports"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Run the training pipeline once",
	RunE: func(cmd *cobra.Command, _ []string) error {
		container, err := di.BuildCLIContainer(flags)
		if err != nil {
			return fmt.Errorf("building dependency container: %w", err)
		}

		return container.Invoke(func(logger *zap.Logger, store ports.ArtifactStore, p *pipeline.TrainPipeline) error {
			defer logger.Sync()
			defer store.Close()

			result, err := p.Run(cmd.Context())
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), notify.Summary(result))
			}
			return err
		})
	},
}

func init() {
	rootCmd.AddCommand(trainCmd)

	trainCmd.Flags().StringVar(&flags.TrainPath, "train", "", "train CSV override")
	trainCmd.Flags().StringVar(&flags.TestPath, "test", "", "test CSV override")
}
