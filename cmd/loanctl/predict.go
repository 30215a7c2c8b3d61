package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/di"
	"github.com/mikey/loan-predictor/internal/ports"
	"github.com/mikey/loan-predictor/internal/predict"
)

var inputFile string

var predictCmd = &cobra.Command{
	Use:   "predict [field=value ...]",
	Short: "Predict the decision for one applicant",
	Long: `Predict the decision for one applicant. Fields are given as field=value
arguments, or as a JSON object read from --file ("-" for stdin).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, err := collectFields(args, cmd.InOrStdin())
		if err != nil {
			return err
		}

		container, err := di.BuildCLIContainer(flags)
		if err != nil {
			return fmt.Errorf("building dependency container: %w", err)
		}

		return container.Invoke(func(logger *zap.Logger, store ports.ArtifactStore, service *predict.Service) error {
			defer logger.Sync()
			defer store.Close()

			prediction, err := service.Predict(cmd.Context(), core.NewRecord(fields))
			if err != nil {
				return err
			}

			out, err := json.MarshalIndent(map[string]interface{}{
				"label":      prediction.Label,
				"prediction": prediction.Status,
				"run_id":     prediction.RunID,
			}, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding prediction: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(predictCmd)

	predictCmd.Flags().StringVarP(&inputFile, "file", "f", "", "JSON file with the applicant fields")
}

// collectFields merges the JSON input file, if any, with field=value args.
// Arguments win over file values.
func collectFields(args []string, stdin io.Reader) (map[string]string, error) {
	fields := make(map[string]string)

	if inputFile != "" {
		var r io.Reader = stdin
		if inputFile != "-" {
			f, err := os.Open(inputFile)
			if err != nil {
				return nil, fmt.Errorf("opening input file: %w", err)
			}
			defer f.Close()
			r = f
		}
		var raw map[string]interface{}
		if err := json.NewDecoder(bufio.NewReader(r)).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding input file: %w", err)
		}
		for k, v := range raw {
			if v == nil {
				fields[k] = ""
				continue
			}
			fields[k] = fmt.Sprint(v)
		}
	}

	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid field %q, expected field=value", arg)
		}
		fields[strings.TrimSpace(k)] = v
	}

	if len(fields) == 0 {
		return nil, errors.New("no fields given")
	}
	return fields, nil
}
