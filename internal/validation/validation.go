// Package validation checks raw train/test tables before transformation.
package validation

import (
	"fmt"
	"sort"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/dataset"
	"github.com/mikey/loan-predictor/internal/schema"
)

// Validator produces the report consumed by the transformation executor.
type Validator struct {
	logger *zap.Logger
}

// NewValidator creates a new validator
func NewValidator(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// Validate checks both tables against the schema. Every problem is reported
// in the message; Status is true only when there are none.
func (v *Validator) Validate(s *schema.Schema, train, test core.Table) core.ValidationReport {
	var err error
	err = multierr.Append(err, checkTable("train", s, train))
	err = multierr.Append(err, checkTable("test", s, test))
	err = multierr.Append(err, sameColumns(train.Columns, test.Columns))

	if err != nil {
		v.logger.Warn("Data validation failed",
			zap.Int("train_rows", train.Len()),
			zap.Int("test_rows", test.Len()),
			zap.Error(err))
		return core.ValidationReport{Status: false, Message: err.Error()}
	}

	v.logger.Info("Data validation passed",
		zap.Int("train_rows", train.Len()),
		zap.Int("test_rows", test.Len()),
		zap.Int("columns", len(train.Columns)))
	return core.ValidationReport{Status: true}
}

// ValidateFiles reads the ingested tables and validates them. Unreadable
// files fail the report rather than returning an error.
func (v *Validator) ValidateFiles(s *schema.Schema, in core.IngestionArtifact) core.ValidationReport {
	train, err := dataset.ReadCSVFile(in.TrainFilePath)
	if err != nil {
		v.logger.Warn("Data validation failed", zap.Error(err))
		return core.ValidationReport{Status: false, Message: err.Error()}
	}
	test, err := dataset.ReadCSVFile(in.TestFilePath)
	if err != nil {
		v.logger.Warn("Data validation failed", zap.Error(err))
		return core.ValidationReport{Status: false, Message: err.Error()}
	}
	return v.Validate(s, train, test)
}

func checkTable(name string, s *schema.Schema, t core.Table) error {
	var err error
	if t.Len() == 0 {
		err = multierr.Append(err, fmt.Errorf("%s table has no rows", name))
	}
	if t.Index(s.TargetColumn()) < 0 {
		err = multierr.Append(err, fmt.Errorf("%s table has no target column %q", name, s.TargetColumn()))
	}
	if cerr := s.CheckColumns(t.Columns); cerr != nil {
		err = multierr.Append(err, fmt.Errorf("%s table: %w", name, cerr))
	}
	return err
}

func sameColumns(a, b []string) error {
	x := append([]string(nil), a...)
	y := append([]string(nil), b...)
	sort.Strings(x)
	sort.Strings(y)
	if len(x) != len(y) {
		return fmt.Errorf("train has %d columns, test has %d", len(x), len(y))
	}
	for i := range x {
		if x[i] != y[i] {
			return fmt.Errorf("train and test columns differ at %q/%q", x[i], y[i])
		}
	}
	return nil
}
