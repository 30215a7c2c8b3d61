// Package executor runs the transformation stage of a training run.
package executor

import (
	"context"
	"fmt"
	"path"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/dataset"
	"github.com/mikey/loan-predictor/internal/schema"
	"github.com/mikey/loan-predictor/internal/transform"
)

const component = "executor"

// Keys locates the blobs written by a run inside the bucket. Each run stores
// them under its own run ID prefix.
type Keys struct {
	Transformer string
	TrainMatrix string
	TestMatrix  string
}

// Executor fits the feature transformer and persists its outputs.
type Executor struct {
	store    core.ArtifactStore
	bucket   string
	keys     Keys
	logger   *zap.Logger
	newRunID func() string
}

// NewExecutor creates a new transformation executor
func NewExecutor(store core.ArtifactStore, bucket string, keys Keys, logger *zap.Logger) *Executor {
	return &Executor{
		store:    store,
		bucket:   bucket,
		keys:     keys,
		logger:   logger,
		newRunID: uuid.NewString,
	}
}

// Result is the in-memory outcome of a successful run, returned alongside
// the persisted handles so the caller can train without re-reading blobs.
type Result struct {
	Artifact    *core.TransformationArtifact
	Transformer *transform.Fitted
	Train       *mat.Dense
	Test        *mat.Dense
}

// RunFiles reads the ingested tables and calls Run. The validation report is
// checked before any file is opened.
func (e *Executor) RunFiles(ctx context.Context, s *schema.Schema, report core.ValidationReport, in core.IngestionArtifact) (*Result, error) {
	if err := gate(report); err != nil {
		return nil, err
	}

	train, err := dataset.ReadCSVFile(in.TrainFilePath)
	if err != nil {
		return nil, core.NewError(core.ErrInvalidInput, component, "read train", err)
	}
	test, err := dataset.ReadCSVFile(in.TestFilePath)
	if err != nil {
		return nil, core.NewError(core.ErrInvalidInput, component, "read test", err)
	}
	return e.Run(ctx, s, report, train, test)
}

// Run transforms train and test, persists the fitted transformer and both
// matrices under the run's own prefix, and returns their handles. Either
// every blob of the run is stored or none is; blobs of earlier runs are
// never touched.
func (e *Executor) Run(ctx context.Context, s *schema.Schema, report core.ValidationReport, train, test core.Table) (*Result, error) {
	if err := gate(report); err != nil {
		return nil, err
	}

	runID := e.newRunID()
	logger := e.logger.With(zap.String("run_id", runID))
	logger.Info("Starting data transformation",
		zap.Int("train_rows", train.Len()),
		zap.Int("test_rows", test.Len()))

	trainX, trainY, err := split(s, train, "train")
	if err != nil {
		return nil, err
	}
	testX, testY, err := split(s, test, "test")
	if err != nil {
		return nil, err
	}

	fitted, err := transform.Build(s).Fit(trainX, runID)
	if err != nil {
		return nil, err
	}
	trainArr, err := fitted.Transform(trainX)
	if err != nil {
		return nil, err
	}
	testArr, err := fitted.Transform(testX)
	if err != nil {
		return nil, err
	}
	trainM := dataset.AppendColumn(trainArr, trainY)
	testM := dataset.AppendColumn(testArr, testY)

	keys := e.keys.forRun(runID)
	blobs, err := encodeAll(fitted, trainM, testM, keys)
	if err != nil {
		return nil, err
	}
	if err := e.persist(ctx, blobs); err != nil {
		logger.Error("Failed to persist transformation artifacts", zap.Error(err))
		return nil, err
	}

	logger.Info("Data transformation completed and artifacts saved",
		zap.String("bucket", e.bucket),
		zap.Int("features", fitted.Width()))

	return &Result{
		Artifact: &core.TransformationArtifact{
			RunID:          runID,
			Bucket:         e.bucket,
			TransformerKey: keys.Transformer,
			TrainMatrixKey: keys.TrainMatrix,
			TestMatrixKey:  keys.TestMatrix,
		},
		Transformer: fitted,
		Train:       trainM,
		Test:        testM,
	}, nil
}

// forRun prefixes every key with the run ID.
func (k Keys) forRun(runID string) Keys {
	return Keys{
		Transformer: path.Join(runID, k.Transformer),
		TrainMatrix: path.Join(runID, k.TrainMatrix),
		TestMatrix:  path.Join(runID, k.TestMatrix),
	}
}

func gate(report core.ValidationReport) error {
	if report.Status {
		return nil
	}
	msg := report.Message
	if msg == "" {
		msg = "data validation did not pass"
	}
	return core.Errorf(core.ErrUpstreamValidation, component, "gate", "%s", msg)
}

// split separates the integer-coded target from the feature columns.
func split(s *schema.Schema, t core.Table, name string) (core.Table, []int, error) {
	labels, ok := t.Column(s.TargetColumn())
	if !ok {
		return core.Table{}, nil, core.Errorf(core.ErrConfig, component, "split",
			"%s table has no target column %q", name, s.TargetColumn())
	}
	if err := s.CheckColumns(t.Columns); err != nil {
		return core.Table{}, nil, fmt.Errorf("%s table: %w", name, err)
	}
	y, err := s.Remap(labels)
	if err != nil {
		return core.Table{}, nil, fmt.Errorf("%s table: %w", name, err)
	}
	x := t.Drop(append(s.DropColumns(), s.TargetColumn())...)
	return x, y, nil
}

type blob struct {
	key  string
	data []byte
}

// encodeAll serializes every artifact before anything is written.
func encodeAll(f *transform.Fitted, train, test *mat.Dense, keys Keys) ([]blob, error) {
	trainData, err := dataset.EncodeMatrix(train)
	if err != nil {
		return nil, err
	}
	testData, err := dataset.EncodeMatrix(test)
	if err != nil {
		return nil, err
	}
	ftData, err := transform.Encode(f)
	if err != nil {
		return nil, err
	}
	return []blob{
		{key: keys.TrainMatrix, data: trainData},
		{key: keys.TestMatrix, data: testData},
		{key: keys.Transformer, data: ftData},
	}, nil
}

func (e *Executor) persist(ctx context.Context, blobs []blob) error {
	written := make([]string, 0, len(blobs))
	for _, b := range blobs {
		if err := e.store.Put(ctx, e.bucket, b.key, b.data); err != nil {
			err = fmt.Errorf("failed to store %s/%s: %w", e.bucket, b.key, err)
			return multierr.Append(err, e.rollback(written))
		}
		written = append(written, b.key)
		e.logger.Debug("Stored artifact", zap.String("bucket", e.bucket), zap.String("key", b.key), zap.Int("bytes", len(b.data)))
	}
	return nil
}

// rollback removes blobs already written by the current run. The keys are
// run scoped, so nothing of an earlier run is deleted. It uses a fresh
// context so a cancelled run still cleans up.
func (e *Executor) rollback(keys []string) error {
	var errs error
	for _, key := range keys {
		if err := e.store.Delete(context.Background(), e.bucket, key); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("rollback %s/%s: %w", e.bucket, key, err))
			continue
		}
		e.logger.Warn("Rolled back artifact", zap.String("bucket", e.bucket), zap.String("key", key))
	}
	return errs
}
