// Package predict applies a fitted transformer and model to a single record.
package predict

import (
	"github.com/mikey/loan-predictor/internal/core"
)

const component = "predict"

// Predict transforms a one-row table with ft (never fitting it) and returns
// the model's label for that row.
func Predict(ft core.FeatureTransformer, model core.Classifier, t core.Table) (int, error) {
	if t.Len() != 1 {
		return 0, core.Errorf(core.ErrInvalidInput, component, "predict", "expected exactly one row, got %d", t.Len())
	}
	if ft.RunID() != model.RunID() {
		return 0, core.Errorf(core.ErrShapeMismatch, component, "predict",
			"transformer from run %q paired with model from run %q", ft.RunID(), model.RunID())
	}
	if ft.Width() != model.NumFeatures() {
		return 0, core.Errorf(core.ErrShapeMismatch, component, "predict",
			"transformer produces %d features, model expects %d", ft.Width(), model.NumFeatures())
	}

	x, err := ft.Transform(t)
	if err != nil {
		return 0, err
	}
	labels, err := model.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(labels) != 1 {
		return 0, core.Errorf(core.ErrShapeMismatch, component, "predict", "model returned %d labels for one row", len(labels))
	}
	return labels[0], nil
}
