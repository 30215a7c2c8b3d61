// Package classifier holds the persisted binary estimator.
package classifier

import (
	"encoding/json"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
)

const component = "classifier"

// Options are the training hyperparameters.
type Options struct {
	LearningRate float64
	Epochs       int
	L2           float64
	Threshold    float64
}

// DefaultOptions returns the hyperparameters used when none are configured.
func DefaultOptions() Options {
	return Options{LearningRate: 0.1, Epochs: 500, Threshold: 0.5}
}

func (o Options) validate() error {
	switch {
	case o.LearningRate <= 0:
		return fmt.Errorf("learning rate must be positive, got %v", o.LearningRate)
	case o.Epochs <= 0:
		return fmt.Errorf("epochs must be positive, got %d", o.Epochs)
	case o.L2 < 0:
		return fmt.Errorf("l2 must not be negative, got %v", o.L2)
	case o.Threshold <= 0 || o.Threshold >= 1:
		return fmt.Errorf("threshold must be in (0, 1), got %v", o.Threshold)
	}
	return nil
}

// LogisticRegression is a fitted binary logistic regression. It is immutable
// and safe for concurrent use.
type LogisticRegression struct {
	runID     string
	weights   []float64
	bias      float64
	threshold float64
}

var _ core.Classifier = (*LogisticRegression)(nil)

// Fit trains on x (rows are observations) and labels y in {0,1} with
// full-batch gradient descent. Weights start at zero so training is
// deterministic.
func Fit(x mat.Matrix, y []int, opts Options, runID string) (*LogisticRegression, error) {
	if err := opts.validate(); err != nil {
		return nil, core.NewError(core.ErrConfig, component, "fit", err)
	}
	n, d := x.Dims()
	if n == 0 || d == 0 {
		return nil, core.Errorf(core.ErrInvalidInput, component, "fit", "empty training matrix")
	}
	if len(y) != n {
		return nil, core.Errorf(core.ErrShapeMismatch, component, "fit", "%d rows but %d labels", n, len(y))
	}
	target := make([]float64, n)
	for i, v := range y {
		if v != 0 && v != 1 {
			return nil, core.Errorf(core.ErrInvalidInput, component, "fit", "row %d label %d is not binary", i, v)
		}
		target[i] = float64(v)
	}

	w := mat.NewVecDense(d, nil)
	yv := mat.NewVecDense(n, target)
	z := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	var b float64

	for epoch := 0; epoch < opts.Epochs; epoch++ {
		z.MulVec(x, w)
		for i := 0; i < n; i++ {
			z.SetVec(i, sigmoid(z.AtVec(i)+b))
		}
		// residual p - y
		z.SubVec(z, yv)

		grad.MulVec(x.T(), z)
		grad.ScaleVec(1/float64(n), grad)
		if opts.L2 > 0 {
			grad.AddScaledVec(grad, opts.L2, w)
		}
		w.AddScaledVec(w, -opts.LearningRate, grad)
		b -= opts.LearningRate * mat.Sum(z) / float64(n)
	}

	weights := make([]float64, d)
	copy(weights, w.RawVector().Data)
	return &LogisticRegression{runID: runID, weights: weights, bias: b, threshold: opts.Threshold}, nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// RunID identifies the training run that produced the model.
func (m *LogisticRegression) RunID() string { return m.runID }

// NumFeatures is the input width the model expects.
func (m *LogisticRegression) NumFeatures() int { return len(m.weights) }

// PredictProba returns P(label=1) for each row of x.
func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	n, d := x.Dims()
	if d != len(m.weights) {
		return nil, core.Errorf(core.ErrShapeMismatch, component, "predict",
			"input has %d features, model expects %d", d, len(m.weights))
	}
	out := make([]float64, n)
	row := make([]float64, d)
	for i := 0; i < n; i++ {
		for j := range row {
			row[j] = x.At(i, j)
		}
		out[i] = sigmoid(floats.Dot(row, m.weights) + m.bias)
	}
	return out, nil
}

// Predict returns one label in {0,1} per row of x.
func (m *LogisticRegression) Predict(x mat.Matrix) ([]int, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(proba))
	for i, p := range proba {
		if p >= m.threshold {
			out[i] = 1
		}
	}
	return out, nil
}

// Accuracy is the fraction of rows of x predicted as y.
func Accuracy(c core.Classifier, x mat.Matrix, y []int) (float64, error) {
	pred, err := c.Predict(x)
	if err != nil {
		return 0, err
	}
	if len(pred) != len(y) {
		return 0, core.Errorf(core.ErrShapeMismatch, component, "accuracy", "%d predictions for %d labels", len(pred), len(y))
	}
	if len(y) == 0 {
		return 0, nil
	}
	var hits int
	for i := range y {
		if pred[i] == y[i] {
			hits++
		}
	}
	return float64(hits) / float64(len(y)), nil
}

type modelState struct {
	RunID     string    `json:"run_id"`
	Kind      string    `json:"kind"`
	Weights   []float64 `json:"weights"`
	Bias      float64   `json:"bias"`
	Threshold float64   `json:"threshold"`
}

const kindLogistic = "logistic_regression"

// MarshalJSON implements json.Marshaler.
func (m *LogisticRegression) MarshalJSON() ([]byte, error) {
	return json.Marshal(modelState{
		RunID:     m.runID,
		Kind:      kindLogistic,
		Weights:   m.weights,
		Bias:      m.bias,
		Threshold: m.threshold,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (m *LogisticRegression) UnmarshalJSON(data []byte) error {
	var state modelState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if state.Kind != kindLogistic {
		return fmt.Errorf("unsupported model kind %q", state.Kind)
	}
	if len(state.Weights) == 0 {
		return fmt.Errorf("model has no weights")
	}
	if state.Threshold <= 0 || state.Threshold >= 1 {
		return fmt.Errorf("threshold %v outside (0, 1)", state.Threshold)
	}
	if !finite(state.Bias) {
		return fmt.Errorf("model has non-finite bias")
	}
	for _, w := range state.Weights {
		if !finite(w) {
			return fmt.Errorf("model has non-finite weights")
		}
	}
	m.runID = state.RunID
	m.weights = state.Weights
	m.bias = state.Bias
	m.threshold = state.Threshold
	return nil
}

// Encode serializes a model.
func Encode(m *LogisticRegression) ([]byte, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "encode", err)
	}
	return data, nil
}

// Decode deserializes a model.
func Decode(data []byte) (*LogisticRegression, error) {
	m := &LogisticRegression{}
	if err := json.Unmarshal(data, m); err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "decode", err)
	}
	return m, nil
}
