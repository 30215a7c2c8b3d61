package classifier

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
)

// separable: label is 1 exactly when the first feature is positive
func separable() (*mat.Dense, []int) {
	x := mat.NewDense(8, 2, []float64{
		-2, 1,
		-1.5, 0,
		-1, 1,
		-0.5, 0,
		0.5, 1,
		1, 0,
		1.5, 1,
		2, 0,
	})
	return x, []int{0, 0, 0, 0, 1, 1, 1, 1}
}

func TestFitSeparable(t *testing.T) {
	t.Parallel()

	x, y := separable()
	m, err := Fit(x, y, DefaultOptions(), "run-1")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	acc, err := Accuracy(m, x, y)
	if err != nil {
		t.Fatalf("accuracy: %v", err)
	}
	if acc != 1 {
		t.Fatalf("expected perfect accuracy, got %v", acc)
	}
	if m.NumFeatures() != 2 || m.RunID() != "run-1" {
		t.Fatalf("unexpected model metadata %d %s", m.NumFeatures(), m.RunID())
	}

	again, err := Fit(x, y, DefaultOptions(), "run-1")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	p1, _ := m.PredictProba(x)
	p2, _ := again.PredictProba(x)
	for i := range p1 {
		if p1[i] != p2[i] {
			t.Fatalf("training is not deterministic")
		}
	}
}

func TestFitErrors(t *testing.T) {
	t.Parallel()

	x, y := separable()
	tests := []struct {
		name string
		y    []int
		opts Options
		kind error
	}{
		{name: "label count", y: y[:3], opts: DefaultOptions(), kind: core.ErrShapeMismatch},
		{name: "non-binary", y: []int{0, 0, 0, 0, 1, 1, 1, 2}, opts: DefaultOptions(), kind: core.ErrInvalidInput},
		{name: "bad learning rate", y: y, opts: Options{Epochs: 1, Threshold: 0.5}, kind: core.ErrConfig},
		{name: "bad threshold", y: y, opts: Options{LearningRate: 0.1, Epochs: 1, Threshold: 1}, kind: core.ErrConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Fit(x, tt.y, tt.opts, ""); !errors.Is(err, tt.kind) {
				t.Fatalf("expected %v, got %v", tt.kind, err)
			}
		})
	}
}

func TestPredictShapeMismatch(t *testing.T) {
	t.Parallel()

	x, y := separable()
	m, err := Fit(x, y, DefaultOptions(), "")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if _, err := m.Predict(mat.NewDense(1, 3, nil)); !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	x, y := separable()
	m, err := Fit(x, y, DefaultOptions(), "run-7")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	data, err := Encode(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RunID() != "run-7" {
		t.Fatalf("unexpected run id %q", got.RunID())
	}
	want, _ := m.Predict(x)
	have, _ := got.Predict(x)
	for i := range want {
		if want[i] != have[i] {
			t.Fatalf("decoded model predicts differently at row %d", i)
		}
	}

	for _, bad := range []string{
		`{`,
		`{"kind":"tree","weights":[1],"threshold":0.5}`,
		`{"kind":"logistic_regression","weights":[],"threshold":0.5}`,
		`{"kind":"logistic_regression","weights":[1],"threshold":0}`,
	} {
		if _, err := Decode([]byte(bad)); !errors.Is(err, core.ErrArtifactCorrupt) {
			t.Fatalf("expected corrupt error for %s, got %v", bad, err)
		}
	}
}
