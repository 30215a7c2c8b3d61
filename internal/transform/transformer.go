// Package transform builds and applies the column-wise feature transformer.
//
// A transformer is a fixed sequence of segments. Each segment applies one
// Strategy to a disjoint slice of input columns; segment outputs are
// concatenated in order. The order (plain numeric, secondary numeric,
// categorical) is part of the fitted artifact and must not change between
// fit and transform.
package transform

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/schema"
)

const component = "transform"

// Segment names are stable identifiers stored in fitted artifacts.
const (
	SegmentNumeric     = "num1"
	SegmentNumeric2    = "num2"
	SegmentCategorical = "oh_column"
)

// Segment is one strategy applied to a slice of columns.
type Segment struct {
	Name     string
	Strategy Strategy
	Numeric  bool
	Columns  []string
}

// ColumnTransformer is the unfitted transformation graph.
type ColumnTransformer struct {
	segments []Segment
}

// Build constructs the unfitted transformer for a schema.
func Build(s *schema.Schema) *ColumnTransformer {
	return New(
		Segment{Name: SegmentNumeric, Strategy: ImputeScale, Numeric: true, Columns: s.NumFeatures()},
		Segment{Name: SegmentNumeric2, Strategy: ImputeOneHot, Numeric: true, Columns: s.NumFeature2()},
		Segment{Name: SegmentCategorical, Strategy: ImputeOneHot, Columns: s.OHColumns()},
	)
}

// New constructs a transformer from explicit segments.
func New(segments ...Segment) *ColumnTransformer {
	return &ColumnTransformer{segments: segments}
}

// InputColumns returns the columns read by the transformer, in order.
func (ct *ColumnTransformer) InputColumns() []string {
	var cols []string
	for _, seg := range ct.segments {
		cols = append(cols, seg.Columns...)
	}
	return cols
}

// Fit learns imputation, scaling and vocabulary statistics from t.
// The returned transformer is immutable and does not reference t.
func (ct *ColumnTransformer) Fit(t core.Table, runID string) (*Fitted, error) {
	if t.Len() == 0 {
		return nil, core.Errorf(core.ErrInvalidInput, component, "fit", "training table is empty")
	}

	f := &Fitted{runID: runID, segments: make([]FittedSegment, 0, len(ct.segments))}
	for _, seg := range ct.segments {
		fs := FittedSegment{Name: seg.Name, Strategy: seg.Strategy, Numeric: seg.Numeric}
		for _, col := range seg.Columns {
			cells, ok := t.Column(col)
			if !ok {
				return nil, core.Errorf(core.ErrConfig, component, "fit", "segment %s: column %q not in table", seg.Name, col)
			}
			stats, err := fitColumn(seg.Strategy, seg.Numeric, col, cells)
			if err != nil {
				return nil, err
			}
			fs.Columns = append(fs.Columns, stats)
		}
		f.segments = append(f.segments, fs)
	}
	f.index()
	return f, nil
}

// FittedSegment is the learned state of one segment.
type FittedSegment struct {
	Name     string        `json:"name"`
	Strategy Strategy      `json:"strategy"`
	Numeric  bool          `json:"numeric"`
	Columns  []ColumnStats `json:"columns"`
}

// Fitted is a fitted transformer. It is safe for concurrent use.
type Fitted struct {
	runID    string
	segments []FittedSegment
	columns  []string
	width    int
}

var _ core.FeatureTransformer = (*Fitted)(nil)

func (f *Fitted) index() {
	f.columns = f.columns[:0]
	f.width = 0
	for _, seg := range f.segments {
		for _, c := range seg.Columns {
			f.columns = append(f.columns, c.Column)
			f.width += c.width(seg.Strategy)
		}
	}
}

// RunID identifies the training run that produced the transformer.
func (f *Fitted) RunID() string { return f.runID }

// Width is the number of output feature columns.
func (f *Fitted) Width() int { return f.width }

// InputColumns returns the expected input columns in transform order.
func (f *Fitted) InputColumns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

// learned returns a deep copy of the fitted segments.
func (f *Fitted) learned() []FittedSegment {
	out := make([]FittedSegment, len(f.segments))
	for i, seg := range f.segments {
		cp := seg
		cp.Columns = make([]ColumnStats, len(seg.Columns))
		for j, c := range seg.Columns {
			c.Categories = append([]string(nil), c.Categories...)
			cp.Columns[j] = c
		}
		out[i] = cp
	}
	return out
}

// Transform encodes t into a dense feature matrix. It never changes f.
func (f *Fitted) Transform(t core.Table) (*mat.Dense, error) {
	if t.Len() == 0 {
		return nil, core.Errorf(core.ErrInvalidInput, component, "transform", "table is empty")
	}

	positions := make([]int, len(f.columns))
	for i, col := range f.columns {
		positions[i] = t.Index(col)
		if positions[i] < 0 {
			return nil, core.Errorf(core.ErrInvalidInput, component, "transform", "column %q not in table", col)
		}
	}

	data := make([]float64, t.Len()*f.width)
	for r, row := range t.Rows {
		out := data[r*f.width : (r+1)*f.width]
		offset, k := 0, 0
		for _, seg := range f.segments {
			for _, c := range seg.Columns {
				w := c.width(seg.Strategy)
				if err := c.encode(seg.Strategy, seg.Numeric, row[positions[k]], out[offset:offset+w]); err != nil {
					return nil, core.NewError(core.ErrInvalidInput, component, "transform", fmt.Errorf("row %d: %w", r, err))
				}
				offset += w
				k++
			}
		}
	}
	return mat.NewDense(t.Len(), f.width, data), nil
}

type fittedState struct {
	RunID    string          `json:"run_id"`
	Segments []FittedSegment `json:"segments"`
}

// MarshalJSON implements json.Marshaler.
func (f *Fitted) MarshalJSON() ([]byte, error) {
	return json.Marshal(fittedState{RunID: f.runID, Segments: f.segments})
}

// UnmarshalJSON implements json.Unmarshaler and validates the learned state.
func (f *Fitted) UnmarshalJSON(data []byte) error {
	var state fittedState
	if err := json.Unmarshal(data, &state); err != nil {
		return err
	}
	if len(state.Segments) == 0 {
		return fmt.Errorf("no segments")
	}
	for _, seg := range state.Segments {
		for _, c := range seg.Columns {
			if err := c.validate(seg.Strategy, seg.Numeric); err != nil {
				return fmt.Errorf("segment %s: %w", seg.Name, err)
			}
		}
	}
	f.runID = state.RunID
	f.segments = state.Segments
	f.index()
	if f.width == 0 {
		return fmt.Errorf("transformer has no output columns")
	}
	return nil
}

// Encode serializes a fitted transformer.
func Encode(f *Fitted) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "encode", err)
	}
	return data, nil
}

// Decode deserializes a fitted transformer.
func Decode(data []byte) (*Fitted, error) {
	f := &Fitted{}
	if err := json.Unmarshal(data, f); err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, component, "decode", err)
	}
	return f, nil
}
