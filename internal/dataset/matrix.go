package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
)

// AppendColumn returns a copy of x with col added as the last column.
func AppendColumn(x mat.Matrix, col []int) *mat.Dense {
	r, c := x.Dims()
	out := mat.NewDense(r, c+1, nil)
	out.Slice(0, r, 0, c).(*mat.Dense).Copy(x)
	for i, v := range col {
		out.Set(i, c, float64(v))
	}
	return out
}

// SplitTarget separates the last column of m as integer labels.
func SplitTarget(m *mat.Dense) (*mat.Dense, []int, error) {
	r, c := m.Dims()
	if c < 2 {
		return nil, nil, core.Errorf(core.ErrShapeMismatch, "dataset", "split", "matrix has %d columns, need features and a target", c)
	}
	x := mat.DenseCopyOf(m.Slice(0, r, 0, c-1))
	y := make([]int, r)
	for i := range y {
		v := m.At(i, c-1)
		if v != float64(int(v)) {
			return nil, nil, core.Errorf(core.ErrArtifactCorrupt, "dataset", "split", "row %d target %v is not an integer label", i, v)
		}
		y[i] = int(v)
	}
	return x, y, nil
}

// EncodeMatrix serializes m with gonum's binary format.
func EncodeMatrix(m *mat.Dense) ([]byte, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, "dataset", "encode", err)
	}
	return data, nil
}

// DecodeMatrix is the inverse of EncodeMatrix.
func DecodeMatrix(data []byte) (*mat.Dense, error) {
	var m mat.Dense
	if err := m.UnmarshalBinary(data); err != nil {
		return nil, core.NewError(core.ErrArtifactCorrupt, "dataset", "decode", err)
	}
	return &m, nil
}
