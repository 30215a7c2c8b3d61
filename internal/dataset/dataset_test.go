package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
)

func TestReadCSV(t *testing.T) {
	t.Parallel()

	in := "\ufeffLoan_ID, Gender,ApplicantIncome\nLP001,Male,5849\nLP002,,NA\n"
	tbl, err := ReadCSV(strings.NewReader(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(tbl.Columns, []string{"Loan_ID", "Gender", "ApplicantIncome"}) {
		t.Fatalf("unexpected header %v", tbl.Columns)
	}
	if tbl.Len() != 2 || tbl.Rows[1][1] != "" {
		t.Fatalf("unexpected rows %v", tbl.Rows)
	}
}

func TestReadCSVErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "ragged", in: "a,b\n1\n"},
		{name: "duplicate column", in: "a,a\n1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := ReadCSV(strings.NewReader(tt.in)); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestCSVFileRoundTrip(t *testing.T) {
	t.Parallel()

	tbl, err := core.NewTable([]string{"a", "b"}, [][]string{{"1", "x,y"}, {"", "z"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	path := filepath.Join(t.TempDir(), "t.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,\"x,y\"\n,z\n"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	got, err := ReadCSVFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, tbl) {
		t.Fatalf("expected %v, got %v", tbl, got)
	}

	if _, err := ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestAppendAndSplitTarget(t *testing.T) {
	t.Parallel()

	x := mat.NewDense(3, 2, []float64{0.5, 1, -1, 0, 2, 1})
	m := AppendColumn(x, []int{1, 0, 1})
	if _, c := m.Dims(); c != 3 {
		t.Fatalf("expected 3 columns, got %d", c)
	}

	fx, y, err := SplitTarget(m)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mat.Equal(fx, x) || !reflect.DeepEqual(y, []int{1, 0, 1}) {
		t.Fatalf("split did not invert append")
	}

	m.Set(0, 2, 0.5)
	if _, _, err := SplitTarget(m); !errors.Is(err, core.ErrArtifactCorrupt) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
	if _, _, err := SplitTarget(mat.NewDense(1, 1, nil)); !errors.Is(err, core.ErrShapeMismatch) {
		t.Fatalf("expected shape mismatch, got %v", err)
	}
}

func TestMatrixEncoding(t *testing.T) {
	t.Parallel()

	m := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	data, err := EncodeMatrix(m)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := DecodeMatrix(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !mat.Equal(got, m) {
		t.Fatalf("expected %v, got %v", mat.Formatted(m), mat.Formatted(got))
	}

	if _, err := DecodeMatrix([]byte("junk")); !errors.Is(err, core.ErrArtifactCorrupt) {
		t.Fatalf("expected corrupt error, got %v", err)
	}
}
