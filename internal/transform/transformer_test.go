package transform

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/schema"
)

func loanSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New(schema.Document{
		NumFeatures:   []string{"ApplicantIncome"},
		NumFeature2:   []string{"Credit_History"},
		OHColumns:     []string{"Gender", "Property_Area"},
		DropColumns:   []string{"Loan_ID"},
		TargetColumn:  "Loan_Status",
		TargetMapping: map[string]int{"Y": 1, "N": 0},
	})
	if err != nil {
		t.Fatalf("build schema: %v", err)
	}
	return s
}

func table(t *testing.T, cols []string, rows ...[]string) core.Table {
	t.Helper()
	tbl, err := core.NewTable(cols, rows)
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return tbl
}

var featureCols = []string{"Gender", "ApplicantIncome", "Credit_History", "Property_Area"}

func trainTable(t *testing.T) core.Table {
	return table(t, featureCols,
		[]string{"Male", "1000", "1", "Urban"},
		[]string{"Male", "3000", "1.0", "Rural"},
		[]string{"", "NA", "0", "Urban"},
		[]string{"Male", "5000", "", "Semiurban"},
	)
}

func fit(t *testing.T) *Fitted {
	t.Helper()
	f, err := Build(loanSchema(t)).Fit(trainTable(t), "run-1")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	return f
}

func TestFitLearnsStatistics(t *testing.T) {
	t.Parallel()

	f := fit(t)
	segs := f.learned()
	if len(segs) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segs))
	}

	income := segs[0].Columns[0]
	if income.Median != 3000 {
		t.Fatalf("expected median 3000, got %v", income.Median)
	}
	// imputed column is 1000, 3000, 3000, 5000
	if income.Mean != 3000 {
		t.Fatalf("expected mean 3000, got %v", income.Mean)
	}
	if want := math.Sqrt(2e6); math.Abs(income.Scale-want) > 1e-9 {
		t.Fatalf("expected scale %v, got %v", want, income.Scale)
	}

	credit := segs[1].Columns[0]
	if !reflect.DeepEqual(credit.Categories, []string{"0", "1"}) || credit.Mode != "1" {
		t.Fatalf("unexpected credit stats %+v", credit)
	}

	gender := segs[2].Columns[0]
	if !reflect.DeepEqual(gender.Categories, []string{"Male"}) || gender.Mode != "Male" {
		t.Fatalf("unexpected gender stats %+v", gender)
	}

	if got := f.InputColumns(); !reflect.DeepEqual(got, []string{"ApplicantIncome", "Credit_History", "Gender", "Property_Area"}) {
		t.Fatalf("unexpected input columns %v", got)
	}
	// 1 scaled + 2 credit + 1 gender + 3 area
	if f.Width() != 7 {
		t.Fatalf("expected width 7, got %d", f.Width())
	}
}

func TestTransformEncodesRows(t *testing.T) {
	t.Parallel()

	f := fit(t)
	x, err := f.Transform(table(t, featureCols, []string{"", "3000", "0", "Rural"}))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	want := []float64{0, 1, 0, 1, 1, 0, 0}
	if got := mat.Row(nil, 0, x); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestTransformIsIdempotent(t *testing.T) {
	t.Parallel()

	f := fit(t)
	first, err := f.Transform(trainTable(t))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	second, err := f.Transform(trainTable(t))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !mat.Equal(first, second) {
		t.Fatalf("transform is not deterministic")
	}
}

func TestTransformDoesNotLeak(t *testing.T) {
	t.Parallel()

	f := fit(t)
	before := f.learned()

	test := table(t, featureCols,
		[]string{"Female", "999999", "7", "Mars"},
		[]string{"", "", "", ""},
	)
	if _, err := f.Transform(test); err != nil {
		t.Fatalf("transform: %v", err)
	}

	if !reflect.DeepEqual(before, f.learned()) {
		t.Fatalf("transform changed fitted statistics")
	}
}

func TestUnseenCategoryEncodesZeros(t *testing.T) {
	t.Parallel()

	f := fit(t)
	x, err := f.Transform(table(t, featureCols, []string{"Female", "1000", "2", "Mars"}))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	row := mat.Row(nil, 0, x)
	for i, v := range row[1:] {
		if v != 0 {
			t.Fatalf("expected all-zero indicators for unseen categories, got %v at %d", row, i+1)
		}
	}
}

func TestColumnOrderIsStable(t *testing.T) {
	t.Parallel()

	shuffled := table(t, []string{"Property_Area", "Credit_History", "ApplicantIncome", "Gender"},
		[]string{"Urban", "1", "1000", "Male"},
		[]string{"Rural", "1.0", "3000", "Male"},
		[]string{"Urban", "0", "NA", ""},
		[]string{"Semiurban", "", "5000", "Male"},
	)

	a := fit(t)
	b, err := Build(loanSchema(t)).Fit(shuffled, "run-2")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if a.Width() != b.Width() || !reflect.DeepEqual(a.InputColumns(), b.InputColumns()) {
		t.Fatalf("column layout depends on input column order")
	}

	xa, err := a.Transform(trainTable(t))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	xb, err := b.Transform(shuffled)
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !mat.EqualApprox(xa, xb, 1e-12) {
		t.Fatalf("expected identical matrices")
	}
}

func TestModeTieBreaksToSmallest(t *testing.T) {
	t.Parallel()

	ct := New(Segment{Name: "c", Strategy: ImputeOneHot, Columns: []string{"c"}})
	f, err := ct.Fit(table(t, []string{"c"}, []string{"b"}, []string{"a"}, []string{""}), "")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	if got := f.learned()[0].Columns[0].Mode; got != "a" {
		t.Fatalf("expected mode a, got %q", got)
	}

	ct = New(Segment{Name: "n", Strategy: ImputeOneHot, Numeric: true, Columns: []string{"n"}})
	f, err = ct.Fit(table(t, []string{"n"}, []string{"10"}, []string{"9"}, []string{"10.0"}, []string{"9"}), "")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	stats := f.learned()[0].Columns[0]
	if stats.Mode != "9" || !reflect.DeepEqual(stats.Categories, []string{"9", "10"}) {
		t.Fatalf("unexpected numeric stats %+v", stats)
	}
}

func TestConstantColumnScalesToZero(t *testing.T) {
	t.Parallel()

	ct := New(Segment{Name: "n", Strategy: ImputeScale, Numeric: true, Columns: []string{"n"}})
	f, err := ct.Fit(table(t, []string{"n"}, []string{"4"}, []string{"4"}), "")
	if err != nil {
		t.Fatalf("fit: %v", err)
	}
	x, err := f.Transform(table(t, []string{"n"}, []string{"4"}))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if x.At(0, 0) != 0 {
		t.Fatalf("expected 0, got %v", x.At(0, 0))
	}
}

func TestFitAndTransformErrors(t *testing.T) {
	t.Parallel()

	ct := Build(loanSchema(t))

	if _, err := ct.Fit(table(t, featureCols), ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty table, got %v", err)
	}

	bad := table(t, featureCols, []string{"Male", "lots", "1", "Urban"})
	if _, err := ct.Fit(bad, ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input for non-numeric income, got %v", err)
	}

	allMissing := table(t, featureCols, []string{"Male", "", "1", "Urban"})
	if _, err := ct.Fit(allMissing, ""); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input for unobserved column, got %v", err)
	}

	if _, err := ct.Fit(table(t, []string{"Gender"}, []string{"Male"}), ""); !errors.Is(err, core.ErrConfig) {
		t.Fatalf("expected config error for missing column, got %v", err)
	}

	f := fit(t)
	if _, err := f.Transform(table(t, featureCols, []string{"Male", "many", "1", "Urban"})); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
	if _, err := f.Transform(table(t, []string{"Gender"}, []string{"Male"})); !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing column, got %v", err)
	}
}

func TestEncodeDecode(t *testing.T) {
	t.Parallel()

	f := fit(t)
	data, err := Encode(f)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	g, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if g.RunID() != "run-1" || g.Width() != f.Width() {
		t.Fatalf("decoded transformer differs: %s %d", g.RunID(), g.Width())
	}

	xf, _ := f.Transform(trainTable(t))
	xg, err := g.Transform(trainTable(t))
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if !mat.Equal(xf, xg) {
		t.Fatalf("decoded transformer encodes differently")
	}
}

func TestDecodeRejectsCorruptState(t *testing.T) {
	t.Parallel()

	for _, data := range []string{
		`not json`,
		`{"run_id":"x","segments":[]}`,
		`{"run_id":"x","segments":[{"name":"n","strategy":"impute_scale","columns":[{"column":"a","scale":0}]}]}`,
		`{"run_id":"x","segments":[{"name":"c","strategy":"impute_onehot","columns":[{"column":"a","mode":"z","categories":["b","a"]}]}]}`,
		`{"run_id":"x","segments":[{"name":"c","strategy":"bogus","columns":[{"column":"a"}]}]}`,
	} {
		if _, err := Decode([]byte(data)); !errors.Is(err, core.ErrArtifactCorrupt) {
			t.Fatalf("expected corrupt error for %s, got %v", data, err)
		}
	}
}
