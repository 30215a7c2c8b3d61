package core

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// missingTokens are the raw cell values treated as absent.
var missingTokens = map[string]struct{}{
	"":     {},
	"na":   {},
	"nan":  {},
	"null": {},
	"none": {},
}

// IsMissing reports whether a raw cell value represents a missing value.
func IsMissing(v string) bool {
	_, ok := missingTokens[strings.ToLower(strings.TrimSpace(v))]
	return ok
}

// Table is an ordered set of named columns holding raw string cells, one row
// per observation.
type Table struct {
	Columns []string
	Rows    [][]string
}

// NewTable builds a table and checks that every row has one cell per column.
func NewTable(columns []string, rows [][]string) (Table, error) {
	seen := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if _, dup := seen[c]; dup {
			return Table{}, fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = struct{}{}
	}
	for i, row := range rows {
		if len(row) != len(columns) {
			return Table{}, fmt.Errorf("row %d has %d cells, expected %d", i, len(row), len(columns))
		}
	}
	return Table{Columns: columns, Rows: rows}, nil
}

// Len returns the number of rows.
func (t Table) Len() int { return len(t.Rows) }

// Index returns the position of a column or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns a copy of the named column's cells.
func (t Table) Column(name string) ([]string, bool) {
	idx := t.Index(name)
	if idx < 0 {
		return nil, false
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[idx]
	}
	return out, true
}

// Drop returns a new table without the named columns. Unknown names are ignored.
func (t Table) Drop(names ...string) Table {
	drop := make(map[string]struct{}, len(names))
	for _, n := range names {
		drop[n] = struct{}{}
	}
	keep := make([]int, 0, len(t.Columns))
	cols := make([]string, 0, len(t.Columns))
	for i, c := range t.Columns {
		if _, ok := drop[c]; ok {
			continue
		}
		keep = append(keep, i)
		cols = append(cols, c)
	}
	rows := make([][]string, len(t.Rows))
	for r, row := range t.Rows {
		out := make([]string, len(keep))
		for j, idx := range keep {
			out[j] = row[idx]
		}
		rows[r] = out
	}
	return Table{Columns: cols, Rows: rows}
}

// Record is an immutable named-field input value for a single observation.
type Record struct {
	fields map[string]string
}

// NewRecord copies the given fields into a new record.
func NewRecord(fields map[string]string) Record {
	cp := make(map[string]string, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{fields: cp}
}

// Get returns the field value and whether it was present.
func (r Record) Get(name string) (string, bool) {
	v, ok := r.fields[name]
	return v, ok
}

// Names returns the record's field names in sorted order.
func (r Record) Names() []string {
	names := make([]string, 0, len(r.fields))
	for k := range r.fields {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ValidationReport is produced by the data validation stage.
type ValidationReport struct {
	Status  bool
	Message string
}

// IngestionArtifact points at the raw train/test tables.
type IngestionArtifact struct {
	TrainFilePath string
	TestFilePath  string
}

// TransformationArtifact holds handles to the persisted transformation outputs.
type TransformationArtifact struct {
	RunID          string
	Bucket         string
	TransformerKey string
	TrainMatrixKey string
	TestMatrixKey  string
}

// ModelArtifact holds the handle and evaluation of a trained model.
type ModelArtifact struct {
	RunID         string
	Bucket        string
	ModelKey      string
	TrainAccuracy float64
	TestAccuracy  float64
	Accepted      bool
}

// TrainingResult summarizes one training run.
type TrainingResult struct {
	RunID          string
	Transformation *TransformationArtifact
	Model          *ModelArtifact
	StartedAt      time.Time
	Duration       time.Duration
	Err            error
}

// Prediction is the outcome of a single prediction call.
type Prediction struct {
	Label       int
	Status      string
	RunID       string
	PredictedAt time.Time
}
