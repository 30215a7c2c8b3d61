// Package inference adapts single records and stored artifacts for prediction.
package inference

import (
	"strings"

	"github.com/mikey/loan-predictor/internal/core"
)

const component = "inference"

// FieldMapping translates external field names to schema column names.
// Lookups are case-insensitive; unmapped names pass through unchanged.
type FieldMapping struct {
	names map[string]string
}

// NewFieldMapping builds a mapping from external name to column name.
func NewFieldMapping(m map[string]string) FieldMapping {
	names := make(map[string]string, len(m))
	for external, column := range m {
		names[strings.ToLower(strings.TrimSpace(external))] = strings.TrimSpace(column)
	}
	return FieldMapping{names: names}
}

// Column returns the schema column for an external field name.
func (fm FieldMapping) Column(field string) string {
	if col, ok := fm.names[strings.ToLower(strings.TrimSpace(field))]; ok {
		return col
	}
	return strings.TrimSpace(field)
}

// Apply renames the fields of r. When two fields land on the same column the
// one named exactly like the column wins.
func (fm FieldMapping) Apply(r core.Record) core.Record {
	out := make(map[string]string)
	for _, name := range r.Names() {
		v, _ := r.Get(name)
		col := fm.Column(name)
		if _, taken := out[col]; taken && name != col {
			continue
		}
		out[col] = v
	}
	return core.NewRecord(out)
}

// ToTable wraps r into a one-row table with exactly the given columns in
// order. Unknown fields are ignored and absent fields become missing cells.
func ToTable(r core.Record, columns []string) core.Table {
	row := make([]string, len(columns))
	for i, col := range columns {
		if v, ok := r.Get(col); ok {
			row[i] = v
		}
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return core.Table{Columns: cols, Rows: [][]string{row}}
}
