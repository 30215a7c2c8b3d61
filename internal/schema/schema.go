// Package schema loads the declarative column schema that drives both
// training-time transformation and inference.
package schema

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/utils"
)

const component = "schema"

// Document is the on-disk shape of the schema resource.
type Document struct {
	NumFeatures   []string       `mapstructure:"num_features"`
	NumFeature2   []string       `mapstructure:"num_feature2"`
	OHColumns     []string       `mapstructure:"oh_columns"`
	DropColumns   []string       `mapstructure:"drop_columns"`
	TargetColumn  string         `mapstructure:"target_column"`
	TargetMapping map[string]int `mapstructure:"target_mapping"`
}

// Schema is the validated, read-only form of a Document.
type Schema struct {
	numFeatures   []string
	numFeature2   []string
	ohColumns     []string
	dropColumns   []string
	targetColumn  string
	targetMapping map[string]int
	labels        []string
}

// Load reads and validates the schema at path.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(core.ErrConfig, component, "load", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML schema document.
func Parse(data []byte) (*Schema, error) {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, core.NewError(core.ErrConfig, component, "parse", err)
	}
	if raw == nil {
		return nil, core.Errorf(core.ErrConfig, component, "parse", "empty schema document")
	}

	var doc Document
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, core.NewError(core.ErrConfig, component, "parse", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, core.NewError(core.ErrConfig, component, "parse", err)
	}
	return New(doc)
}

// New validates a document and builds a Schema from it.
func New(doc Document) (*Schema, error) {
	if err := validate(doc); err != nil {
		return nil, core.NewError(core.ErrConfig, component, "validate", err)
	}

	s := &Schema{
		numFeatures:   clone(doc.NumFeatures),
		numFeature2:   clone(doc.NumFeature2),
		ohColumns:     clone(doc.OHColumns),
		dropColumns:   clone(doc.DropColumns),
		targetColumn:  doc.TargetColumn,
		targetMapping: make(map[string]int, len(doc.TargetMapping)),
		labels:        make([]string, len(doc.TargetMapping)),
	}
	for label, idx := range doc.TargetMapping {
		s.targetMapping[label] = idx
		s.labels[idx] = label
	}
	return s, nil
}

func validate(doc Document) error {
	var errs error

	if strings.TrimSpace(doc.TargetColumn) == "" {
		errs = multierr.Append(errs, fmt.Errorf("target_column is required"))
	}
	if len(doc.NumFeatures)+len(doc.NumFeature2)+len(doc.OHColumns) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("at least one feature column is required"))
	}

	owner := make(map[string]string)
	groups := []struct {
		name    string
		columns []string
	}{
		{"num_features", doc.NumFeatures},
		{"num_feature2", doc.NumFeature2},
		{"oh_columns", doc.OHColumns},
		{"drop_columns", doc.DropColumns},
	}
	for _, g := range groups {
		for _, col := range g.columns {
			if strings.TrimSpace(col) == "" {
				errs = multierr.Append(errs, fmt.Errorf("%s contains an empty column name", g.name))
				continue
			}
			if col == doc.TargetColumn {
				errs = multierr.Append(errs, fmt.Errorf("target column %q listed in %s", col, g.name))
			}
			if prev, ok := owner[col]; ok {
				errs = multierr.Append(errs, fmt.Errorf("column %q listed in both %s and %s", col, prev, g.name))
				continue
			}
			owner[col] = g.name
		}
	}

	if len(doc.TargetMapping) == 0 {
		errs = multierr.Append(errs, fmt.Errorf("target_mapping is required"))
	}
	seen := make(map[int]string, len(doc.TargetMapping))
	for label, idx := range doc.TargetMapping {
		if idx < 0 || idx >= len(doc.TargetMapping) {
			errs = multierr.Append(errs, fmt.Errorf("target_mapping %q -> %d is outside 0..%d", label, idx, len(doc.TargetMapping)-1))
			continue
		}
		if prev, ok := seen[idx]; ok {
			errs = multierr.Append(errs, fmt.Errorf("target_mapping labels %q and %q both map to %d", prev, label, idx))
			continue
		}
		seen[idx] = label
	}

	return errs
}

// NumFeatures returns the plain-numeric columns.
func (s *Schema) NumFeatures() []string { return clone(s.numFeatures) }

// NumFeature2 returns the numeric columns encoded as categories.
func (s *Schema) NumFeature2() []string { return clone(s.numFeature2) }

// OHColumns returns the categorical columns.
func (s *Schema) OHColumns() []string { return clone(s.ohColumns) }

// DropColumns returns the columns removed before transformation.
func (s *Schema) DropColumns() []string { return clone(s.dropColumns) }

// TargetColumn returns the name of the label column.
func (s *Schema) TargetColumn() string { return s.targetColumn }

// FeatureColumns returns every transformer input column in transform order.
func (s *Schema) FeatureColumns() []string {
	out := make([]string, 0, len(s.numFeatures)+len(s.numFeature2)+len(s.ohColumns))
	out = append(out, s.numFeatures...)
	out = append(out, s.numFeature2...)
	return append(out, s.ohColumns...)
}

// Remap converts raw target labels to their integer codes.
func (s *Schema) Remap(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, raw := range labels {
		idx, ok := s.targetMapping[utils.NormalizeValue(raw)]
		if !ok {
			return nil, core.Errorf(core.ErrLabelMapping, component, "remap",
				"row %d: label %q not in target_mapping %v", i, raw, s.labels)
		}
		out[i] = idx
	}
	return out, nil
}

// Label is the inverse of Remap for a single code.
func (s *Schema) Label(code int) (string, bool) {
	if code < 0 || code >= len(s.labels) {
		return "", false
	}
	return s.labels[code], true
}

// CheckColumns verifies a feature header against the schema: every schema
// feature must be present, and every header column must be either a feature,
// a dropped column, or the target.
func (s *Schema) CheckColumns(header []string) error {
	present := make(map[string]struct{}, len(header))
	for _, c := range header {
		present[c] = struct{}{}
	}

	known := make(map[string]struct{})
	for _, c := range s.FeatureColumns() {
		known[c] = struct{}{}
	}
	for _, c := range s.dropColumns {
		known[c] = struct{}{}
	}
	known[s.targetColumn] = struct{}{}

	var missing, uncovered []string
	for _, c := range s.FeatureColumns() {
		if _, ok := present[c]; !ok {
			missing = append(missing, c)
		}
	}
	for _, c := range header {
		if _, ok := known[c]; !ok {
			uncovered = append(uncovered, c)
		}
	}
	sort.Strings(uncovered)

	var errs error
	if len(missing) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("missing feature columns %v", missing))
	}
	if len(uncovered) > 0 {
		errs = multierr.Append(errs, fmt.Errorf("columns %v are not covered by any column group or drop_columns", uncovered))
	}
	if errs != nil {
		return core.NewError(core.ErrConfig, component, "check columns", errs)
	}
	return nil
}

func clone(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
