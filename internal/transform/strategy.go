package transform

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/utils"
)

// Strategy names one of the column encodings a segment can apply.
type Strategy string

const (
	// ImputeScale fills missing values with the training median, then
	// standardizes to zero mean and unit variance.
	ImputeScale Strategy = "impute_scale"
	// ImputeOneHot fills missing values with the training mode, then expands
	// the value into one indicator per observed category.
	ImputeOneHot Strategy = "impute_onehot"
)

// ColumnStats is the learned state for one input column.
type ColumnStats struct {
	Column     string   `json:"column"`
	Median     float64  `json:"median"`
	Mean       float64  `json:"mean"`
	Scale      float64  `json:"scale"`
	Mode       string   `json:"mode,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

// width is the number of output columns produced for this column.
func (c ColumnStats) width(strategy Strategy) int {
	if strategy == ImputeScale {
		return 1
	}
	return len(c.Categories)
}

func parseNumber(raw string) (float64, error) {
	return strconv.ParseFloat(utils.NormalizeValue(raw), 64)
}

// categoryKey maps a raw, non-missing cell to its vocabulary key.
func categoryKey(raw string, numeric bool) (string, error) {
	if !numeric {
		return utils.NormalizeValue(raw), nil
	}
	v, err := parseNumber(raw)
	if err != nil {
		return "", err
	}
	return canonicalNumber(v), nil
}

func fitColumn(strategy Strategy, numeric bool, name string, cells []string) (ColumnStats, error) {
	stats := ColumnStats{Column: name}

	switch strategy {
	case ImputeScale:
		observed := make([]float64, 0, len(cells))
		for i, raw := range cells {
			if core.IsMissing(raw) {
				continue
			}
			v, err := parseNumber(raw)
			if err != nil {
				return stats, core.Errorf(core.ErrInvalidInput, component, "fit",
					"column %q row %d: %q is not numeric", name, i, raw)
			}
			observed = append(observed, v)
		}
		if len(observed) == 0 {
			return stats, core.Errorf(core.ErrInvalidInput, component, "fit", "column %q has no observed values", name)
		}
		stats.Median = median(observed)
		imputed := make([]float64, len(cells))
		j := 0
		for i, raw := range cells {
			if core.IsMissing(raw) {
				imputed[i] = stats.Median
				continue
			}
			imputed[i] = observed[j]
			j++
		}
		stats.Mean, stats.Scale = meanScale(imputed)

	case ImputeOneHot:
		less := lessString
		if numeric {
			less = lessNumeric
		}
		keys := make([]string, 0, len(cells))
		for i, raw := range cells {
			if core.IsMissing(raw) {
				continue
			}
			key, err := categoryKey(raw, numeric)
			if err != nil {
				return stats, core.Errorf(core.ErrInvalidInput, component, "fit",
					"column %q row %d: %q is not numeric", name, i, raw)
			}
			keys = append(keys, key)
		}
		if len(keys) == 0 {
			return stats, core.Errorf(core.ErrInvalidInput, component, "fit", "column %q has no observed values", name)
		}
		stats.Mode = mode(keys, less)
		stats.Categories = vocabulary(keys, less)

	default:
		return stats, fmt.Errorf("unknown strategy %q", strategy)
	}

	return stats, nil
}

// encode writes the encoding of one raw cell into dst, which has exactly
// c.width(strategy) elements and is zeroed by the caller.
func (c ColumnStats) encode(strategy Strategy, numeric bool, raw string, dst []float64) error {
	switch strategy {
	case ImputeScale:
		v := c.Median
		if !core.IsMissing(raw) {
			parsed, err := parseNumber(raw)
			if err != nil {
				return fmt.Errorf("column %q: %q is not numeric", c.Column, raw)
			}
			v = parsed
		}
		dst[0] = (v - c.Mean) / c.Scale

	case ImputeOneHot:
		key := c.Mode
		if !core.IsMissing(raw) {
			k, err := categoryKey(raw, numeric)
			if err != nil {
				return fmt.Errorf("column %q: %q is not numeric", c.Column, raw)
			}
			key = k
		}
		if idx, ok := c.index(key, numeric); ok {
			dst[idx] = 1
		}

	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	return nil
}

func (c ColumnStats) index(key string, numeric bool) (int, bool) {
	less := lessString
	if numeric {
		less = lessNumeric
	}
	i := sort.Search(len(c.Categories), func(i int) bool { return !less(c.Categories[i], key) })
	if i < len(c.Categories) && c.Categories[i] == key {
		return i, true
	}
	return 0, false
}

func (c ColumnStats) validate(strategy Strategy, numeric bool) error {
	switch strategy {
	case ImputeScale:
		if c.Scale == 0 {
			return fmt.Errorf("column %q has zero scale", c.Column)
		}
	case ImputeOneHot:
		less := lessString
		if numeric {
			less = lessNumeric
		}
		if len(c.Categories) == 0 {
			return fmt.Errorf("column %q has no categories", c.Column)
		}
		for i := 1; i < len(c.Categories); i++ {
			if !less(c.Categories[i-1], c.Categories[i]) {
				return fmt.Errorf("column %q categories are not sorted and distinct", c.Column)
			}
		}
		if _, ok := c.index(c.Mode, numeric); !ok {
			return fmt.Errorf("column %q mode %q is not a known category", c.Column, c.Mode)
		}
	default:
		return fmt.Errorf("unknown strategy %q", strategy)
	}
	return nil
}
