package transform

import (
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// median of x; x is not modified.
func median(x []float64) float64 {
	cp := make([]float64, len(x))
	copy(cp, x)
	sort.Float64s(cp)
	mid := len(cp) / 2
	if len(cp)%2 == 0 {
		return (cp[mid-1] + cp[mid]) / 2
	}
	return cp[mid]
}

// meanScale returns the mean and population standard deviation of x, with a
// zero deviation replaced by 1 so constant columns scale to 0.
func meanScale(x []float64) (float64, float64) {
	mean, variance := stat.PopMeanVariance(x, nil)
	std := math.Sqrt(variance)
	if std == 0 || math.IsNaN(std) {
		std = 1
	}
	return mean, std
}

// mode returns the most frequent key. Ties go to the smallest key under less.
func mode(keys []string, less func(a, b string) bool) string {
	counts := make(map[string]int, len(keys))
	for _, k := range keys {
		counts[k]++
	}
	best, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && less(k, best)) {
			best, bestCount = k, c
		}
	}
	return best
}

// vocabulary returns the sorted distinct keys.
func vocabulary(keys []string, less func(a, b string) bool) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0)
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func lessString(a, b string) bool { return a < b }

// lessNumeric orders canonical numeric keys by value.
func lessNumeric(a, b string) bool {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return a < b
	}
	return fa < fb
}

// canonicalNumber formats a parsed number so that "1", "1.0" and "1e0"
// share a single category key.
func canonicalNumber(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
