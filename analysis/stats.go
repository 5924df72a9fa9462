// Package analysis implements the two engines behind the payload endpoint:
// descriptive statistics over a numbers array and lexical counts over a text
// blob. Both are pure functions over input already validated at the HTTP
// boundary.
package analysis

import (
	"math"
	"sort"

	"github.com/quantalabs/analysis-api/apperrors"
)

// NumericAnalysis holds the descriptive statistics of a numbers array.
// Count is a float so the response stays a uniform metric-to-float mapping.
type NumericAnalysis struct {
	Minimum           float64 `json:"minimum"`
	Maximum           float64 `json:"maximum"`
	Mean              float64 `json:"mean"`
	Median            float64 `json:"median"`
	StandardDeviation float64 `json:"standard_deviation"`
	Count             float64 `json:"count"`
}

// CalculateStatistics computes descriptive statistics over numbers.
// Validation upstream guarantees a non-empty, bounded slice; non-finite
// values are still rejected here as a computation failure rather than a
// validation one.
func CalculateStatistics(numbers []float64) (NumericAnalysis, error) {
	for _, n := range numbers {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return NumericAnalysis{}, apperrors.Computation("non-finite value in numbers array", nil)
		}
	}

	sorted := make([]float64, len(numbers))
	copy(sorted, numbers)
	sort.Float64s(sorted)

	var sum float64
	for _, n := range sorted {
		sum += n
	}
	mean := sum / float64(len(sorted))

	return NumericAnalysis{
		Minimum:           sorted[0],
		Maximum:           sorted[len(sorted)-1],
		Mean:              mean,
		Median:            median(sorted),
		StandardDeviation: sampleStdev(sorted, mean),
		Count:             float64(len(sorted)),
	}, nil
}

func median(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// sampleStdev is the sample standard deviation, defined as 0 for a single
// observation.
func sampleStdev(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}
