package analysis

import (
	"math"
	"testing"

	"github.com/quantalabs/analysis-api/apperrors"
)

func TestCalculateStatistics(t *testing.T) {
	tests := []struct {
		name    string
		numbers []float64
		want    NumericAnalysis
	}{
		{
			name:    "one to five",
			numbers: []float64{1, 2, 3, 4, 5},
			want: NumericAnalysis{
				Minimum:           1,
				Maximum:           5,
				Mean:              3,
				Median:            3,
				StandardDeviation: math.Sqrt(2.5),
				Count:             5,
			},
		},
		{
			name:    "single element has zero stdev",
			numbers: []float64{42},
			want: NumericAnalysis{
				Minimum:           42,
				Maximum:           42,
				Mean:              42,
				Median:            42,
				StandardDeviation: 0,
				Count:             1,
			},
		},
		{
			name:    "even count median averages the middle pair",
			numbers: []float64{4, 1, 3, 2},
			want: NumericAnalysis{
				Minimum:           1,
				Maximum:           4,
				Mean:              2.5,
				Median:            2.5,
				StandardDeviation: math.Sqrt(5.0 / 3.0),
				Count:             4,
			},
		},
		{
			name:    "unsorted negative values",
			numbers: []float64{-5, 10, 0},
			want: NumericAnalysis{
				Minimum:           -5,
				Maximum:           10,
				Mean:              5.0 / 3.0,
				Median:            0,
				StandardDeviation: math.Sqrt((math.Pow(-5-5.0/3.0, 2) + math.Pow(10-5.0/3.0, 2) + math.Pow(0-5.0/3.0, 2)) / 2),
				Count:             3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateStatistics(tt.numbers)
			if err != nil {
				t.Fatalf("CalculateStatistics(%v) error: %v", tt.numbers, err)
			}

			checks := []struct {
				field string
				got   float64
				want  float64
			}{
				{"minimum", got.Minimum, tt.want.Minimum},
				{"maximum", got.Maximum, tt.want.Maximum},
				{"mean", got.Mean, tt.want.Mean},
				{"median", got.Median, tt.want.Median},
				{"standard_deviation", got.StandardDeviation, tt.want.StandardDeviation},
				{"count", got.Count, tt.want.Count},
			}
			for _, c := range checks {
				if math.Abs(c.got-c.want) > 1e-9 {
					t.Errorf("%s = %v, want %v", c.field, c.got, c.want)
				}
			}
		})
	}
}

func TestCalculateStatisticsDoesNotMutateInput(t *testing.T) {
	numbers := []float64{3, 1, 2}
	if _, err := CalculateStatistics(numbers); err != nil {
		t.Fatalf("CalculateStatistics error: %v", err)
	}
	if numbers[0] != 3 || numbers[1] != 1 || numbers[2] != 2 {
		t.Errorf("input slice was mutated: %v", numbers)
	}
}

func TestCalculateStatisticsNonFinite(t *testing.T) {
	tests := []struct {
		name    string
		numbers []float64
	}{
		{"NaN", []float64{1, math.NaN(), 3}},
		{"positive infinity", []float64{math.Inf(1)}},
		{"negative infinity", []float64{1, math.Inf(-1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CalculateStatistics(tt.numbers)
			if err == nil {
				t.Fatal("expected error for non-finite input")
			}
			if kind := apperrors.KindOf(err); kind != apperrors.KindComputation {
				t.Errorf("error kind = %s, want %s", kind, apperrors.KindComputation)
			}
		})
	}
}
