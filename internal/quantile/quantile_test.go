package quantile

import (
	"math"
	"testing"

	"github.com/getsentry/framestats/internal/testutil"
)

func TestSumAndMean(t *testing.T) {
	xs := []float64{1, 2, 3, 4}
	if got := Sum(xs); got != 10 {
		t.Fatalf("expected sum 10, got %v", got)
	}
	if diff := testutil.ApproxDiff(Mean(xs), 2.5, 1e-12); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
	if !math.IsNaN(Mean(nil)) {
		t.Fatal("mean of nothing should be NaN")
	}
}

func TestBounds(t *testing.T) {
	min, max := Bounds([]float64{3, -1, 7, 2})
	if min != -1 || max != 7 {
		t.Fatalf("expected (-1, 7), got (%v, %v)", min, max)
	}
	min, max = Bounds(nil)
	if min != 0 || max != 0 {
		t.Fatalf("expected (0, 0), got (%v, %v)", min, max)
	}
}

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		xs     []float64
		pctile float64
		want   float64
	}{
		{name: "median odd", xs: []float64{3, 1, 2}, pctile: 0.5, want: 2},
		{name: "median even", xs: []float64{4, 1, 3, 2}, pctile: 0.5, want: 2.5},
		{name: "single", xs: []float64{5}, pctile: 0.5, want: 5},
		{name: "lower cap", xs: []float64{4, 1, 3}, pctile: -1, want: 1},
		{name: "upper cap", xs: []float64{4, 1, 3}, pctile: 2, want: 4},
		{name: "empty", xs: nil, pctile: 0.5, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Percentile(test.xs, test.pctile)
			if diff := testutil.ApproxDiff(got, test.want, 1e-12); diff != "" {
				t.Fatalf("Result mismatch: got - want +\n%s", diff)
			}
		})
	}
}
