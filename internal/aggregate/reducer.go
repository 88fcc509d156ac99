package aggregate

import (
	"fmt"
	"strings"

	"github.com/getsentry/framestats/internal/errorutil"
	"github.com/getsentry/framestats/internal/quantile"
)

// Reducer selects how the samples of a function are combined into one value.
type Reducer int

const (
	Sum Reducer = iota
	Average
	Min
	Max
	Median
)

var reducers = [...]struct {
	name   string
	reduce func(xs []float64) float64
}{
	Sum:     {"sum", quantile.Sum},
	Average: {"average", quantile.Mean},
	Min: {"min", func(xs []float64) float64 {
		min, _ := quantile.Bounds(xs)
		return min
	}},
	Max: {"max", func(xs []float64) float64 {
		_, max := quantile.Bounds(xs)
		return max
	}},
	Median: {"median", func(xs []float64) float64 {
		return quantile.Percentile(xs, 0.5)
	}},
}

// Valid reports whether r is a known reducer.
func (r Reducer) Valid() bool {
	return r >= 0 && int(r) < len(reducers)
}

// Reduce combines xs into one value. xs must not be empty and may be
// reordered.
func (r Reducer) Reduce(xs []float64) float64 {
	return reducers[r].reduce(xs)
}

func (r Reducer) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Reducer(%d)", int(r))
	}
	return reducers[r].name
}

// ParseReducer returns the reducer named name, ignoring case. "avg" is
// accepted for Average.
func ParseReducer(name string) (Reducer, error) {
	name = strings.ToLower(name)
	if name == "avg" {
		return Average, nil
	}
	for i, r := range reducers {
		if r.name == name {
			return Reducer(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown reducer %q", errorutil.ErrInvalidOptions, name)
}
