package quantile

import (
	"math"
	"sort"
)

// Sum returns the sum of xs.
func Sum(xs []float64) float64 {
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum
}

// Bounds returns the minimum and maximum values of xs.
func Bounds(xs []float64) (min float64, max float64) {
	if len(xs) == 0 {
		return 0, 0
	}
	min, max = xs[0], xs[0]
	for _, x := range xs {
		if x < min {
			min = x
		}
		if x > max {
			max = x
		}
	}
	return
}

// Mean returns the arithmetic mean of xs.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	m := 0.0
	for i, x := range xs {
		m += (x - m) / float64(i+1)
	}
	return m
}

// Percentile returns the pctileth value of xs using interpolation method R8
// from Hyndman and Fan (1996). xs is sorted in place.
//
// pctile will be capped to the range [0, 1]. If len(xs) == 0, returns 0.
//
// Percentile(0.5) is the median.
func Percentile(xs []float64, pctile float64) float64 {
	if len(xs) == 0 {
		return 0
	} else if pctile <= 0 {
		min, _ := Bounds(xs)
		return min
	} else if pctile >= 1 {
		_, max := Bounds(xs)
		return max
	}

	if !sort.Float64sAreSorted(xs) {
		sort.Float64s(xs)
	}

	N := float64(len(xs))
	n := 1/3.0 + pctile*(N+1/3.0) // R8
	kf, frac := math.Modf(n)
	k := int(kf)
	if k <= 0 {
		return xs[0]
	} else if k >= len(xs) {
		return xs[len(xs)-1]
	}
	return xs[k-1] + frac*(xs[k]-xs[k-1])
}
