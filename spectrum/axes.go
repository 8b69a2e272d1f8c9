package spectrum

import (
	"math"
	"sort"
)

// NearestIndex returns the index of the axis value closest to x. The values
// must be strictly increasing, as guaranteed for stored axes.
func NearestIndex(values []float64, x float64) int {
	i := sort.SearchFloat64s(values, x)
	if i == 0 {
		return 0
	}
	if i == len(values) {
		return len(values) - 1
	}
	if x-values[i-1] <= values[i]-x {
		return i - 1
	}

	return i
}

// Step returns the mean sample spacing of an axis; 0 for single-sample axes.
func Step(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}

	return (values[len(values)-1] - values[0]) / float64(len(values)-1)
}

// Span returns max-min of the values.
func Span(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	return values[len(values)-1] - values[0]
}

// IsUniform reports whether the axis spacing is uniform within tol of the
// mean step. Single- and two-sample axes are trivially uniform.
func IsUniform(values []float64, tol float64) bool {
	if len(values) < 3 {
		return true
	}
	step := Step(values)
	for i := 1; i < len(values); i++ {
		if math.Abs((values[i]-values[i-1])-step) > tol {
			return false
		}
	}

	return true
}

// rangeIndices returns the [lo, hi] inclusive index range of values inside
// [min, max]. ok is false when the range selects nothing.
func rangeIndices(values []float64, min, max float64) (lo, hi int, ok bool) {
	if min > max {
		min, max = max, min
	}
	lo = sort.SearchFloat64s(values, min)
	hi = sort.SearchFloat64s(values, max)
	if hi == len(values) || values[hi] > max {
		hi--
	}
	if lo > hi {
		return 0, 0, false
	}

	return lo, hi, true
}
