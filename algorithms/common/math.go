package common

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic statistical helpers shared by the analysis stages, backed by gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StandardDeviation calculates the population standard deviation
func StandardDeviation(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	_, std := stat.PopMeanStdDev(data, nil)
	return std
}

// Median returns the median of data without modifying it
func Median(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(data))
	copy(sorted, data)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2.0
	}
	return sorted[mid]
}

// ArgMax returns the index of the largest value. The first index wins ties.
// Returns -1 for empty input.
func ArgMax(data []float64) int {
	if len(data) == 0 {
		return -1
	}
	return floats.MaxIdx(data)
}

// Max returns the largest value, 0 for empty input
func Max(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Max(data)
}

// NormalizeSum scales data in place so it sums to one.
// Data whose total is not positive is left unchanged and false is returned.
func NormalizeSum(data []float64) bool {
	total := floats.Sum(data)
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return false
	}
	floats.Scale(1.0/total, data)
	return true
}

// NormalizeMax scales data in place so its largest absolute value is one.
// Frames below threshold are left untouched.
func NormalizeMax(data []float64, threshold float64) {
	if len(data) == 0 {
		return
	}
	peak := floats.Norm(data, math.Inf(1))
	if peak < threshold {
		return
	}
	floats.Scale(1.0/peak, data)
}

// Clamp constrains a value to a range
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// NextPowerOfTwo finds the next power of 2 >= n
func NextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}

	power := 1
	for power < n {
		power <<= 1
	}
	return power
}
