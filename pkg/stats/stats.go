package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Mean computes the average of a slice.
func Mean(x []float64) float64 {
	n := len(x)
	if n == 0 {
		return 0
	}
	return floats.Sum(x) / float64(n)
}

// MinMax returns the minimum and maximum values in the slice, skipping NaN.
// An empty or all-NaN slice yields (NaN, NaN).
func MinMax(x []float64) (float64, float64) {
	min, max := math.NaN(), math.NaN()
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}
	return min, max
}

// Median returns the median value of the slice (allocates a copy).
func Median(x []float64) float64 {
	return Percentile(x, 50)
}

// Percentile returns the p-th percentile value of the slice (0 <= p <= 100),
// interpolating linearly between closest ranks.
func Percentile(x []float64, p float64) float64 {
	n := len(x)
	if n == 0 {
		return math.NaN()
	}
	cp := make([]float64, n)
	copy(cp, x)
	sort.Float64s(cp)
	if p <= 0 {
		return cp[0]
	}
	if p >= 100 {
		return cp[n-1]
	}
	rank := p / 100 * float64(n-1)
	lower := int(rank)
	upper := lower + 1
	weight := rank - float64(lower)
	if upper >= n {
		return cp[lower]
	}
	return cp[lower]*(1-weight) + cp[upper]*weight
}

// FiveNum is the six-number summary printed for numeric variables.
type FiveNum struct {
	Min, Q1, Median, Mean, Q3, Max float64
}

// SummaryLabels are the column headings matching FiveNum.Values.
var SummaryLabels = []string{"Min.", "1st Qu.", "Median", "Mean", "3rd Qu.", "Max."}

// Values returns the summary in SummaryLabels order.
func (s FiveNum) Values() []float64 {
	return []float64{s.Min, s.Q1, s.Median, s.Mean, s.Q3, s.Max}
}

// Summary computes min, quartiles, mean and max of x.
func Summary(x []float64) FiveNum {
	if len(x) == 0 {
		nan := math.NaN()
		return FiveNum{nan, nan, nan, nan, nan, nan}
	}
	min, max := MinMax(x)
	return FiveNum{
		Min:    min,
		Q1:     Percentile(x, 25),
		Median: Percentile(x, 50),
		Mean:   Mean(x),
		Q3:     Percentile(x, 75),
		Max:    max,
	}
}

// Variance computes the sample variance (n-1 denominator).
func Variance(x []float64) float64 {
	n := len(x)
	if n < 2 {
		return 0
	}
	m := Mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - m
		ss += d * d
	}
	return ss / float64(n-1)
}
