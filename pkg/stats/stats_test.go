package stats

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercentileMatchesLinearInterpolation(t *testing.T) {
	x := []float64{7, 1, 3, 5, 9}
	assert.Equal(t, 1.0, Percentile(x, 0))
	assert.Equal(t, 3.0, Percentile(x, 25))
	assert.Equal(t, 5.0, Median(x))
	assert.Equal(t, 9.0, Percentile(x, 100))

	even := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1.75, Percentile(even, 25), 1e-12)
	assert.InDelta(t, 2.5, Median(even), 1e-12)
	assert.InDelta(t, 3.25, Percentile(even, 75), 1e-12)
	assert.True(t, math.IsNaN(Percentile(nil, 50)))
}

func TestSummary(t *testing.T) {
	s := Summary([]float64{4, 1, 2, 3})
	assert.Equal(t, []float64{1, 1.75, 2.5, 2.5, 3.25, 4}, s.Values())
	assert.Len(t, SummaryLabels, len(s.Values()))
}

func TestMinMaxSkipsNaN(t *testing.T) {
	min, max := MinMax([]float64{math.NaN(), 3, -2, math.NaN(), 8})
	assert.Equal(t, -2.0, min)
	assert.Equal(t, 8.0, max)

	min, max = MinMax([]float64{math.NaN()})
	assert.True(t, math.IsNaN(min) && math.IsNaN(max))
}

func TestVariance(t *testing.T) {
	assert.InDelta(t, 2.5, Variance([]float64{1, 2, 3, 4, 5}), 1e-12)
	assert.Zero(t, Variance([]float64{3}))
}

func TestNormalizeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for trial := 0; trial < 20; trial++ {
		x := make([]float64, 50)
		for i := range x {
			x[i] = rng.NormFloat64()*1000 + 40
		}
		scaled := Normalize(x)
		for _, v := range scaled {
			assert.True(t, v >= 0 && v <= 1)
		}
		back := Denormalize(scaled, x)
		assert.InDeltaSlice(t, x, back, 1e-9)
	}
}

func TestNormalizeConstantColumn(t *testing.T) {
	x := []float64{4, 4, 4}
	assert.Equal(t, []float64{0, 0, 0}, Normalize(x))
	assert.Equal(t, x, Denormalize(Normalize(x), x))
}

func TestDenormalizeExtrapolates(t *testing.T) {
	orig := []float64{10, 20}
	assert.Equal(t, []float64{0, 30, 15}, Denormalize([]float64{-1, 2, 0.5}, orig))
}

func TestMinMaxScaler(t *testing.T) {
	X := [][]float64{{1, 100}, {3, math.NaN()}, {5, 300}}
	s := NewMinMaxScaler()

	_, err := s.Transform(X)
	require.ErrorIs(t, err, ErrNotFitted)

	scaled, err := s.FitTransform(X)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, scaled[0])
	assert.Equal(t, 0.5, scaled[1][0])
	assert.True(t, math.IsNaN(scaled[1][1]))
	assert.Equal(t, []float64{1, 1}, scaled[2])

	back, err := s.InverseTransform([][]float64{{0.5, 0.25}})
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 150}, back[0])
}
