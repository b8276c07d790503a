package model

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCAFindsDominantDirection(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	X := make([][]float64, 500)
	for i := range X {
		s := rng.NormFloat64() * 5
		X[i] = []float64{s, s, rng.NormFloat64() * 0.1}
	}

	pca := NewPCA(2, 100)
	require.NoError(t, pca.Fit(rand.New(rand.NewSource(1)), X))
	require.Len(t, pca.Components, 2)

	first := pca.Components[0]
	assert.InDelta(t, 1/math.Sqrt2, math.Abs(first[0]), 1e-3)
	assert.InDelta(t, 1/math.Sqrt2, math.Abs(first[1]), 1e-3)
	assert.InDelta(t, 0, dot(first, pca.Components[1]), 1e-6)
	assert.Greater(t, pca.ExplainedRatio()[0], 0.99)

	proj, err := pca.Transform(X)
	require.NoError(t, err)
	require.Len(t, proj, len(X))
	assert.Len(t, proj[0], 2)
}

func TestPCAErrors(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	assert.Error(t, NewPCA(1, 10).Fit(rng, [][]float64{{1, 2}}))
	assert.Error(t, NewPCA(3, 10).Fit(rng, [][]float64{{1, 2}, {3, 4}}))

	_, err := NewPCA(1, 10).Transform([][]float64{{1, 2}})
	assert.Error(t, err)
}

func TestFeaturesDenseOneHot(t *testing.T) {
	X := &Features{
		Numeric:     [][]float64{{0.5}, {1}},
		Categorical: [][]int{{2}, {0}},
		Levels:      []int{3},
	}
	assert.Equal(t, [][]float64{{0.5, 0, 0, 1}, {1, 1, 0, 0}}, X.Dense())
}
