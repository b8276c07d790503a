package model

import (
	"errors"
	"math"
	"math/rand"
)

// PCA finds the top K principal components by power iteration with
// deflation. It is used to draw clusters in two dimensions.
type PCA struct {
	K          int
	MaxIter    int
	Means      []float64
	Components [][]float64 // K x p, unit vectors
	Explained  []float64   // approximate eigenvalues
}

func NewPCA(k, maxIter int) *PCA {
	return &PCA{K: k, MaxIter: maxIter}
}

// Fit computes the components of X. Starting vectors are drawn from rng.
func (pca *PCA) Fit(rng *rand.Rand, X [][]float64) error {
	if len(X) < 2 {
		return errors.New("pca needs at least two rows")
	}
	n, d := len(X), len(X[0])
	if pca.K < 1 || pca.K > d {
		return errors.New("pca component count must be between 1 and the feature count")
	}

	pca.Means = make([]float64, d)
	for _, row := range X {
		for j, v := range row {
			pca.Means[j] += v
		}
	}
	for j := range pca.Means {
		pca.Means[j] /= float64(n)
	}
	Z := pca.center(X)

	pca.Components = make([][]float64, 0, pca.K)
	pca.Explained = make([]float64, 0, pca.K)
	Zv := make([]float64, n)
	for comp := 0; comp < pca.K; comp++ {
		v := make([]float64, d)
		for j := range v {
			v[j] = rng.Float64() + 0.1
		}
		v = unitVector(v)

		for t := 0; t < max(pca.MaxIter, 1); t++ {
			// w = Zᵀ(Zv)
			parallelRows(n, func(_, start, end int) {
				for i := start; i < end; i++ {
					Zv[i] = dot(Z[i], v)
				}
			})
			w := make([]float64, d)
			for i := 0; i < n; i++ {
				for j := 0; j < d; j++ {
					w[j] += Z[i][j] * Zv[i]
				}
			}
			v = unitVector(w)
		}

		lam := 0.0
		for i := 0; i < n; i++ {
			s := dot(Z[i], v)
			lam += s * s
		}
		pca.Explained = append(pca.Explained, lam/float64(n-1))
		pca.Components = append(pca.Components, v)

		// Z = Z - (Zv)vᵀ
		parallelRows(n, func(_, start, end int) {
			for i := start; i < end; i++ {
				s := dot(Z[i], v)
				for j := 0; j < d; j++ {
					Z[i][j] -= s * v[j]
				}
			}
		})
	}
	return nil
}

// Transform projects X onto the fitted components.
func (pca *PCA) Transform(X [][]float64) ([][]float64, error) {
	if len(pca.Components) == 0 {
		return nil, errors.New("pca is not fitted")
	}
	if len(X) == 0 {
		return nil, errors.New("input data cannot be empty")
	}
	if len(X[0]) != len(pca.Means) {
		return nil, errors.New("feature count mismatch between input and training data")
	}

	Z := pca.center(X)
	out := make([][]float64, len(X))
	parallelRows(len(X), func(_, start, end int) {
		for i := start; i < end; i++ {
			t := make([]float64, len(pca.Components))
			for k, c := range pca.Components {
				t[k] = dot(Z[i], c)
			}
			out[i] = t
		}
	})
	return out, nil
}

// ExplainedRatio returns each component's share of the summed eigenvalues
// found, not of the total variance.
func (pca *PCA) ExplainedRatio() []float64 {
	total := 0.0
	for _, e := range pca.Explained {
		total += e
	}
	out := make([]float64, len(pca.Explained))
	if total == 0 {
		return out
	}
	for i, e := range pca.Explained {
		out[i] = e / total
	}
	return out
}

func (pca *PCA) center(X [][]float64) [][]float64 {
	Z := make([][]float64, len(X))
	for i, row := range X {
		z := make([]float64, len(row))
		for j, v := range row {
			z[j] = v - pca.Means[j]
		}
		Z[i] = z
	}
	return Z
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// unitVector scales v to length one. A zero vector is returned unchanged.
func unitVector(v []float64) []float64 {
	norm := math.Sqrt(dot(v, v))
	if norm == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}
