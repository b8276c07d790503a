package model

import (
	"math"
	"sort"
)

// KNN looks up the K rows closest to a query row under an arbitrary
// distance. Distance may return NaN for pairs that share no comparable
// variable; those pairs are skipped.
type KNN struct {
	K        int
	Distance func(i, j int) float64
}

// NewKNN creates a neighbour search over dist.
func NewKNN(k int, dist func(i, j int) float64) *KNN {
	return &KNN{K: k, Distance: dist}
}

// Nearest returns up to K candidate indexes ordered by distance. Equal
// distances keep candidate order, so results are deterministic.
func (m *KNN) Nearest(query int, candidates []int) []int {
	type pair struct {
		d   float64
		idx int
		pos int
	}

	// Small sorted slice of the K nearest found so far.
	nbrs := make([]pair, 0, m.K+1)
	less := func(a, b int) bool {
		if nbrs[a].d != nbrs[b].d {
			return nbrs[a].d < nbrs[b].d
		}
		return nbrs[a].pos < nbrs[b].pos
	}

	for pos, j := range candidates {
		if j == query {
			continue
		}
		d := m.Distance(query, j)
		if math.IsNaN(d) {
			continue
		}
		if len(nbrs) < m.K {
			nbrs = append(nbrs, pair{d: d, idx: j, pos: pos})
			sort.SliceStable(nbrs, less)
		} else if d < nbrs[len(nbrs)-1].d {
			nbrs[len(nbrs)-1] = pair{d: d, idx: j, pos: pos}
			sort.SliceStable(nbrs, less)
		}
	}

	out := make([]int, len(nbrs))
	for i, p := range nbrs {
		out[i] = p.idx
	}
	return out
}

// euclidSquared computes the squared Euclidean distance between two vectors.
func euclidSquared(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
