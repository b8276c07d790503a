package model

import "math/rand"

// Clusterer partitions a mixed numeric/categorical feature matrix.
type Clusterer interface {
	Fit(rng *rand.Rand, X *Features) (*Clustering, error)
}

var _ Clusterer = (*KPrototypes)(nil)
