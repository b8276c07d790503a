package model

import (
	"context"
	"fmt"
	"math/rand"
)

// ElbowPoint is the cost of the best model found for one cluster count.
type ElbowPoint struct {
	K             int
	TotalWithinSS float64
}

// Elbow fits base for k = 1..maxK and records the total within-cluster cost
// at each k. Besides the random starts, every k > 1 is also started from the
// previous k's prototypes plus the row farthest from its prototype, which
// keeps the curve non-increasing. The sweep is diagnostic only.
func Elbow(ctx context.Context, rng *rand.Rand, X *Features, base KPrototypes, maxK int) ([]ElbowPoint, error) {
	if maxK > X.Len() {
		maxK = X.Len()
	}
	lambda := base.Lambda
	if lambda <= 0 {
		lambda = EstimateLambda(X)
	}

	points := make([]ElbowPoint, 0, maxK)
	var prev *Clustering
	for k := 1; k <= maxK; k++ {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		m := base
		m.K = k
		m.Lambda = lambda
		best, err := m.Fit(rng, X)
		if err != nil {
			return points, fmt.Errorf("elbow k=%d: %w", k, err)
		}

		if prev != nil {
			init := append(append([]Prototype(nil), prev.Prototypes...), rowPrototype(X, farthestRow(prev)))
			warm, err := m.FitFrom(X, init, lambda)
			if err != nil {
				return points, fmt.Errorf("elbow k=%d warm start: %w", k, err)
			}
			if warm.TotalWithinSS < best.TotalWithinSS {
				best = warm
			}
		}

		points = append(points, ElbowPoint{K: k, TotalWithinSS: best.TotalWithinSS})
		prev = best
	}
	return points, nil
}

// farthestRow returns the row with the largest cost against its own
// prototype.
func farthestRow(c *Clustering) int {
	far, farD := 0, -1.0
	for i, label := range c.Labels {
		if d := c.Distances[i][label-1]; d > farD {
			far, farD = i, d
		}
	}
	return far
}
