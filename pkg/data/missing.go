package data

import (
	"math"
	"math/rand"
)

// InjectMissing returns a copy of f in which, for every column independently,
// floor(fraction*n) distinct rows chosen uniformly at random are set to NaN.
// Identifiers are never touched.
func InjectMissing(rng *rand.Rand, f *Frame, fraction float64) *Frame {
	out := f.Clone()
	n := out.NRow()
	m := int(math.Floor(fraction * float64(n)))
	if m <= 0 {
		return out
	}
	if m > n {
		m = n
	}
	for _, c := range out.Columns {
		for _, i := range rng.Perm(n)[:m] {
			c.Values[i] = math.NaN()
		}
	}
	return out
}
