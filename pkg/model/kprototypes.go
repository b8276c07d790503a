package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"slices"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/stats"
)

var (
	ErrInvalidK   = errors.New("cluster count must be at least 1")
	ErrTooFewRows = errors.New("number of data points is less than K")
)

// KPrototypes clusters mixed data: squared Euclidean distance on the numeric
// block plus Lambda times the number of categorical mismatches.
type KPrototypes struct {
	K        int
	Restarts int     // random starts; the lowest total cost wins
	MaxIter  int     // iterations per start
	Lambda   float64 // <= 0 estimates it from the data
}

// Option configures a KPrototypes model.
type Option func(*KPrototypes)

func WithRestarts(n int) Option   { return func(m *KPrototypes) { m.Restarts = n } }
func WithMaxIter(n int) Option    { return func(m *KPrototypes) { m.MaxIter = n } }
func WithLambda(l float64) Option { return func(m *KPrototypes) { m.Lambda = l } }

// NewKPrototypes returns a model for k clusters with one start and 100
// iterations unless overridden.
func NewKPrototypes(k int, opts ...Option) *KPrototypes {
	m := &KPrototypes{K: k, Restarts: 1, MaxIter: 100}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Prototype is a cluster centre: means for numeric variables, modes for
// categorical ones.
type Prototype struct {
	Numeric     []float64
	Categorical []int
}

func (p Prototype) clone() Prototype {
	return Prototype{
		Numeric:     append([]float64(nil), p.Numeric...),
		Categorical: append([]int(nil), p.Categorical...),
	}
}

// Clustering is a fitted k-prototypes model.
type Clustering struct {
	K             int
	Labels        []int // 1..K, one per row
	Prototypes    []Prototype
	Sizes         []int
	WithinSS      []float64
	TotalWithinSS float64
	Distances     [][]float64 // row x cluster dissimilarity
	Lambda        float64
	Iterations    int
}

// Fit runs Restarts random starts and keeps the one with the lowest total
// within-cluster cost.
func (m *KPrototypes) Fit(rng *rand.Rand, X *Features) (*Clustering, error) {
	if err := m.check(X); err != nil {
		return nil, err
	}
	lambda := m.Lambda
	if lambda <= 0 {
		lambda = EstimateLambda(X)
	}

	restarts := max(m.Restarts, 1)
	var best *Clustering
	for r := 0; r < restarts; r++ {
		res := m.run(X, lambda, m.initPrototypes(rng, X, lambda))
		if best == nil || res.TotalWithinSS < best.TotalWithinSS {
			best = res
		}
	}
	return best, nil
}

// FitFrom runs a single start from the given prototypes. len(init) must
// equal K.
func (m *KPrototypes) FitFrom(X *Features, init []Prototype, lambda float64) (*Clustering, error) {
	if err := m.check(X); err != nil {
		return nil, err
	}
	if len(init) != m.K {
		return nil, fmt.Errorf("need %d initial prototypes, got %d", m.K, len(init))
	}
	protos := make([]Prototype, len(init))
	for i, p := range init {
		protos[i] = p.clone()
	}
	return m.run(X, lambda, protos), nil
}

func (m *KPrototypes) check(X *Features) error {
	if m.K < 1 {
		return ErrInvalidK
	}
	n := X.Len()
	if n == 0 {
		return errors.New("input data cannot be empty")
	}
	if n < m.K {
		return fmt.Errorf("%w: %d rows, k=%d", ErrTooFewRows, n, m.K)
	}
	for i, row := range X.Numeric {
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: %w", i, ErrMissingValues)
			}
		}
	}
	return nil
}

// initPrototypes seeds K distinct rows: the first uniformly, each next one
// with probability proportional to its cost against the nearest prototype
// chosen so far.
func (m *KPrototypes) initPrototypes(rng *rand.Rand, X *Features, lambda float64) []Prototype {
	n := X.Len()
	protos := make([]Prototype, 0, m.K)
	chosen := make([]bool, n)

	idx := rng.Intn(n)
	protos = append(protos, rowPrototype(X, idx))
	chosen[idx] = true

	dist := make([]float64, n)
	for len(protos) < m.K {
		total := 0.0
		for i := 0; i < n; i++ {
			if chosen[i] {
				dist[i] = 0
				continue
			}
			minD := math.Inf(1)
			for _, p := range protos {
				minD = math.Min(minD, Dissimilarity(X.Numeric[i], X.Categorical[i], p, lambda))
			}
			dist[i] = minD
			total += minD
		}

		next := -1
		if total > 0 {
			r := rng.Float64() * total
			cumulative := 0.0
			for i, d := range dist {
				if d == 0 {
					continue
				}
				cumulative += d
				next = i
				if cumulative >= r {
					break
				}
			}
		} else {
			// Every remaining row duplicates a prototype; take one at random.
			for _, i := range rng.Perm(n) {
				if !chosen[i] {
					next = i
					break
				}
			}
		}
		protos = append(protos, rowPrototype(X, next))
		chosen[next] = true
	}
	return protos
}

func rowPrototype(X *Features, i int) Prototype {
	return Prototype{
		Numeric:     append([]float64(nil), X.Numeric[i]...),
		Categorical: append([]int(nil), X.Categorical[i]...),
	}
}

// run alternates assignment and update steps until assignments settle.
func (m *KPrototypes) run(X *Features, lambda float64, protos []Prototype) *Clustering {
	n := X.Len()
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}

	// one flag per worker; rows are split into disjoint chunks
	changedBy := make([]bool, runtime.GOMAXPROCS(0))
	iter := 0
	for iter < max(m.MaxIter, 1) {
		iter++
		for w := range changedBy {
			changedBy[w] = false
		}
		parallelRows(n, func(w, start, end int) {
			for i := start; i < end; i++ {
				best, bestD := 0, math.Inf(1)
				for k, p := range protos {
					d := Dissimilarity(X.Numeric[i], X.Categorical[i], p, lambda)
					if d < bestD {
						best, bestD = k, d
					}
				}
				if assign[i] != best {
					changedBy[w] = true
				}
				assign[i] = best
			}
		})
		if !slices.Contains(changedBy, true) {
			break
		}
		updatePrototypes(X, assign, protos)
	}

	res := &Clustering{
		K:          m.K,
		Labels:     make([]int, n),
		Prototypes: protos,
		Sizes:      make([]int, m.K),
		WithinSS:   make([]float64, m.K),
		Distances:  make([][]float64, n),
		Lambda:     lambda,
		Iterations: iter,
	}
	for i := 0; i < n; i++ {
		res.Distances[i] = make([]float64, m.K)
		for k, p := range protos {
			res.Distances[i][k] = Dissimilarity(X.Numeric[i], X.Categorical[i], p, lambda)
		}
		k := assign[i]
		res.Labels[i] = k + 1
		res.Sizes[k]++
		res.WithinSS[k] += res.Distances[i][k]
	}
	for _, w := range res.WithinSS {
		res.TotalWithinSS += w
	}
	return res
}

// updatePrototypes recomputes means and modes. Empty clusters keep their
// previous prototype. Mode ties resolve to the lowest level code.
func updatePrototypes(X *Features, assign []int, protos []Prototype) {
	k := len(protos)
	p, q := len(X.NumericNames), len(X.CategoricalNames)
	if len(X.Numeric) > 0 {
		p = len(X.Numeric[0])
	}
	if len(X.Categorical) > 0 {
		q = len(X.Categorical[0])
	}

	sums := make([][]float64, k)
	counts := make([]int, k)
	freq := make([][][]int, k)
	for c := 0; c < k; c++ {
		sums[c] = make([]float64, p)
		freq[c] = make([][]int, q)
		for j := 0; j < q; j++ {
			freq[c][j] = make([]int, X.Levels[j])
		}
	}
	for i, c := range assign {
		counts[c]++
		for j := 0; j < p; j++ {
			sums[c][j] += X.Numeric[i][j]
		}
		for j := 0; j < q; j++ {
			freq[c][j][X.Categorical[i][j]]++
		}
	}

	for c := 0; c < k; c++ {
		if counts[c] == 0 {
			continue
		}
		for j := 0; j < p; j++ {
			protos[c].Numeric[j] = sums[c][j] / float64(counts[c])
		}
		for j := 0; j < q; j++ {
			mode, best := 0, -1
			for level, cnt := range freq[c][j] {
				if cnt > best {
					mode, best = level, cnt
				}
			}
			protos[c].Categorical[j] = mode
		}
	}
}

// Dissimilarity is the k-prototypes cost of a row against a prototype.
func Dissimilarity(num []float64, cat []int, p Prototype, lambda float64) float64 {
	d := euclidSquared(num, p.Numeric)
	mismatches := 0
	for j, v := range cat {
		if v != p.Categorical[j] {
			mismatches++
		}
	}
	return d + lambda*float64(mismatches)
}

// EstimateLambda balances the two blocks: the mean numeric variance over the
// mean categorical concentration (1 - sum p²). It is 1 when either block is
// absent or degenerate.
func EstimateLambda(X *Features) float64 {
	n := X.Len()
	if n == 0 || len(X.Numeric) == 0 || len(X.Categorical) == 0 ||
		len(X.Numeric[0]) == 0 || len(X.Categorical[0]) == 0 {
		return 1
	}

	p := len(X.Numeric[0])
	col := make([]float64, n)
	numVar := 0.0
	for j := 0; j < p; j++ {
		for i := range col {
			col[i] = X.Numeric[i][j]
		}
		numVar += stats.Variance(col)
	}
	numVar /= float64(p)

	q := len(X.Categorical[0])
	catVar := 0.0
	for j := 0; j < q; j++ {
		counts := make([]int, X.Levels[j])
		for i := 0; i < n; i++ {
			counts[X.Categorical[i][j]]++
		}
		sumSq := 0.0
		for _, c := range counts {
			share := float64(c) / float64(n)
			sumSq += share * share
		}
		catVar += 1 - sumSq
	}
	catVar /= float64(q)

	if numVar == 0 || catVar == 0 {
		return 1
	}
	return numVar / catVar
}
