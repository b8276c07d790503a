package dataprep

import (
	"errors"
	"fmt"
	"math"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/stats"
)

var ErrAllMissing = errors.New("column has no observed values")

// ---------- Simple Imputation Methods ----------

// ImputeMedian replaces missing values of a numeric column with its median.
func ImputeMedian(col *data.Column) error {
	obs := col.Observed()
	if len(obs) == 0 {
		return fmt.Errorf("%s: %w", col.Name, ErrAllMissing)
	}
	median := stats.Median(obs)
	for i, v := range col.Values {
		if math.IsNaN(v) {
			col.Values[i] = median
		}
	}
	return nil
}

// ImputeMode replaces missing values of a categorical column with its most
// frequent level.
func ImputeMode(col *data.Column) error {
	obs := col.Observed()
	if len(obs) == 0 {
		return fmt.Errorf("%s: %w", col.Name, ErrAllMissing)
	}
	mode := modeOf(obs, len(col.Levels))
	for i, v := range col.Values {
		if math.IsNaN(v) {
			col.Values[i] = mode
		}
	}
	return nil
}

// modeOf returns the most frequent level code; ties go to the lowest code.
func modeOf(codes []float64, levels int) float64 {
	counts := make([]int, levels)
	for _, v := range codes {
		counts[int(v)]++
	}
	mode, best := 0, -1
	for level, c := range counts {
		if c > best {
			mode, best = level, c
		}
	}
	return float64(mode)
}

// ---------- Nearest-Neighbour Imputation ----------

// KNNImputer fills each missing cell from the K nearest rows that observe
// that column. Rows are compared with the Gower distance over every column,
// skipping variables missing in either row. Numeric cells take the donors'
// median, categorical cells their most frequent level.
type KNNImputer struct {
	K int
}

func NewKNNImputer(k int) *KNNImputer { return &KNNImputer{K: k} }

// ImputeStats counts filled cells per column. Fallback counts cells that had
// no comparable donor and took the column median or mode instead.
type ImputeStats struct {
	Filled   map[string]int
	Fallback map[string]int
}

// Impute returns a complete copy of f. Distances are always computed on the
// original values, never on cells filled earlier in the same call.
func (m *KNNImputer) Impute(f *data.Frame) (*data.Frame, *ImputeStats, error) {
	if m.K < 1 {
		return nil, nil, errors.New("imputer needs at least one neighbour")
	}
	for _, c := range f.Columns {
		if len(c.Observed()) == 0 {
			return nil, nil, fmt.Errorf("%s: %w", c.Name, ErrAllMissing)
		}
	}

	// Numeric columns are compared on the [0, 1] scale, so an absolute
	// difference is already divided by the column range.
	scaled := make([][]float64, len(f.Columns))
	for j, c := range f.Columns {
		if c.Kind == data.Numeric {
			scaled[j] = stats.Normalize(c.Values)
		} else {
			scaled[j] = c.Values
		}
	}
	knn := model.NewKNN(m.K, func(a, b int) float64 { return gower(f, scaled, a, b) })

	out := f.Clone()
	st := &ImputeStats{Filled: map[string]int{}, Fallback: map[string]int{}}
	for j, c := range f.Columns {
		var donors []int
		for i, v := range c.Values {
			if !math.IsNaN(v) {
				donors = append(donors, i)
			}
		}

		var simple *data.Column
		for i, v := range c.Values {
			if !math.IsNaN(v) {
				continue
			}
			nbrs := knn.Nearest(i, donors)
			if len(nbrs) == 0 {
				if simple == nil {
					var err error
					if simple, err = simpleImpute(c); err != nil {
						return nil, nil, err
					}
				}
				out.Columns[j].Values[i] = simple.Values[i]
				st.Fallback[c.Name]++
				st.Filled[c.Name]++
				continue
			}
			vals := make([]float64, len(nbrs))
			for k, d := range nbrs {
				vals[k] = c.Values[d]
			}
			if c.Kind == data.Categorical {
				out.Columns[j].Values[i] = modeOf(vals, len(c.Levels))
			} else {
				out.Columns[j].Values[i] = stats.Median(vals)
			}
			st.Filled[c.Name]++
		}
	}
	return out, st, nil
}

// simpleImpute returns a copy of c completed with ImputeMode or ImputeMedian.
// It backs cells that have no comparable donor.
func simpleImpute(c *data.Column) (*data.Column, error) {
	cp := &data.Column{
		Name:   c.Name,
		Kind:   c.Kind,
		Values: append([]float64(nil), c.Values...),
		Levels: c.Levels,
	}
	if c.Kind == data.Categorical {
		return cp, ImputeMode(cp)
	}
	return cp, ImputeMedian(cp)
}

// gower averages per-variable dissimilarities over the variables observed in
// both rows. It is NaN when no variable is shared.
func gower(f *data.Frame, scaled [][]float64, a, b int) float64 {
	sum, n := 0.0, 0
	for j, c := range f.Columns {
		x, y := scaled[j][a], scaled[j][b]
		if math.IsNaN(x) || math.IsNaN(y) {
			continue
		}
		n++
		if c.Kind == data.Categorical {
			if x != y {
				sum++
			}
			continue
		}
		sum += math.Abs(x - y)
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
