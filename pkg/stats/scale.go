package stats

import (
	"errors"
	"math"
)

// MinMaxScaler maps every column of a matrix to [0, 1] using the column's own
// observed minimum and maximum. NaN cells are ignored when fitting and pass
// through untouched.
type MinMaxScaler struct {
	Min []float64
	Max []float64
	fit bool
}

func NewMinMaxScaler() *MinMaxScaler { return &MinMaxScaler{} }

var ErrNotFitted = errors.New("scaler has not been fitted")

// Fit records per-column min and max.
func (s *MinMaxScaler) Fit(X [][]float64) error {
	if len(X) == 0 {
		return errors.New("input data cannot be empty")
	}
	cols := len(X[0])
	s.Min = make([]float64, cols)
	s.Max = make([]float64, cols)
	col := make([]float64, len(X))
	for j := range cols {
		for i := range X {
			col[i] = X[i][j]
		}
		s.Min[j], s.Max[j] = MinMax(col)
	}
	s.fit = true
	return nil
}

// Transform scales X with the fitted bounds.
func (s *MinMaxScaler) Transform(X [][]float64) ([][]float64, error) {
	if !s.fit {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = scale(v, s.Min[j], s.Max[j])
		}
	}
	return out, nil
}

// InverseTransform maps scaled values back to the original units.
func (s *MinMaxScaler) InverseTransform(X [][]float64) ([][]float64, error) {
	if !s.fit {
		return nil, ErrNotFitted
	}
	out := make([][]float64, len(X))
	for i, row := range X {
		out[i] = make([]float64, len(row))
		for j, v := range row {
			out[i][j] = unscale(v, s.Min[j], s.Max[j])
		}
	}
	return out, nil
}

func (s *MinMaxScaler) FitTransform(X [][]float64) ([][]float64, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// Normalize rescales x to [0, 1] by its own min and max. A constant vector
// maps to zeros.
func Normalize(x []float64) []float64 {
	min, max := MinMax(x)
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = scale(v, min, max)
	}
	return out
}

// Denormalize is the inverse of Normalize: every scaled value is mapped back
// with the min and max of original. Values outside [0, 1] extrapolate.
func Denormalize(scaled, original []float64) []float64 {
	min, max := MinMax(original)
	out := make([]float64, len(scaled))
	for i, v := range scaled {
		out[i] = unscale(v, min, max)
	}
	return out
}

func scale(v, min, max float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if max == min {
		return 0
	}
	return (v - min) / (max - min)
}

func unscale(v, min, max float64) float64 {
	return v*(max-min) + min
}
