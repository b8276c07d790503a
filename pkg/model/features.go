package model

import (
	"errors"
	"fmt"
	"math"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
)

var ErrMissingValues = errors.New("feature matrix contains missing values")

// Features is the input of the clustering runner: a numeric block and a
// categorical block sharing the same rows.
type Features struct {
	NumericNames     []string
	CategoricalNames []string
	Numeric          [][]float64 // n x p
	Categorical      [][]int     // n x q, level codes
	Levels           []int       // level count per categorical column
}

// Len returns the number of rows.
func (x *Features) Len() int {
	if len(x.Numeric) > 0 {
		return len(x.Numeric)
	}
	return len(x.Categorical)
}

// FeaturesFromFrame splits a complete frame into the two blocks. Any NaN
// cell fails with ErrMissingValues.
func FeaturesFromFrame(f *data.Frame) (*Features, error) {
	n := f.NRow()
	num, cat := f.NumericColumns(), f.CategoricalColumns()
	x := &Features{
		Numeric:     make([][]float64, n),
		Categorical: make([][]int, n),
		Levels:      make([]int, len(cat)),
	}
	for _, c := range num {
		x.NumericNames = append(x.NumericNames, c.Name)
	}
	for j, c := range cat {
		x.CategoricalNames = append(x.CategoricalNames, c.Name)
		x.Levels[j] = len(c.Levels)
	}
	for i := 0; i < n; i++ {
		x.Numeric[i] = make([]float64, len(num))
		for j, c := range num {
			v := c.Values[i]
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%s row %d: %w", c.Name, i, ErrMissingValues)
			}
			x.Numeric[i][j] = v
		}
		x.Categorical[i] = make([]int, len(cat))
		for j, c := range cat {
			v := c.Values[i]
			if math.IsNaN(v) {
				return nil, fmt.Errorf("%s row %d: %w", c.Name, i, ErrMissingValues)
			}
			x.Categorical[i][j] = int(v)
		}
	}
	return x, nil
}

// Dense returns each row as its numeric block followed by a one-hot
// encoding of every categorical column.
func (x *Features) Dense() [][]float64 {
	width := 0
	if len(x.Numeric) > 0 {
		width = len(x.Numeric[0])
	}
	for _, l := range x.Levels {
		width += l
	}
	out := make([][]float64, x.Len())
	for i := range out {
		row := make([]float64, 0, width)
		if i < len(x.Numeric) {
			row = append(row, x.Numeric[i]...)
		}
		for j, l := range x.Levels {
			hot := make([]float64, l)
			hot[x.Categorical[i][j]] = 1
			row = append(row, hot...)
		}
		out[i] = row
	}
	return out
}
