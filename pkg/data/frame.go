package data

import (
	"errors"
	"fmt"
	"math"
)

// Column names used by FromProperties.
const (
	ColLandUse    = "land_use"
	ColParcelArea = "parcel_area"
	ColBedrooms   = "bedrooms"
	ColWater      = "avg_daily_water_consumption"
)

// Kind tells numeric and categorical columns apart.
type Kind int

const (
	Numeric Kind = iota
	Categorical
)

func (k Kind) String() string {
	if k == Categorical {
		return "categorical"
	}
	return "numeric"
}

// Column is one variable of a Frame. Missing entries are NaN. Categorical
// values are indexes into Levels.
type Column struct {
	Name   string
	Kind   Kind
	Values []float64
	Levels []string
}

// Level returns the level name at row i, or "" when missing.
func (c *Column) Level(i int) string {
	v := c.Values[i]
	if math.IsNaN(v) {
		return ""
	}
	return c.Levels[int(v)]
}

// Observed returns the non-missing values in row order.
func (c *Column) Observed() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Column) clone() *Column {
	cp := &Column{Name: c.Name, Kind: c.Kind}
	cp.Values = append([]float64(nil), c.Values...)
	cp.Levels = append([]string(nil), c.Levels...)
	return cp
}

// Frame is a column-oriented table keyed by record identifier.
type Frame struct {
	IDs     []string
	Columns []*Column
}

var ErrColumnLength = errors.New("column length does not match id count")

// NewFrame validates that every column has one value per id.
func NewFrame(ids []string, cols ...*Column) (*Frame, error) {
	for _, c := range cols {
		if len(c.Values) != len(ids) {
			return nil, fmt.Errorf("%s: %w", c.Name, ErrColumnLength)
		}
	}
	return &Frame{IDs: ids, Columns: cols}, nil
}

func (f *Frame) NRow() int { return len(f.IDs) }

// Col returns the named column or nil.
func (f *Frame) Col(name string) *Column {
	for _, c := range f.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Clone deep-copies the frame.
func (f *Frame) Clone() *Frame {
	out := &Frame{IDs: append([]string(nil), f.IDs...)}
	out.Columns = make([]*Column, len(f.Columns))
	for i, c := range f.Columns {
		out.Columns[i] = c.clone()
	}
	return out
}

// MissingCount returns the number of NaN cells in the named column.
func (f *Frame) MissingCount(name string) int {
	c := f.Col(name)
	if c == nil {
		return 0
	}
	return len(c.Values) - len(c.Observed())
}

// Complete reports whether no cell is missing.
func (f *Frame) Complete() bool {
	for _, c := range f.Columns {
		if f.MissingCount(c.Name) > 0 {
			return false
		}
	}
	return true
}

func (f *Frame) byKind(k Kind) []*Column {
	var out []*Column
	for _, c := range f.Columns {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

func (f *Frame) NumericColumns() []*Column     { return f.byKind(Numeric) }
func (f *Frame) CategoricalColumns() []*Column { return f.byKind(Categorical) }

// Row returns the values of row i across all columns.
func (f *Frame) Row(i int) []float64 {
	row := make([]float64, len(f.Columns))
	for j, c := range f.Columns {
		row[j] = c.Values[i]
	}
	return row
}

// FromProperties lays the records out as a Frame with the four standard
// columns, land use first.
func FromProperties(props []Property) *Frame {
	n := len(props)
	ids := make([]string, n)
	levels := make([]string, len(LandUses))
	for i, l := range LandUses {
		levels[i] = l.String()
	}
	landUse := &Column{Name: ColLandUse, Kind: Categorical, Values: make([]float64, n), Levels: levels}
	area := &Column{Name: ColParcelArea, Kind: Numeric, Values: make([]float64, n)}
	beds := &Column{Name: ColBedrooms, Kind: Numeric, Values: make([]float64, n)}
	water := &Column{Name: ColWater, Kind: Numeric, Values: make([]float64, n)}

	for i, p := range props {
		ids[i] = p.ID
		landUse.Values[i] = orNaN(float64(p.LandUse), p.IsMissing(FieldLandUse))
		area.Values[i] = orNaN(p.ParcelArea, p.IsMissing(FieldParcelArea))
		beds.Values[i] = orNaN(float64(p.Bedrooms), p.IsMissing(FieldBedrooms))
		water.Values[i] = orNaN(p.WaterConsumption, p.IsMissing(FieldWater))
	}
	return &Frame{IDs: ids, Columns: []*Column{landUse, area, beds, water}}
}

// Properties converts a frame built by FromProperties back into records.
// Bedroom counts are rounded to the nearest integer.
func (f *Frame) Properties() ([]Property, error) {
	landUse, area := f.Col(ColLandUse), f.Col(ColParcelArea)
	beds, water := f.Col(ColBedrooms), f.Col(ColWater)
	if landUse == nil || area == nil || beds == nil || water == nil {
		return nil, errors.New("frame is missing a property column")
	}
	out := make([]Property, f.NRow())
	for i, id := range f.IDs {
		p := Property{ID: id}
		if v := landUse.Values[i]; math.IsNaN(v) {
			p.Missing |= FieldLandUse
		} else {
			lu, err := ParseLandUse(landUse.Levels[int(v)])
			if err != nil {
				return nil, err
			}
			p.LandUse = lu
		}
		if v := area.Values[i]; math.IsNaN(v) {
			p.Missing |= FieldParcelArea
		} else {
			p.ParcelArea = v
		}
		if v := beds.Values[i]; math.IsNaN(v) {
			p.Missing |= FieldBedrooms
		} else {
			p.Bedrooms = int(math.Round(v))
		}
		if v := water.Values[i]; math.IsNaN(v) {
			p.Missing |= FieldWater
		} else {
			p.WaterConsumption = v
		}
		out[i] = p
	}
	return out, nil
}

func orNaN(v float64, missing bool) float64 {
	if missing {
		return math.NaN()
	}
	return v
}
