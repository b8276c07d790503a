package dataprep

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
)

var nan = math.NaN()

func tinyFrame(t *testing.T) *data.Frame {
	t.Helper()
	f, err := data.NewFrame(
		[]string{"a", "b", "c", "d", "e", "f"},
		&data.Column{Name: "kind", Kind: data.Categorical, Levels: []string{"x", "y"},
			Values: []float64{0, 0, 0, 1, 1, nan}},
		&data.Column{Name: "size", Kind: data.Numeric,
			Values: []float64{1, 2, 3, 100, 101, 102}},
		&data.Column{Name: "rooms", Kind: data.Numeric,
			Values: []float64{1, nan, 1, 5, 6, 7}},
	)
	require.NoError(t, err)
	return f
}

func TestKNNImputerUsesNearestDonors(t *testing.T) {
	f := tinyFrame(t)
	out, st, err := NewKNNImputer(2).Impute(f)
	require.NoError(t, err)
	assert.True(t, out.Complete())

	// Row b sits next to a and c, both with one room.
	assert.Equal(t, 1.0, out.Col("rooms").Values[1])
	// Row f is closest to d and e, both "y".
	assert.Equal(t, 1.0, out.Col("kind").Values[5])
	assert.Equal(t, map[string]int{"kind": 1, "rooms": 1}, st.Filled)
	assert.Empty(t, st.Fallback)

	// Input untouched.
	assert.True(t, math.IsNaN(f.Col("rooms").Values[1]))
}

func TestKNNImputerMedianOfDonors(t *testing.T) {
	f, err := data.NewFrame(
		[]string{"q", "r1", "r2", "r3", "far"},
		&data.Column{Name: "x", Kind: data.Numeric, Values: []float64{0, 0.1, 0.2, 0.3, 50}},
		&data.Column{Name: "y", Kind: data.Numeric, Values: []float64{nan, 10, 40, 20, 1000}},
	)
	require.NoError(t, err)
	out, _, err := NewKNNImputer(3).Impute(f)
	require.NoError(t, err)
	assert.Equal(t, 20.0, out.Col("y").Values[0])
}

func TestKNNImputerAllMissingColumn(t *testing.T) {
	f, err := data.NewFrame(
		[]string{"a", "b"},
		&data.Column{Name: "x", Kind: data.Numeric, Values: []float64{1, 2}},
		&data.Column{Name: "y", Kind: data.Numeric, Values: []float64{nan, nan}},
	)
	require.NoError(t, err)
	_, _, err = NewKNNImputer(5).Impute(f)
	assert.ErrorIs(t, err, ErrAllMissing)
}

func TestKNNImputerFallbackWithoutSharedVariables(t *testing.T) {
	f, err := data.NewFrame(
		[]string{"a", "b", "c"},
		&data.Column{Name: "x", Kind: data.Numeric, Values: []float64{1, nan, 3}},
		&data.Column{Name: "y", Kind: data.Numeric, Values: []float64{nan, 4, nan}},
	)
	require.NoError(t, err)
	out, st, err := NewKNNImputer(5).Impute(f)
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Col("x").Values[1])
	assert.Equal(t, []float64{4, 4, 4}, out.Col("y").Values)
	assert.Equal(t, 1, st.Fallback["x"])
	assert.Equal(t, 2, st.Fallback["y"])
}

func TestKNNImputerFallbackUsesColumnMode(t *testing.T) {
	f, err := data.NewFrame(
		[]string{"a", "b", "c", "d"},
		&data.Column{Name: "kind", Kind: data.Categorical, Levels: []string{"x", "y"},
			Values: []float64{0, nan, 1, 1}},
		&data.Column{Name: "size", Kind: data.Numeric, Values: []float64{nan, 5, nan, nan}},
	)
	require.NoError(t, err)

	out, st, err := NewKNNImputer(3).Impute(f)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1, 1, 1}, out.Col("kind").Values)
	assert.Equal(t, []float64{5, 5, 5, 5}, out.Col("size").Values)
	assert.Equal(t, map[string]int{"kind": 1, "size": 3}, st.Fallback)
	assert.Equal(t, st.Fallback, st.Filled)

	// The fallback works on a copy.
	assert.True(t, math.IsNaN(f.Col("kind").Values[1]))
	assert.Equal(t, 3, f.MissingCount("size"))
}

func TestKNNImputerOnGeneratedData(t *testing.T) {
	props, err := data.Generate(rand.New(rand.NewSource(123)), 1000, data.DefaultGeneratorParams())
	require.NoError(t, err)
	missing := data.InjectMissing(rand.New(rand.NewSource(123)), data.FromProperties(props), 0.2)

	out, st, err := NewKNNImputer(5).Impute(missing)
	require.NoError(t, err)
	for _, c := range out.Columns {
		assert.Equal(t, 0, out.MissingCount(c.Name), c.Name)
		assert.Equal(t, 200, st.Filled[c.Name], c.Name)
	}
	// Medians of five integer counts stay integral.
	for _, v := range out.Col(data.ColBedrooms).Values {
		assert.Equal(t, math.Round(v), v)
	}
	// Imputed values stay inside the observed range.
	for _, name := range []string{data.ColParcelArea, data.ColWater} {
		orig := missing.Col(name).Observed()
		lo, hi := orig[0], orig[0]
		for _, v := range orig {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
		for _, v := range out.Col(name).Values {
			assert.True(t, v >= lo && v <= hi, "%s value %v outside [%v,%v]", name, v, lo, hi)
		}
	}
}

func TestSimpleImputers(t *testing.T) {
	num := &data.Column{Name: "n", Kind: data.Numeric, Values: []float64{1, nan, 9, 4}}
	require.NoError(t, ImputeMedian(num))
	assert.Equal(t, []float64{1, 4, 9, 4}, num.Values)

	cat := &data.Column{Name: "c", Kind: data.Categorical, Levels: []string{"a", "b", "c"},
		Values: []float64{2, 1, nan, 1, 2}}
	require.NoError(t, ImputeMode(cat))
	assert.Equal(t, 1.0, cat.Values[2])

	empty := &data.Column{Name: "e", Kind: data.Numeric, Values: []float64{nan}}
	assert.ErrorIs(t, ImputeMedian(empty), ErrAllMissing)
	assert.ErrorIs(t, ImputeMode(empty), ErrAllMissing)
}
