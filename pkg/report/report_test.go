package report

import (
	"bytes"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
)

func fixture(t *testing.T) (*model.Clustering, *data.Frame, *data.Frame) {
	t.Helper()
	ids := []string{"a", "b", "c", "d"}
	cat := &data.Column{Name: "kind", Kind: data.Categorical, Values: []float64{0, 1, 0, 0}, Levels: []string{"A", "B", "C"}}

	orig, err := data.NewFrame(ids, cat,
		&data.Column{Name: "size", Kind: data.Numeric, Values: []float64{10, 20, math.NaN(), 30}})
	require.NoError(t, err)
	norm, err := data.NewFrame(ids, cat,
		&data.Column{Name: "size", Kind: data.Numeric, Values: []float64{0, 0.5, 0.75, 1}})
	require.NoError(t, err)

	c := &model.Clustering{K: 2, Labels: []int{1, 1, 2, 2}, Sizes: []int{2, 2}}
	return c, norm, orig
}

func TestSummarizeNumericIsDenormalized(t *testing.T) {
	s, err := Summarize(fixture(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"kind", "size"}, s.Order)

	size := s.Tables["size"]
	assert.Equal(t, []string{"Cluster 1", "Cluster 2"}, size.Labels)
	assert.Equal(t, []string{"Min.", "1st Qu.", "Median", "Mean", "3rd Qu.", "Max."}, size.Columns)
	assert.InDeltaSlice(t, []float64{10, 12.5, 15, 15, 17.5, 20}, size.Cells[0], 1e-9)
	assert.InDelta(t, 25, size.Cells[1][0], 1e-9)
	assert.InDelta(t, 30, size.Cells[1][5], 1e-9)
}

func TestSummarizeCategoricalIsWideAndZeroFilled(t *testing.T) {
	c, norm, orig := fixture(t)
	s, err := Summarize(c, norm, orig)
	require.NoError(t, err)

	kind := s.Tables["kind"]
	assert.Equal(t, []string{"A", "B", "C"}, kind.Columns)
	assert.Equal(t, []float64{1, 1, 0}, kind.Cells[0])
	assert.Equal(t, []float64{2, 0, 0}, kind.Cells[1])
	for k, size := range c.Sizes {
		assert.Equal(t, float64(size), kind.RowSum(k))
	}
}

func TestSummarizeShapeMismatch(t *testing.T) {
	c, norm, orig := fixture(t)
	c.Labels = c.Labels[:3]
	_, err := Summarize(c, norm, orig)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestSummarizeEmptyClusterPrintsNA(t *testing.T) {
	c, norm, orig := fixture(t)
	c.K = 3
	c.Sizes = append(c.Sizes, 0)
	s, err := Summarize(c, norm, orig)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(s.Tables["size"].Cells[2][0]))

	var buf bytes.Buffer
	require.NoError(t, s.Print(&buf))
	assert.Contains(t, buf.String(), "NA")
}

func TestPrint(t *testing.T) {
	s, err := Summarize(fixture(t))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.Print(&buf))
	out := buf.String()
	assert.Contains(t, out, "$kind")
	assert.Contains(t, out, "$size")
	assert.Contains(t, out, "Cluster 2")
	assert.Contains(t, out, "17.500")
}

func TestWriteExcel(t *testing.T) {
	s, err := Summarize(fixture(t))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "summary.xlsx")
	points := []model.ElbowPoint{{K: 1, TotalWithinSS: 9}, {K: 2, TotalWithinSS: 4}}

	require.NoError(t, WriteExcel(path, s, points))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"kind", "size", ElbowSheet}, f.GetSheetList())
	assert.Equal(t, "kind", f.GetSheetName(f.GetActiveSheetIndex()))

	rows, err := f.GetRows("kind")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"cluster", "A", "B", "C"}, rows[0])
	assert.Equal(t, "Cluster 2", rows[2][0])

	rows, err = f.GetRows(ElbowSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPlots(t *testing.T) {
	dir := t.TempDir()
	points := []model.ElbowPoint{{K: 1, TotalWithinSS: 9}, {K: 2, TotalWithinSS: 4}, {K: 3, TotalWithinSS: 3}}
	elbow := filepath.Join(dir, "elbow.png")
	require.NoError(t, PlotElbow(points, elbow))
	assertNonEmpty(t, elbow)

	rng := newRand()
	props, err := data.Generate(rng, 200, data.DefaultGeneratorParams())
	require.NoError(t, err)
	f := data.FromProperties(props)
	labels := make([]int, f.NRow())
	for i := range labels {
		labels[i] = i%3 + 1
	}
	clusters := filepath.Join(dir, "clusters.png")
	require.NoError(t, PlotClusters(f, labels, clusters))
	assertNonEmpty(t, clusters)

	proj := make([][]float64, len(labels))
	for i := range proj {
		proj[i] = []float64{float64(i % 7), float64(labels[i])}
	}
	pca := filepath.Join(dir, "pca.png")
	require.NoError(t, PlotProjection(proj, labels, []float64{0.8, 0.2}, pca))
	assertNonEmpty(t, pca)
	assert.Equal(t, "Dim1 (80.0%)", axisLabel(1, []float64{0.8, 0.2}))
	assert.Equal(t, "Dim3", axisLabel(3, []float64{0.8, 0.2}))

	assert.Error(t, PlotElbow(nil, elbow))
	assert.ErrorIs(t, PlotClusters(f, labels[:10], clusters), ErrShapeMismatch)
}

func assertNonEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func newRand() *rand.Rand { return rand.New(rand.NewSource(7)) }
