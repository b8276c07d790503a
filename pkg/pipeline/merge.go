package pipeline

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
)

// Column names added in front of the feature columns.
const (
	ColID      = "id"
	ColCluster = "cluster"
)

// na is how gota spells a missing element when built from strings.
const na = "NaN"

// MergeAssignments joins the cluster labels onto the frame the model was fit
// on: id, cluster, then every feature column. Missing cells stay NA.
func MergeAssignments(f *data.Frame, labels []int) (dataframe.DataFrame, error) {
	if len(labels) != f.NRow() {
		return dataframe.DataFrame{}, fmt.Errorf("merge: %d labels for %d rows", len(labels), f.NRow())
	}

	cols := make([]series.Series, 0, len(f.Columns)+2)
	cols = append(cols,
		series.New(f.IDs, series.String, ColID),
		series.New(labels, series.Int, ColCluster),
	)
	for _, c := range f.Columns {
		cells := make([]string, len(c.Values))
		for i, v := range c.Values {
			switch {
			case math.IsNaN(v):
				cells[i] = na
			case c.Kind == data.Categorical:
				cells[i] = c.Level(i)
			default:
				cells[i] = strconv.FormatFloat(v, 'g', -1, 64)
			}
		}
		typ := series.Float
		if c.Kind == data.Categorical {
			typ = series.String
		}
		cols = append(cols, series.New(cells, typ, c.Name))
	}

	df := dataframe.New(cols...)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("merge: %w", df.Err)
	}
	return df, nil
}

// Assignments maps each record id to its cluster label.
func Assignments(df dataframe.DataFrame) (map[string]int, error) {
	ids := df.Col(ColID).Records()
	labels, err := df.Col(ColCluster).Int()
	if err != nil {
		return nil, fmt.Errorf("read cluster column: %w", err)
	}
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = labels[i]
	}
	return out, nil
}

// WriteLabeledCSV saves the labeled dataset with a header row.
func WriteLabeledCSV(df dataframe.DataFrame, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := df.WriteCSV(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
