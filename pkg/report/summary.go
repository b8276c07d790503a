package report

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/stats"
)

// Table is one per-variable summary: a row per cluster, a column per
// statistic (numeric variables) or per level (categorical variables).
type Table struct {
	Name    string
	Kind    data.Kind
	Columns []string
	Labels  []string // "Cluster 1".."Cluster k"
	Cells   [][]float64
}

// RowSum adds up row i. For categorical tables it equals the cluster size.
func (t *Table) RowSum(i int) float64 {
	s := 0.0
	for _, v := range t.Cells[i] {
		s += v
	}
	return s
}

// Summary collects the tables of every variable. Order keeps the frame's
// column order for printing and export.
type Summary struct {
	Tables map[string]*Table
	Order  []string
}

var ErrShapeMismatch = errors.New("labels do not match frame rows")

// ClusterLabel formats a 1-based cluster number.
func ClusterLabel(k int) string { return "Cluster " + strconv.Itoa(k) }

// Summarize builds the per-cluster tables. Numeric statistics are computed
// on the normalized frame, then mapped back to the original scale with the
// min and max of the same column in original.
func Summarize(c *model.Clustering, normalized, original *data.Frame) (*Summary, error) {
	if len(c.Labels) != normalized.NRow() {
		return nil, fmt.Errorf("%w: %d labels, %d rows", ErrShapeMismatch, len(c.Labels), normalized.NRow())
	}

	labels := make([]string, c.K)
	for k := range labels {
		labels[k] = ClusterLabel(k + 1)
	}

	s := &Summary{Tables: make(map[string]*Table, len(normalized.Columns))}
	for _, col := range normalized.Columns {
		var (
			t   *Table
			err error
		)
		switch col.Kind {
		case data.Numeric:
			orig := original.Col(col.Name)
			if orig == nil {
				return nil, fmt.Errorf("column %s missing from original frame", col.Name)
			}
			t, err = numericTable(col, orig, c)
		case data.Categorical:
			t, err = categoricalTable(col, c)
		}
		if err != nil {
			return nil, err
		}
		t.Labels = labels
		s.Tables[col.Name] = t
		s.Order = append(s.Order, col.Name)
	}
	return s, nil
}

func groupByCluster(col *data.Column, c *model.Clustering) [][]float64 {
	groups := make([][]float64, c.K)
	for i, l := range c.Labels {
		if v := col.Values[i]; !math.IsNaN(v) {
			groups[l-1] = append(groups[l-1], v)
		}
	}
	return groups
}

func numericTable(col, orig *data.Column, c *model.Clustering) (*Table, error) {
	if lo, _ := stats.MinMax(orig.Values); math.IsNaN(lo) {
		return nil, fmt.Errorf("column %s has no observed values", col.Name)
	}
	t := &Table{
		Name:    col.Name,
		Kind:    data.Numeric,
		Columns: append([]string(nil), stats.SummaryLabels...),
		Cells:   make([][]float64, c.K),
	}
	for k, g := range groupByCluster(col, c) {
		t.Cells[k] = stats.Denormalize(stats.Summary(g).Values(), orig.Values)
	}
	return t, nil
}

func categoricalTable(col *data.Column, c *model.Clustering) (*Table, error) {
	t := &Table{
		Name:    col.Name,
		Kind:    data.Categorical,
		Columns: append([]string(nil), col.Levels...),
		Cells:   make([][]float64, c.K),
	}
	for k := range t.Cells {
		t.Cells[k] = make([]float64, len(col.Levels))
	}
	for i, l := range c.Labels {
		v := col.Values[i]
		if math.IsNaN(v) {
			continue
		}
		code := int(v)
		if code < 0 || code >= len(col.Levels) {
			return nil, fmt.Errorf("column %s: level code %d out of range", col.Name, code)
		}
		t.Cells[l-1][code]++
	}
	return t, nil
}

// Print writes every table in full, one block per variable.
func (s *Summary) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, name := range s.Order {
		t := s.Tables[name]
		fmt.Fprintf(tw, "$%s\n", name)
		fmt.Fprint(tw, "cluster\t")
		for _, c := range t.Columns {
			fmt.Fprintf(tw, "%s\t", c)
		}
		fmt.Fprintln(tw)
		for i, row := range t.Cells {
			fmt.Fprintf(tw, "%s\t", t.Labels[i])
			for _, v := range row {
				fmt.Fprintf(tw, "%s\t", t.format(v))
			}
			fmt.Fprintln(tw)
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func (t *Table) format(v float64) string {
	if t.Kind == data.Categorical {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', 3, 64)
}
