package report

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
)

// PlotElbow draws total within-cluster cost against k.
func PlotElbow(points []model.ElbowPoint, path string) error {
	if len(points) == 0 {
		return errors.New("no elbow points to plot")
	}
	p := plot.New()
	p.Title.Text = "Elbow Method"
	p.X.Label.Text = "Number of clusters k"
	p.Y.Label.Text = "Total within-cluster cost"

	pts := make(plotter.XYs, len(points))
	for i, e := range points {
		pts[i].X = float64(e.K)
		pts[i].Y = e.TotalWithinSS
	}
	line, scatter, err := plotter.NewLinePoints(pts)
	if err != nil {
		return err
	}
	line.LineStyle.Width = vg.Points(2)
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	p.Add(line, scatter, plotter.NewGrid())

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save elbow plot: %w", err)
	}
	return nil
}

// PlotClusters scatters parcel area against water consumption, one colour
// per cluster. Rows missing either value are skipped.
func PlotClusters(f *data.Frame, labels []int, path string) error {
	xc, yc := f.Col(data.ColParcelArea), f.Col(data.ColWater)
	if xc == nil || yc == nil {
		return errors.New("frame lacks parcel area or water columns")
	}
	if len(labels) != f.NRow() {
		return fmt.Errorf("%w: %d labels, %d rows", ErrShapeMismatch, len(labels), f.NRow())
	}

	k := 0
	for _, l := range labels {
		k = max(k, l)
	}

	p := plot.New()
	p.Title.Text = "Clusters: parcel area vs water consumption"
	p.X.Label.Text = "Parcel area (log scale)"
	p.Y.Label.Text = "Avg daily water consumption"
	p.X.Scale = plot.LogScale{}
	p.X.Tick.Marker = plot.LogTicks{Prec: -1}

	for c := 1; c <= k; c++ {
		pts := make(plotter.XYs, 0)
		for i, l := range labels {
			x, y := xc.Values[i], yc.Values[i]
			if l != c || math.IsNaN(x) || math.IsNaN(y) || x <= 0 {
				continue
			}
			pts = append(pts, plotter.XY{X: x, Y: y})
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.Color = plotutil.Color(c - 1)
		s.GlyphStyle.Shape = plotutil.Shape(c - 1)
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(ClusterLabel(c), s)
	}

	if err := p.Save(7*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save cluster plot: %w", err)
	}
	return nil
}

// PlotProjection scatters rows projected onto two principal components, one
// colour per cluster.
func PlotProjection(proj [][]float64, labels []int, explained []float64, path string) error {
	if len(labels) != len(proj) {
		return fmt.Errorf("%w: %d labels, %d rows", ErrShapeMismatch, len(labels), len(proj))
	}
	if len(proj) == 0 || len(proj[0]) < 2 {
		return errors.New("projection needs two components")
	}

	p := plot.New()
	p.Title.Text = "Cluster plot"
	p.X.Label.Text = axisLabel(1, explained)
	p.Y.Label.Text = axisLabel(2, explained)

	k := 0
	for _, l := range labels {
		k = max(k, l)
	}
	for c := 1; c <= k; c++ {
		pts := make(plotter.XYs, 0)
		for i, l := range labels {
			if l == c {
				pts = append(pts, plotter.XY{X: proj[i][0], Y: proj[i][1]})
			}
		}
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return err
		}
		s.Color = plotutil.Color(c - 1)
		s.GlyphStyle.Shape = plotutil.Shape(c - 1)
		s.GlyphStyle.Radius = vg.Points(2)
		p.Add(s)
		p.Legend.Add(ClusterLabel(c), s)
	}

	if err := p.Save(7*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("save projection plot: %w", err)
	}
	return nil
}

func axisLabel(dim int, explained []float64) string {
	if dim <= len(explained) {
		return fmt.Sprintf("Dim%d (%.1f%%)", dim, 100*explained[dim-1])
	}
	return fmt.Sprintf("Dim%d", dim)
}
