package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/go-gota/gota/dataframe"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/config"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/data"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/dataprep"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/model"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/report"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/stats"
)

// Output file names written under config.OutputConfig.Dir.
const (
	LabeledCSVFile = "labeled_properties.csv"
	SummaryXLSX    = "cluster_summary.xlsx"
	ElbowPNG       = "elbow.png"
	ClustersPNG    = "clusters.png"
	ProjectionPNG  = "clusters_pca.png"
)

// Result carries every intermediate of a run.
type Result struct {
	Raw        *data.Frame // generated or loaded, before injection
	Missing    *data.Frame // the dataset handed to the imputer
	Imputed    *data.Frame
	Normalized *data.Frame
	Imputation *dataprep.ImputeStats

	Scaler       *stats.MinMaxScaler // fitted on the imputed numeric columns
	Features     *model.Features
	Clustering   *model.Clustering
	Centres      [][]float64 // numeric prototype per cluster, original units
	Elbow        []model.ElbowPoint
	Silhouette   float64
	BetweenShare float64 // 1 - WCSS(k) / WCSS(1)

	Summary     *report.Summary
	Labeled     dataframe.DataFrame
	Assignments map[string]int
	Files       []string
}

// Pipeline runs the stages in order: load or generate, inject missing
// values, impute, normalize, cluster, summarize, merge and export.
type Pipeline struct {
	cfg    *config.Config
	logger *slog.Logger
	rng    *rand.Rand
}

func NewPipeline(cfg *config.Config, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(cfg.Pipeline.Seed)),
	}
}

// Run is a shorthand for NewPipeline(cfg, logger).Run(ctx).
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	return NewPipeline(cfg, logger).Run(ctx)
}

// Run executes every stage. All randomness comes from one generator seeded
// with cfg.Pipeline.Seed, so equal configs give equal results.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	pc := p.cfg.Pipeline
	res := &Result{}

	steps := []struct {
		name string
		fn   func(context.Context, *Result) error
	}{
		{"load", p.load},
		{"impute", p.impute},
		{"normalize", p.normalize},
		{"elbow", p.elbow},
		{"cluster", p.cluster},
		{"summarize", p.summarize},
		{"merge", p.merge},
		{"export", p.export},
	}

	p.logger.Info("pipeline started",
		slog.Int64("seed", pc.Seed),
		slog.Int("clusters", pc.Clusters),
		slog.Int("restarts", pc.Restarts))
	start := time.Now()
	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("before %s: %w", s.name, err)
		}
		t := time.Now()
		if err := s.fn(ctx, res); err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		p.logger.Debug("step done",
			slog.String("step", s.name),
			slog.Int("rows", rows(res)),
			slog.Duration("duration", time.Since(t)))
	}
	p.logger.Info("pipeline finished",
		slog.Int("rows", rows(res)),
		slog.Float64("tot_withinss", res.Clustering.TotalWithinSS),
		slog.Duration("duration", time.Since(start)))
	return res, nil
}

func rows(res *Result) int {
	if res.Raw == nil {
		return 0
	}
	return res.Raw.NRow()
}

func (p *Pipeline) load(_ context.Context, res *Result) error {
	pc := p.cfg.Pipeline
	if pc.InputPath != "" {
		f, err := os.Open(pc.InputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		props, err := data.ReadProperties(f)
		if err != nil {
			return fmt.Errorf("%s: %w", pc.InputPath, err)
		}
		res.Raw = data.FromProperties(props)
		res.Missing = res.Raw
		p.logger.Info("dataset loaded", slog.String("path", pc.InputPath), slog.Int("rows", res.Raw.NRow()))
		return nil
	}

	props, err := data.Generate(p.rng, pc.Rows, data.DefaultGeneratorParams())
	if err != nil {
		return err
	}
	res.Raw = data.FromProperties(props)
	res.Missing = data.InjectMissing(p.rng, res.Raw, pc.MissingFraction)
	p.logger.Info("dataset generated",
		slog.Int("rows", res.Raw.NRow()),
		slog.Float64("missing_fraction", pc.MissingFraction))
	return nil
}

func (p *Pipeline) impute(_ context.Context, res *Result) error {
	imputed, st, err := dataprep.NewKNNImputer(p.cfg.Pipeline.Neighbours).Impute(res.Missing)
	if err != nil {
		return err
	}
	res.Imputed, res.Imputation = imputed, st
	for _, c := range imputed.Columns {
		if fb := st.Fallback[c.Name]; fb > 0 {
			p.logger.Warn("imputed without neighbours",
				slog.String("column", c.Name),
				slog.Int("cells", fb))
		}
	}
	return nil
}

// normalize rescales every numeric column of the imputed frame to [0, 1].
// Categorical codes are left alone.
func (p *Pipeline) normalize(_ context.Context, res *Result) error {
	norm := res.Imputed.Clone()
	cols := norm.NumericColumns()
	block := make([][]float64, norm.NRow())
	for i := range block {
		block[i] = make([]float64, len(cols))
		for j, c := range cols {
			block[i][j] = c.Values[i]
		}
	}
	scaler := stats.NewMinMaxScaler()
	scaled, err := scaler.FitTransform(block)
	if err != nil {
		return err
	}
	for i, row := range scaled {
		for j, c := range cols {
			c.Values[i] = row[j]
		}
	}

	x, err := model.FeaturesFromFrame(norm)
	if err != nil {
		return err
	}
	res.Normalized, res.Features, res.Scaler = norm, x, scaler
	return nil
}

func (p *Pipeline) newModel(k int) *model.KPrototypes {
	pc := p.cfg.Pipeline
	return model.NewKPrototypes(k,
		model.WithRestarts(pc.Restarts),
		model.WithMaxIter(pc.MaxIter),
		model.WithLambda(pc.Lambda))
}

func (p *Pipeline) elbow(ctx context.Context, res *Result) error {
	pc := p.cfg.Pipeline
	if !pc.Elbow {
		return nil
	}
	points, err := model.Elbow(ctx, p.rng, res.Features, *p.newModel(1), pc.ElbowMaxK)
	if err != nil {
		return err
	}
	res.Elbow = points
	for _, pt := range points {
		p.logger.Debug("elbow", slog.Int("k", pt.K), slog.Float64("tot_withinss", pt.TotalWithinSS))
	}
	return nil
}

func (p *Pipeline) cluster(_ context.Context, res *Result) error {
	var m model.Clusterer = p.newModel(p.cfg.Pipeline.Clusters)
	c, err := m.Fit(p.rng, res.Features)
	if err != nil {
		return err
	}
	res.Clustering = c
	res.Silhouette = model.Silhouette(res.Features, c)

	total, err := oneClusterCost(res.Features, c.Lambda)
	if err != nil {
		return err
	}
	res.BetweenShare = model.BetweenShare(total, c)

	centres, err := numericCentres(res.Scaler, c)
	if err != nil {
		return err
	}
	res.Centres = centres

	p.logger.Info("clustering fitted",
		slog.Int("k", c.K),
		slog.Float64("lambda", c.Lambda),
		slog.Int("iterations", c.Iterations),
		slog.Float64("tot_withinss", c.TotalWithinSS),
		slog.Float64("between_share", res.BetweenShare),
		slog.Float64("silhouette", res.Silhouette))
	for k, share := range model.SizeShares(c) {
		p.logger.Debug("cluster size",
			slog.String("cluster", report.ClusterLabel(k+1)),
			slog.Int("size", c.Sizes[k]),
			slog.Float64("share", share),
			slog.Any("centre", centres[k]))
	}
	return nil
}

// oneClusterCost is the total cost of putting every row in one cluster:
// the dissimilarity to the column means and modes. A single Lloyd start
// from any row reaches that prototype.
func oneClusterCost(x *model.Features, lambda float64) (float64, error) {
	start := model.Prototype{Numeric: x.Numeric[0], Categorical: x.Categorical[0]}
	one, err := model.NewKPrototypes(1).FitFrom(x, []model.Prototype{start}, lambda)
	if err != nil {
		return 0, err
	}
	return one.TotalWithinSS, nil
}

// numericCentres maps the numeric part of every prototype back to the
// original units.
func numericCentres(scaler *stats.MinMaxScaler, c *model.Clustering) ([][]float64, error) {
	protos := make([][]float64, len(c.Prototypes))
	for k, pr := range c.Prototypes {
		protos[k] = pr.Numeric
	}
	return scaler.InverseTransform(protos)
}

func (p *Pipeline) summarize(_ context.Context, res *Result) error {
	s, err := report.Summarize(res.Clustering, res.Normalized, res.Missing)
	if err != nil {
		return err
	}
	res.Summary = s
	return nil
}

func (p *Pipeline) merge(_ context.Context, res *Result) error {
	df, err := MergeAssignments(res.Missing, res.Clustering.Labels)
	if err != nil {
		return err
	}
	a, err := Assignments(df)
	if err != nil {
		return err
	}
	res.Labeled, res.Assignments = df, a
	return nil
}

func (p *Pipeline) export(_ context.Context, res *Result) error {
	oc := p.cfg.Output
	if !oc.CSV && !oc.Excel && !oc.Plots {
		return nil
	}
	if err := os.MkdirAll(oc.Dir, 0o755); err != nil {
		return err
	}

	write := func(name string, fn func(path string) error) error {
		path := filepath.Join(oc.Dir, name)
		if err := fn(path); err != nil {
			return err
		}
		res.Files = append(res.Files, path)
		p.logger.Info("wrote file", slog.String("path", path))
		return nil
	}

	if oc.CSV {
		if err := write(LabeledCSVFile, func(path string) error {
			return WriteLabeledCSV(res.Labeled, path)
		}); err != nil {
			return err
		}
	}
	if oc.Excel {
		if err := write(SummaryXLSX, func(path string) error {
			return report.WriteExcel(path, res.Summary, res.Elbow)
		}); err != nil {
			return err
		}
	}
	if oc.Plots {
		if len(res.Elbow) > 0 {
			if err := write(ElbowPNG, func(path string) error {
				return report.PlotElbow(res.Elbow, path)
			}); err != nil {
				return err
			}
		}
		if err := write(ClustersPNG, func(path string) error {
			return report.PlotClusters(res.Imputed, res.Clustering.Labels, path)
		}); err != nil {
			return err
		}
		if err := write(ProjectionPNG, func(path string) error {
			return p.plotProjection(res, path)
		}); err != nil {
			return err
		}
	}
	return nil
}

// plotProjection draws the clusters on the first two principal components
// of the one-hot feature matrix. It seeds its own generator so that
// enabling plots never changes the clustering.
func (p *Pipeline) plotProjection(res *Result, path string) error {
	dense := res.Features.Dense()
	pca := model.NewPCA(2, 100)
	if err := pca.Fit(rand.New(rand.NewSource(p.cfg.Pipeline.Seed)), dense); err != nil {
		return err
	}
	proj, err := pca.Transform(dense)
	if err != nil {
		return err
	}
	return report.PlotProjection(proj, res.Clustering.Labels, pca.ExplainedRatio(), path)
}
