package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/config"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/logging"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/pipeline"
)

//
// ---------------------- CLI FLAGS ----------------------
//
// -config   : YAML config file, merged over PROPCLUSTER_* environment variables
// -input    : Property CSV to cluster instead of generating one
// -seed     : Random seed
// -rows     : Number of synthetic properties
// -k        : Final cluster count
// -restarts : Random starts per fit
// -elbow    : Run the k = 1..10 elbow sweep
// -out      : Output directory
// -excel    : Write cluster_summary.xlsx
// -plots    : Write elbow.png, clusters.png and clusters_pca.png
//
// Flags only override the config when given explicitly.
//
// Example:
//   go run ./cmd/propcluster -seed 123 -k 5 -excel -plots
//
// --------------------------------------------------------
//

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "propcluster:", err)
		os.Exit(1)
	}
}

// run parses args, executes the pipeline and prints the summary to stdout.
// Logs go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("propcluster", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "Path to YAML config file")
	input := fs.String("input", "", "Property CSV to cluster (skips generation)")
	seed := fs.Int64("seed", 123, "Random seed")
	rows := fs.Int("rows", 1000, "Number of synthetic properties")
	k := fs.Int("k", 5, "Final cluster count")
	restarts := fs.Int("restarts", 10, "Random starts per fit")
	elbow := fs.Bool("elbow", true, "Run the elbow sweep")
	out := fs.String("out", "output", "Output directory")
	excel := fs.Bool("excel", false, "Write the summary workbook")
	plots := fs.Bool("plots", false, "Write elbow, cluster and PCA plots")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Pipeline.InputPath = *input
		case "seed":
			cfg.Pipeline.Seed = *seed
		case "rows":
			cfg.Pipeline.Rows = *rows
		case "k":
			cfg.Pipeline.Clusters = *k
		case "restarts":
			cfg.Pipeline.Restarts = *restarts
		case "elbow":
			cfg.Pipeline.Elbow = *elbow
		case "out":
			cfg.Output.Dir = *out
		case "excel":
			cfg.Output.Excel = *excel
		case "plots":
			cfg.Output.Plots = *plots
		}
	})
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	logger := logging.New(cfg.Logging, stderr)
	slog.SetDefault(logger)

	res, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error("pipeline failed", slog.String("error", err.Error()))
		return err
	}

	if cfg.Output.Print {
		if err := res.Summary.Print(stdout); err != nil {
			return fmt.Errorf("print summary: %w", err)
		}
	}
	for _, f := range res.Files {
		fmt.Fprintln(stdout, "wrote", f)
	}
	return nil
}
