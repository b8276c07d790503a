package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/config"
	"github.com/DeaganAnalytics/automation-and-ml-portfolio/pkg/pipeline"
)

func TestRunWritesSummaryAndFiles(t *testing.T) {
	dir := t.TempDir()
	var stdout, stderr bytes.Buffer
	args := []string{"-rows", "120", "-k", "3", "-restarts", "2", "-elbow=false", "-out", dir, "-excel", "-plots"}

	require.NoError(t, run(context.Background(), args, &stdout, &stderr))

	out := stdout.String()
	assert.Contains(t, out, "$land_use")
	assert.Contains(t, out, "Cluster 3")
	assert.NotContains(t, out, "Cluster 4")
	for _, name := range []string{pipeline.LabeledCSVFile, pipeline.SummaryXLSX, pipeline.ClustersPNG, pipeline.ProjectionPNG} {
		path := filepath.Join(dir, name)
		assert.FileExists(t, path)
		assert.Contains(t, out, "wrote "+path)
	}
	// No elbow sweep, no elbow plot.
	assert.NoFileExists(t, filepath.Join(dir, pipeline.ElbowPNG))
	assert.Contains(t, stderr.String(), "pipeline finished")
}

func TestRunFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	doc := "pipeline:\n  rows: 80\n  clusters: 4\n  elbow: false\noutput:\n  csv: false\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-config", path, "-k", "2", "-restarts", "1"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), "Cluster 2")
	assert.NotContains(t, stdout.String(), "Cluster 3")
	assert.NotContains(t, stdout.String(), "wrote")
}

func TestRunRejectsBadInput(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-k", "0"}, &stdout, &stderr)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	err = run(context.Background(), []string{"-no-such-flag"}, &stdout, &stderr)
	assert.Error(t, err)

	err = run(context.Background(), []string{"-config", filepath.Join(t.TempDir(), "missing.yaml")}, &stdout, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var stdout, stderr bytes.Buffer
	err := run(ctx, []string{"-rows", "50", "-elbow=false", "-out", t.TempDir()}, &stdout, &stderr)
	assert.ErrorIs(t, err, context.Canceled)
}
