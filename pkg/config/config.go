package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable, e.g. PROPCLUSTER_PIPELINE_SEED.
const EnvPrefix = "PROPCLUSTER"

// Config represents the complete application configuration.
type Config struct {
	Pipeline PipelineConfig `yaml:"pipeline" envconfig:"PIPELINE"`
	Output   OutputConfig   `yaml:"output" envconfig:"OUTPUT"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Database DatabaseConfig `yaml:"database" envconfig:"DATABASE"`
}

// PipelineConfig drives generation, imputation and clustering.
type PipelineConfig struct {
	Seed            int64   `yaml:"seed" envconfig:"SEED" default:"123"`
	Rows            int     `yaml:"rows" envconfig:"ROWS" default:"1000"`
	InputPath       string  `yaml:"input_path" envconfig:"INPUT_PATH"`
	MissingFraction float64 `yaml:"missing_fraction" envconfig:"MISSING_FRACTION" default:"0.2"`
	Neighbours      int     `yaml:"neighbours" envconfig:"NEIGHBOURS" default:"5"`
	Clusters        int     `yaml:"clusters" envconfig:"CLUSTERS" default:"5"`
	Restarts        int     `yaml:"restarts" envconfig:"RESTARTS" default:"10"`
	MaxIter         int     `yaml:"max_iter" envconfig:"MAX_ITER" default:"100"`
	Lambda          float64 `yaml:"lambda" envconfig:"LAMBDA" default:"0"`
	Elbow           bool    `yaml:"elbow" envconfig:"ELBOW" default:"true"`
	ElbowMaxK       int     `yaml:"elbow_max_k" envconfig:"ELBOW_MAX_K" default:"10"`
}

// OutputConfig selects which artefacts are written under Dir.
type OutputConfig struct {
	Dir   string `yaml:"dir" envconfig:"DIR" default:"output"`
	CSV   bool   `yaml:"csv" envconfig:"CSV" default:"true"`
	Excel bool   `yaml:"excel" envconfig:"EXCEL" default:"false"`
	Plots bool   `yaml:"plots" envconfig:"PLOTS" default:"false"`
	Print bool   `yaml:"print" envconfig:"PRINT" default:"true"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"text"`
}

// DatabaseConfig holds connection parameters for the property database.
// The values are placeholders; nothing in this module opens a connection.
type DatabaseConfig struct {
	Driver            string `yaml:"driver" envconfig:"DRIVER"`
	Server            string `yaml:"server" envconfig:"SERVER"`
	Database          string `yaml:"database" envconfig:"NAME"`
	TrustedConnection string `yaml:"trusted_connection" envconfig:"TRUSTED_CONNECTION"`
}

// Load reads an optional .env file, then environment variables, then the
// YAML file at path when it is non-empty. Values set in the file win over
// the environment. A missing .env is fine; an unreadable one is an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// loadFromFile overlays the YAML document onto cfg; keys absent from the
// file keep their current values.
func loadFromFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(raw, cfg)
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Validate checks ranges that would otherwise fail deep inside the pipeline.
func (c *Config) Validate() error {
	p := c.Pipeline
	var problems []string
	if p.InputPath == "" && p.Rows <= 0 {
		problems = append(problems, "pipeline.rows must be positive")
	}
	if p.MissingFraction < 0 || p.MissingFraction >= 1 {
		problems = append(problems, "pipeline.missing_fraction must be in [0,1)")
	}
	if p.Neighbours < 1 {
		problems = append(problems, "pipeline.neighbours must be at least 1")
	}
	if p.Clusters < 1 {
		problems = append(problems, "pipeline.clusters must be at least 1")
	}
	if p.Restarts < 1 {
		problems = append(problems, "pipeline.restarts must be at least 1")
	}
	if p.MaxIter < 1 {
		problems = append(problems, "pipeline.max_iter must be at least 1")
	}
	if p.Elbow && p.ElbowMaxK < 1 {
		problems = append(problems, "pipeline.elbow_max_k must be at least 1")
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("logging.format %q is not json or text", c.Logging.Format))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
