package main

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TrevorS/clustering"
)

// runConfig is the YAML run file accepted by "clusterctl run --config".
// Every field mirrors a run flag; flags given on the command line win.
type runConfig struct {
	Algorithm     string `yaml:"algorithm"`
	Input         string `yaml:"input"`
	Format        string `yaml:"format"`
	OutputDir     string `yaml:"output_dir"`
	Seed          int64  `yaml:"seed"`
	Workers       int    `yaml:"workers"`
	InitTrials    int    `yaml:"init_trials"`
	MaxIterations int    `yaml:"max_iterations"`
	Compress      bool   `yaml:"compress"`
	LogLevel      string `yaml:"log"`
	MetricsFile   string `yaml:"metrics_file"`
	Cut           int    `yaml:"cut"`
}

// Input formats accepted by --format.
const (
	formatSeriesMatrix = "series-matrix"
	formatTable        = "table"
	formatGenBank      = "genbank"
)

func defaultRunConfig() runConfig {
	d := clustering.DefaultConfig()
	return runConfig{
		Algorithm:     string(d.Algorithm),
		Format:        formatSeriesMatrix,
		OutputDir:     ".",
		Seed:          d.Seed,
		InitTrials:    d.InitTrials,
		MaxIterations: d.MaxIterations,
		LogLevel:      "info",
	}
}

// loadRunConfig reads a YAML run file over the defaults. Unknown keys are
// rejected so that typos fail loudly.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading run config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing run config %s: %w", path, err)
	}
	return cfg, nil
}

// clusteringConfig converts the run settings to a library Config.
func (c runConfig) clusteringConfig() (clustering.Config, error) {
	cfg := clustering.DefaultConfig()
	cfg.Algorithm = clustering.Algorithm(c.Algorithm)
	cfg.Seed = c.Seed
	cfg.Workers = c.Workers
	cfg.InitTrials = c.InitTrials
	cfg.MaxIterations = c.MaxIterations

	switch cfg.Algorithm {
	case clustering.AlgorithmAgglomerative, clustering.AlgorithmKMeans:
	default:
		return cfg, fmt.Errorf("unknown algorithm %q (want one of %v)", c.Algorithm, clustering.Algorithms())
	}
	switch c.Format {
	case formatSeriesMatrix, formatTable, formatGenBank:
	default:
		return cfg, fmt.Errorf("unknown input format %q (want %q, %q or %q)",
			c.Format, formatSeriesMatrix, formatTable, formatGenBank)
	}
	if c.Cut < 0 {
		return cfg, fmt.Errorf("cut must be >= 0, got %d", c.Cut)
	}
	return cfg, nil
}
