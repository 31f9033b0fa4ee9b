package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/TrevorS/clustering"
	"github.com/TrevorS/clustering/internal/genbank"
	"github.com/TrevorS/clustering/internal/seriesmatrix"
	"github.com/TrevorS/clustering/internal/telemetry"
	"github.com/TrevorS/clustering/internal/tracefile"
)

var (
	// CLI flags for the run command
	configPath    string // Optional YAML run file
	algorithm     string // Clustering algorithm
	inputPath     string // Input data file
	inputFormat   string // Input data format
	outputDir     string // Directory receiving the trace
	seed          int64  // K-Means seed; 0 picks one from the clock
	workers       int    // Worker goroutines; 0 means NumCPU
	initTrials    int    // K-Means random seedings
	maxIterations int    // K-Means pass cap; 0 means no cap
	compress      bool   // Write a zstd-compressed trace
	logLevel      string // Log verbosity level
	metricsFile   string // Prometheus textfile to write after the run
	cut           int    // Agglomerative flat clustering size; 0 disables
)

// runCmd clusters one input file and writes its trace
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Cluster an input file and write the trace",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := resolveRunConfig(cmd)
		if err != nil {
			return err
		}
		path, err := execute(cfg, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

// resolveRunConfig layers explicitly set flags over the run file, or over
// the flag defaults when no run file is given.
func resolveRunConfig(cmd *cobra.Command) (runConfig, error) {
	cfg := runConfig{
		Algorithm:     algorithm,
		Input:         inputPath,
		Format:        inputFormat,
		OutputDir:     outputDir,
		Seed:          seed,
		Workers:       workers,
		InitTrials:    initTrials,
		MaxIterations: maxIterations,
		Compress:      compress,
		LogLevel:      logLevel,
		MetricsFile:   metricsFile,
		Cut:           cut,
	}
	if configPath == "" {
		return cfg, nil
	}

	fileCfg, err := loadRunConfig(configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	override := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	override("algorithm", func() { fileCfg.Algorithm = algorithm })
	override("input", func() { fileCfg.Input = inputPath })
	override("format", func() { fileCfg.Format = inputFormat })
	override("output-dir", func() { fileCfg.OutputDir = outputDir })
	override("seed", func() { fileCfg.Seed = seed })
	override("workers", func() { fileCfg.Workers = workers })
	override("init-trials", func() { fileCfg.InitTrials = initTrials })
	override("max-iterations", func() { fileCfg.MaxIterations = maxIterations })
	override("compress", func() { fileCfg.Compress = compress })
	override("log", func() { fileCfg.LogLevel = logLevel })
	override("metrics-file", func() { fileCfg.MetricsFile = metricsFile })
	override("cut", func() { fileCfg.Cut = cut })
	return fileCfg, nil
}

// execute performs one run and returns the path of the written trace.
func execute(rc runConfig, out io.Writer) (string, error) {
	level, err := logrus.ParseLevel(rc.LogLevel)
	if err != nil {
		return "", fmt.Errorf("invalid log level %q", rc.LogLevel)
	}
	logger := logrus.New()
	logger.SetLevel(level)

	if rc.Input == "" {
		return "", fmt.Errorf("no input file given")
	}
	cfg, err := rc.clusteringConfig()
	if err != nil {
		return "", err
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
		logger.Infof("using seed %d", cfg.Seed)
	}
	cfg.Logger = logger

	var observer *telemetry.Observer
	if rc.MetricsFile != "" {
		observer = telemetry.New()
		cfg.Observer = observer
	}

	positions, err := readPositions(rc.Input, rc.Format)
	if err != nil {
		return "", err
	}
	logger.Infof("read %d positions from %s", len(positions), rc.Input)

	clusterer, err := clustering.NewClusterer(cfg)
	if err != nil {
		return "", err
	}
	logger.Infof("running %s", clusterer.Name())
	res, err := clusterer.Cluster(positions)
	if err != nil {
		return "", err
	}

	if agg, ok := res.(*clustering.AgglomerativeResult); ok && rc.Cut > 0 {
		if err := printCut(out, agg, rc.Cut); err != nil {
			return "", err
		}
	}
	if km, ok := res.(*clustering.KMeansResult); ok {
		logger.Infof("chose K=%d after %d passes (converged: %t)", km.K, km.Iterations, km.Converged)
	}

	path := filepath.Join(rc.OutputDir, tracefile.Name(clusterer.Name(), time.Now(), rc.Compress))
	if err := writeTrace(path, res, filepath.Base(rc.Input)); err != nil {
		return "", err
	}
	logger.Infof("wrote trace to %s", path)

	if observer != nil {
		if err := observer.WriteTextfile(rc.MetricsFile); err != nil {
			return "", fmt.Errorf("writing metrics: %w", err)
		}
	}
	return path, nil
}

func readPositions(path, format string) ([]*clustering.Position, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch format {
	case formatTable:
		return seriesmatrix.ParseTable(f)
	case formatGenBank:
		return genbank.Parse(f)
	}
	return seriesmatrix.Parse(f)
}

func writeTrace(path string, res clustering.Result, source string) error {
	w, err := tracefile.Create(path)
	if err != nil {
		return err
	}
	if err := res.WriteTrace(w, source); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// printCut prints the flat clustering obtained by cutting the merge tree into
// k clusters, one "id<TAB>cluster" line per position.
func printCut(out io.Writer, res *clustering.AgglomerativeResult, k int) error {
	labels, err := res.Tree.Cut(k)
	if err != nil {
		return err
	}
	for i, p := range res.Positions {
		fmt.Fprintf(out, "%s\t%d\n", p.ID(), labels[i])
	}
	return nil
}

func init() {
	d := defaultRunConfig()

	runCmd.Flags().StringVar(&configPath, "config", "", "YAML run file; explicitly set flags override it")
	runCmd.Flags().StringVar(&algorithm, "algorithm", d.Algorithm, "Clustering algorithm (agglomerative, kmeans)")
	runCmd.Flags().StringVarP(&inputPath, "input", "i", "", "Input data file")
	runCmd.Flags().StringVar(&inputFormat, "format", d.Format, "Input format (series-matrix, table, genbank)")
	runCmd.Flags().StringVarP(&outputDir, "output-dir", "o", d.OutputDir, "Directory receiving the trace file")
	runCmd.Flags().Int64Var(&seed, "seed", d.Seed, "Seed for K-Means initialization (0 picks one from the clock)")
	runCmd.Flags().IntVar(&workers, "workers", 0, "Worker goroutines (0 means one per CPU)")
	runCmd.Flags().IntVar(&initTrials, "init-trials", d.InitTrials, "Random K-Means seedings to try")
	runCmd.Flags().IntVar(&maxIterations, "max-iterations", d.MaxIterations, "Cap on K-Means passes (0 means no cap)")
	runCmd.Flags().BoolVar(&compress, "compress", false, "Write a zstd-compressed trace (.tsv.zst)")
	runCmd.Flags().StringVar(&logLevel, "log", d.LogLevel, "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write run metrics to this Prometheus textfile")
	runCmd.Flags().IntVar(&cut, "cut", 0, "Print an agglomerative flat clustering with this many clusters")
}
