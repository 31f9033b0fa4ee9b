package clustering

import (
	"runtime"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Algorithm != AlgorithmAgglomerative {
		t.Errorf("Algorithm: got %q, want %q", cfg.Algorithm, AlgorithmAgglomerative)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers: got %d, want 0", cfg.Workers)
	}
	if cfg.Seed != 1 {
		t.Errorf("Seed: got %d, want 1", cfg.Seed)
	}
	if cfg.InitTrials != 100 {
		t.Errorf("InitTrials: got %d, want 100", cfg.InitTrials)
	}
	if cfg.MaxIterations != 300 {
		t.Errorf("MaxIterations: got %d, want 300", cfg.MaxIterations)
	}
	if cfg.Logger != nil || cfg.Observer != nil || cfg.Now != nil {
		t.Error("Logger, Observer and Now should be left for applyDefaults")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	applyDefaults(&cfg)

	if cfg.Algorithm != AlgorithmAgglomerative {
		t.Errorf("Algorithm: got %q", cfg.Algorithm)
	}
	if cfg.Workers != runtime.NumCPU() {
		t.Errorf("Workers: got %d, want %d", cfg.Workers, runtime.NumCPU())
	}
	if cfg.InitTrials != 100 {
		t.Errorf("InitTrials: got %d, want 100", cfg.InitTrials)
	}
	if cfg.Logger != logrus.StandardLogger() {
		t.Error("Logger: want logrus.StandardLogger()")
	}
	if _, ok := cfg.Observer.(NoopObserver); !ok {
		t.Errorf("Observer: got %T, want NoopObserver", cfg.Observer)
	}
	if cfg.Now == nil {
		t.Error("Now: got nil")
	}
	if err := validateConfig(&cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	logger := logrus.New()
	cfg := Config{Algorithm: AlgorithmKMeans, Workers: 3, InitTrials: 7, Logger: logger}
	applyDefaults(&cfg)

	if cfg.Algorithm != AlgorithmKMeans || cfg.Workers != 3 || cfg.InitTrials != 7 {
		t.Errorf("explicit values overwritten: %+v", cfg)
	}
	if cfg.Logger != logger {
		t.Error("explicit Logger overwritten")
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "dbscan" }},
		{"negative Workers", func(c *Config) { c.Workers = -1 }},
		{"negative InitTrials", func(c *Config) { c.InitTrials = -5 }},
		{"negative MaxIterations", func(c *Config) { c.MaxIterations = -1 }},
	}

	positions := []*Position{
		NewPosition("a", []float64{1, 2}),
		NewPosition("b", []float64{3, 4}),
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if _, err := NewClusterer(cfg); err == nil {
				t.Errorf("NewClusterer: expected error for %s", tt.name)
			}
			if tt.name == "unknown algorithm" {
				return
			}
			if _, err := ClusterAgglomerative(positions, cfg); err == nil {
				t.Errorf("ClusterAgglomerative: expected error for %s", tt.name)
			}
			if _, err := ClusterKMeans(positions, cfg); err == nil {
				t.Errorf("ClusterKMeans: expected error for %s", tt.name)
			}
		})
	}
}

func TestMaxIterationsZeroMeansNoCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxIterations = 0
	res, err := ClusterKMeans(sinePositions(12, 2), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Converged {
		t.Errorf("expected convergence without a cap, stopped after %d passes", res.Iterations)
	}
}
