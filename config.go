package clustering

import (
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
)

// Config controls clustering behavior.
// Start with [DefaultConfig] and override the fields you need.
type Config struct {
	// Algorithm selects the clusterer built by NewClusterer.
	// Default: AlgorithmAgglomerative.
	Algorithm Algorithm

	// Workers controls the number of goroutines used for the agglomerative
	// minimum-distance scan, K-Means nearest-centroid assignment and
	// recentering. 0 means use runtime.NumCPU(). Results do not depend on
	// the worker count. Default: 0 (auto).
	Workers int

	// Seed drives the random K-Means initialization trials. Runs with the
	// same seed and input produce identical clusters. Default: 1.
	Seed int64

	// InitTrials is the number of random seedings tried by K-Means
	// initialization; the seeding with the lowest within-cluster variance
	// is kept. Must be >= 1. Default: 100.
	InitTrials int

	// MaxIterations caps the number of K-Means passes after initialization.
	// When the cap is reached the current clusters are returned unconverged.
	// 0 means no cap. Must be >= 0. Default: 300.
	MaxIterations int

	// Logger receives progress and diagnostic messages.
	// Default: logrus.StandardLogger().
	Logger logrus.FieldLogger

	// Observer receives run statistics. Default: NoopObserver.
	Observer Observer

	// Now supplies the timestamps recorded in results and traces.
	// Default: time.Now.
	Now func() time.Time
}

// DefaultConfig returns a Config with reasonable defaults.
func DefaultConfig() Config {
	return Config{
		Algorithm:     AlgorithmAgglomerative,
		Seed:          1,
		InitTrials:    100,
		MaxIterations: 300,
	}
}

// validateConfig checks that cfg fields are valid and returns a descriptive error if not.
func validateConfig(cfg *Config) error {
	switch cfg.Algorithm {
	case AlgorithmAgglomerative, AlgorithmKMeans:
		// valid
	default:
		return fmt.Errorf("clustering: invalid Algorithm %q", cfg.Algorithm)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("clustering: Workers must be >= 0 (0 means NumCPU), got %d", cfg.Workers)
	}
	if cfg.InitTrials < 1 {
		return fmt.Errorf("clustering: InitTrials must be >= 1, got %d", cfg.InitTrials)
	}
	if cfg.MaxIterations < 0 {
		return fmt.Errorf("clustering: MaxIterations must be >= 0 (0 means no cap), got %d", cfg.MaxIterations)
	}
	return nil
}

// applyDefaults fills in zero-valued config fields with their defaults.
func applyDefaults(cfg *Config) {
	if cfg.Algorithm == "" {
		cfg.Algorithm = AlgorithmAgglomerative
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.InitTrials == 0 {
		cfg.InitTrials = 100
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Observer == nil {
		cfg.Observer = NoopObserver{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
}
