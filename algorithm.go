package clustering

import (
	"fmt"
	"io"
)

// Algorithm selects a clustering engine.
type Algorithm string

const (
	AlgorithmAgglomerative Algorithm = "agglomerative"
	AlgorithmKMeans        Algorithm = "kmeans"
)

// Algorithms lists every supported algorithm in a stable order.
func Algorithms() []Algorithm {
	return []Algorithm{AlgorithmAgglomerative, AlgorithmKMeans}
}

// Result is the outcome of a single clustering run.
type Result interface {
	// Clusters returns the final clusters. An agglomerative run returns its
	// single root cluster.
	Clusters() []*Centroid

	// WriteTrace serializes the run in the tab-separated layout read by the
	// trace visualizer. source names the input the positions came from.
	// Failures are returned as *TraceError.
	WriteTrace(w io.Writer, source string) error
}

// Clusterer is implemented by every clustering engine. Clusterers hold no
// per-run state, so one value may serve concurrent independent runs.
type Clusterer interface {
	Cluster(positions []*Position) (Result, error)
	Name() string
	Description() string
}

// NewClusterer returns the engine selected by cfg.Algorithm.
func NewClusterer(cfg Config) (Clusterer, error) {
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}

	switch cfg.Algorithm {
	case AlgorithmKMeans:
		return &KMeans{cfg: cfg}, nil
	case AlgorithmAgglomerative:
		return &Agglomerative{cfg: cfg}, nil
	default:
		return nil, fmt.Errorf("clustering: invalid Algorithm %q", cfg.Algorithm)
	}
}
