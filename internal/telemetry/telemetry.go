// Package telemetry exports clustering run statistics as Prometheus metrics.
package telemetry

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/TrevorS/clustering"
)

// Observer implements clustering.Observer on a private Prometheus registry.
type Observer struct {
	registry *prometheus.Registry

	runs         *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	positions    prometheus.Gauge
	merges       prometheus.Counter
	mergeDist    prometheus.Histogram
	distances    prometheus.Counter
	incomparable prometheus.Counter
	kScore       *prometheus.GaugeVec
	iterations   prometheus.Counter
	changed      prometheus.Gauge
}

var _ clustering.Observer = (*Observer)(nil)

// New returns an Observer with all collectors registered.
func New() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "clustering_runs_total",
			Help: "Clustering runs by algorithm and outcome",
		}, []string{"algorithm", "status"}),
		runDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clustering_run_duration_seconds",
			Help:    "Wall-clock duration of clustering runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		}, []string{"algorithm"}),
		positions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clustering_positions",
			Help: "Number of positions in the most recent run",
		}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustering_agglomerative_merges_total",
			Help: "Agglomerative merges performed",
		}),
		mergeDist: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "clustering_agglomerative_merge_distance",
			Help:    "Single-link distance of agglomerative merges",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
		}),
		distances: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustering_agglomerative_distances_total",
			Help: "Position-pair distances computed by agglomerative runs",
		}),
		incomparable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustering_agglomerative_incomparable_pairs_total",
			Help: "Position pairs excluded as incomparable",
		}),
		kScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "clustering_kmeans_k_score",
			Help: "Calinski-Harabasz index of each K candidate in the most recent K search",
		}, []string{"k"}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "clustering_kmeans_iterations_total",
			Help: "K-Means passes compared against their predecessor",
		}),
		changed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "clustering_kmeans_changed_positions",
			Help: "Positions that changed cluster in the most recent K-Means pass",
		}),
	}

	o.registry.MustRegister(
		o.runs, o.runDuration, o.positions,
		o.merges, o.mergeDist, o.distances, o.incomparable,
		o.kScore, o.iterations, o.changed,
	)
	return o
}

// Registry returns the registry holding the observer's collectors.
func (o *Observer) Registry() *prometheus.Registry { return o.registry }

// WriteTextfile writes the current metrics to path in the text exposition
// format, for pickup by a node_exporter textfile collector.
func (o *Observer) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, o.registry)
}

func (o *Observer) OnRun(algorithm clustering.Algorithm, positions int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	o.runs.WithLabelValues(string(algorithm), status).Inc()
	o.runDuration.WithLabelValues(string(algorithm)).Observe(d.Seconds())
	o.positions.Set(float64(positions))
}

func (o *Observer) OnMerge(_ int, distance float64) {
	o.merges.Inc()
	o.mergeDist.Observe(distance)
}

func (o *Observer) OnDistances(computed, incomparable int) {
	o.distances.Add(float64(computed))
	o.incomparable.Add(float64(incomparable))
}

func (o *Observer) OnKCandidate(k int, score float64) {
	o.kScore.WithLabelValues(strconv.Itoa(k)).Set(score)
}

func (o *Observer) OnIteration(_, changed, _ int) {
	o.iterations.Inc()
	o.changed.Set(float64(changed))
}
