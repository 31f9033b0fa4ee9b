package clustering

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	kmeansName        = "K-Means Clustering"
	kmeansDescription = "Splits a data set into K clusters. K is chosen automatically by" +
		" maximizing the Calinski-Harabasz index over a geometric series of candidates."
)

// KCandidate is one K tried by the K search, with its Calinski-Harabasz score.
type KCandidate struct {
	K     int
	Score float64
}

// KMeansResult is the outcome of a K-Means run.
type KMeansResult struct {
	// Centroids are the final clusters, with their members and locations.
	Centroids []*Centroid

	// K is the number of clusters chosen by the K search.
	K int

	// Candidates lists every K tried by the K search, in search order.
	Candidates []KCandidate

	// Iterations is the number of assignment passes after initialization.
	Iterations int

	// Converged is false when the run stopped at Config.MaxIterations.
	Converged bool

	// Positions is the input, in input order.
	Positions []*Position

	// Assignments[i] is the index into Centroids of position i's cluster.
	Assignments []int

	// CompletedAt is when the run finished.
	CompletedAt time.Time
}

// Clusters returns the final clusters.
func (r *KMeansResult) Clusters() []*Centroid { return r.Centroids }

// KMeans is the K-Means clusterer with automatic K selection.
type KMeans struct {
	cfg Config
}

// NewKMeans returns a K-Means clusterer. cfg.Algorithm is ignored.
func NewKMeans(cfg Config) (*KMeans, error) {
	cfg.Algorithm = AlgorithmKMeans
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &KMeans{cfg: cfg}, nil
}

// ClusterKMeans runs K-Means with cfg.
func ClusterKMeans(positions []*Position, cfg Config) (*KMeansResult, error) {
	km, err := NewKMeans(cfg)
	if err != nil {
		return nil, err
	}
	return km.Run(positions)
}

func (km *KMeans) Name() string        { return kmeansName }
func (km *KMeans) Description() string { return kmeansDescription }

// Cluster implements Clusterer.
func (km *KMeans) Cluster(positions []*Position) (Result, error) {
	r, err := km.Run(positions)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Run partitions the positions into K clusters.
//
// K is chosen first: for K = 2, 3, 4, 6, 9, ... (K = int(K*1.5)) while
// K < N, the first K positions seed K clusters, every position is assigned
// once, and the K with the highest Calinski-Harabasz index wins. The chosen
// K is then seeded by the best of Config.InitTrials random seedings and
// refined until fewer positions change cluster between passes than the
// convergence rule allows.
//
// Run fails with ErrInsufficientData for fewer than 2 positions and with
// ErrIncomparableDimensions for positions of mixed dimensionality or with a
// NaN or infinite component.
func (km *KMeans) Run(positions []*Position) (*KMeansResult, error) {
	began := time.Now()
	res, err := km.run(positions)
	km.cfg.Observer.OnRun(AlgorithmKMeans, len(positions), time.Since(began), err)
	return res, err
}

func (km *KMeans) run(positions []*Position) (*KMeansResult, error) {
	cfg := km.cfg
	n := len(positions)
	if n < 2 {
		return nil, fmt.Errorf("%w: k-means needs at least 2 positions, got %d", ErrInsufficientData, n)
	}
	if err := checkDimensions(positions); err != nil {
		return nil, err
	}
	// A non-finite member would make its centroid's mean NaN.
	if err := checkFinite(positions); err != nil {
		return nil, err
	}

	r := &kmeansRun{
		cfg:       cfg,
		positions: positions,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
		log:       cfg.Logger.WithField("algorithm", AlgorithmKMeans),
	}

	k, candidates, err := r.selectK()
	if err != nil {
		return nil, err
	}
	r.log.Debugf("selected K=%d from %d candidates", k, len(candidates))

	clusters, err := r.initialise(k)
	if err != nil {
		return nil, err
	}

	var (
		prev      membership
		assign    []int
		pass      int
		converged bool
	)
	for {
		clearCentroids(clusters)
		assign, err = r.iterate(clusters)
		if err != nil {
			return nil, err
		}
		pass++

		cur := snapshotMembership(clusters, assign)
		if prev != nil {
			changed, total := membershipChanges(prev, cur)
			cfg.Observer.OnIteration(pass, changed, total)
			r.log.Debugf("pass %d: %d of %d positions changed cluster", pass, changed, total)
			if hasConverged(changed, total) {
				converged = true
				break
			}
		}
		if cfg.MaxIterations > 0 && pass >= cfg.MaxIterations {
			r.log.Warnf("stopped after %d passes without converging", pass)
			break
		}
		prev = cur
	}

	return &KMeansResult{
		Centroids:   clusters,
		K:           k,
		Candidates:  candidates,
		Iterations:  pass,
		Converged:   converged,
		Positions:   positions,
		Assignments: assign,
		CompletedAt: cfg.Now(),
	}, nil
}

type kmeansRun struct {
	cfg       Config
	positions []*Position
	rng       *rand.Rand
	log       logrus.FieldLogger
}

func clusterID(i int) string { return "Cluster-" + strconv.Itoa(i) }

func clearCentroids(clusters []*Centroid) {
	for _, c := range clusters {
		c.Clear()
	}
}

// selectK scores every candidate K and returns the best. When no candidate
// scores above 0, including when N = 2 leaves no candidates, K = 2.
func (r *kmeansRun) selectK() (int, []KCandidate, error) {
	n := len(r.positions)
	var candidates []KCandidate
	bestK, bestScore := -1, 0.0

	for k := 2; k < n; k = int(float64(k) * 1.5) {
		clusters := make([]*Centroid, k)
		for j := range clusters {
			clusters[j] = NewCentroid(clusterID(j), r.positions[j])
		}
		if _, err := r.assign(clusters); err != nil {
			return 0, nil, err
		}

		score := CalinskiHarabasz(clusters, n)
		candidates = append(candidates, KCandidate{K: k, Score: score})
		r.cfg.Observer.OnKCandidate(k, score)
		r.log.Debugf("K=%d: Calinski-Harabasz %g", k, score)

		if score > bestScore {
			bestK, bestScore = k, score
		}
	}

	if bestK < 0 {
		bestK = 2
	}
	return bestK, candidates, nil
}

// initialise runs Config.InitTrials random seedings of k clusters, each
// refined by one pass, and returns the seeding with the lowest within-cluster
// variance. The returned clusters have no assigned positions.
func (r *kmeansRun) initialise(k int) ([]*Centroid, error) {
	n := len(r.positions)
	var (
		best      []*Centroid
		bestScore float64
	)
	for trial := 0; trial < r.cfg.InitTrials; trial++ {
		seeds := r.rng.Perm(n)[:k]
		clusters := make([]*Centroid, k)
		for c, idx := range seeds {
			clusters[c] = NewCentroid(clusterID(c), r.positions[idx])
		}
		if _, err := r.iterate(clusters); err != nil {
			return nil, err
		}

		score := WithinClusterVariance(clusters)
		clearCentroids(clusters)
		if best == nil || score < bestScore {
			best, bestScore = clusters, score
		}
	}
	r.log.Debugf("best of %d seedings has within-cluster variance %g", r.cfg.InitTrials, bestScore)
	return best, nil
}

// iterate runs one pass: assign every position, then recenter every cluster.
func (r *kmeansRun) iterate(clusters []*Centroid) ([]int, error) {
	assign, err := r.assign(clusters)
	if err != nil {
		return nil, err
	}
	parallelEach(len(clusters), r.cfg.Workers, func(start, end int) {
		for _, c := range clusters[start:end] {
			c.Recenter()
		}
	})
	return assign, nil
}

// assign finds every position's nearest cluster in parallel, then appends
// the positions to their clusters in input order from this goroutine.
func (r *kmeansRun) assign(clusters []*Centroid) ([]int, error) {
	assign := make([]int, len(r.positions))
	err := parallelRanges(len(r.positions), r.cfg.Workers, func(start, end int) error {
		for i := start; i < end; i++ {
			ci, err := nearestCentroid(r.positions[i], clusters)
			if err != nil {
				return err
			}
			assign[i] = ci
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i, ci := range assign {
		clusters[ci].Assign(r.positions[i])
	}
	return assign, nil
}

// nearestCentroid returns the index of the cluster closest to p. The first
// minimum wins ties. Clusters whose location is incomparable with p, or whose
// distance to p is NaN, are skipped; if every cluster is,
// ErrIncomparableDimensions is returned.
func nearestCentroid(p *Position, clusters []*Centroid) (int, error) {
	best, bestDist := -1, 0.0
	for i, c := range clusters {
		d, err := Distance(p, c.location)
		if err != nil || math.IsNaN(d) {
			continue
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	if best < 0 {
		return -1, fmt.Errorf("%w: position %q is comparable with no centroid", ErrIncomparableDimensions, p.id)
	}
	return best, nil
}
