package clustering

import (
	"fmt"
	"slices"
	"time"
)

const (
	agglomerativeName        = "Single Link Agglomerative Hierarchical Clustering"
	agglomerativeDescription = "Performs single-link agglomerative hierarchical clustering, merging" +
		" individual positions pairwise until a single cluster remains. This does not scale" +
		" well to large data sets."
)

// Merge records one agglomerative merge.
type Merge struct {
	// Height is the 1-based merge index. It is not derived from the merge
	// distance, so heights of successive merges always increase by one.
	Height int

	// A and B are the dendrogram nodes that were merged, and Node the node
	// created for the result.
	A, B, Node int

	// Distance is the single-link distance between A and B.
	Distance float64
}

// AgglomerativeResult is the outcome of a single-link agglomerative run.
type AgglomerativeResult struct {
	// Root is the final cluster. Its id is the composite display id of the
	// whole tree, its location is the first merged leaf's position, and its
	// members are in merge order.
	Root *Centroid

	// Merges lists the N-1 merges in the order they happened.
	Merges []Merge

	// Positions is the input, in input order.
	Positions []*Position

	// Tree is the merge tree.
	Tree *Dendrogram

	// SkippedPairs counts the position pairs left out of the search because
	// their distance is NaN.
	SkippedPairs int

	// StartedAt is when the run began.
	StartedAt time.Time
}

// Clusters returns the single root cluster.
func (r *AgglomerativeResult) Clusters() []*Centroid {
	return []*Centroid{r.Root}
}

// Agglomerative is the single-link agglomerative hierarchical clusterer.
type Agglomerative struct {
	cfg Config
}

// NewAgglomerative returns an agglomerative clusterer. cfg.Algorithm is ignored.
func NewAgglomerative(cfg Config) (*Agglomerative, error) {
	cfg.Algorithm = AlgorithmAgglomerative
	applyDefaults(&cfg)
	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &Agglomerative{cfg: cfg}, nil
}

// ClusterAgglomerative runs single-link agglomerative clustering with cfg.
func ClusterAgglomerative(positions []*Position, cfg Config) (*AgglomerativeResult, error) {
	a, err := NewAgglomerative(cfg)
	if err != nil {
		return nil, err
	}
	return a.Run(positions)
}

func (a *Agglomerative) Name() string        { return agglomerativeName }
func (a *Agglomerative) Description() string { return agglomerativeDescription }

// Cluster implements Clusterer.
func (a *Agglomerative) Cluster(positions []*Position) (Result, error) {
	r, err := a.Run(positions)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Run merges the positions bottom-up until one cluster remains.
//
// Every iteration merges the pair of clusters with the smallest single-link
// distance. Pairs are scanned in active-list order and the first minimum
// found wins ties. Position-pair distances are memoized for the run.
//
// Run fails with ErrInsufficientData for empty input, and with
// ErrIncomparableDimensions when positions differ in dimensionality or no
// comparable cluster pair is left to merge.
func (a *Agglomerative) Run(positions []*Position) (*AgglomerativeResult, error) {
	cfg := a.cfg
	began := time.Now()
	res, err := a.run(positions)
	cfg.Observer.OnRun(AlgorithmAgglomerative, len(positions), time.Since(began), err)
	return res, err
}

func (a *Agglomerative) run(positions []*Position) (*AgglomerativeResult, error) {
	cfg := a.cfg
	n := len(positions)
	if n == 0 {
		return nil, fmt.Errorf("%w: agglomerative clustering needs at least 1 position", ErrInsufficientData)
	}
	if err := checkDimensions(positions); err != nil {
		return nil, err
	}

	started := cfg.Now()
	log := cfg.Logger.WithField("algorithm", AlgorithmAgglomerative)
	log.Debugf("clustering %d positions", n)

	r := &agglomerativeRun{
		cfg:    cfg,
		memo:   newDistanceMemo(positions),
		tree:   newDendrogram(positions),
		active: make([]activeCluster, n),
	}
	for i := range r.active {
		r.active[i] = activeCluster{node: i, members: []int{i}}
	}

	merges := make([]Merge, 0, n-1)
	for height := 1; len(r.active) > 1; height++ {
		i, j, dist, ok := r.closestPair()
		if !ok {
			computed, incomparable := r.memo.stats()
			cfg.Observer.OnDistances(computed, incomparable)
			return nil, fmt.Errorf("%w: no comparable cluster pair left at height %d (%d of %d pairs incomparable)",
				ErrIncomparableDimensions, height, incomparable, computed)
		}
		merges = append(merges, r.merge(i, j, height, dist))
		cfg.Observer.OnMerge(height, dist)
		log.Tracef("height %d: merged nodes %d and %d at distance %g",
			height, merges[len(merges)-1].A, merges[len(merges)-1].B, dist)
	}

	computed, incomparable := r.memo.stats()
	cfg.Observer.OnDistances(computed, incomparable)
	if incomparable > 0 {
		log.Warnf("excluded %d incomparable position pairs", incomparable)
	}
	log.Debugf("completed %d merges using %d distance computations", len(merges), computed)

	rootCluster := r.active[0]
	root := NewCentroid(r.tree.Label(rootCluster.node), positions[rootCluster.members[0]])
	for _, m := range rootCluster.members {
		root.Assign(positions[m])
	}

	return &AgglomerativeResult{
		Root:         root,
		Merges:       merges,
		Positions:    positions,
		Tree:         r.tree,
		SkippedPairs: incomparable,
		StartedAt:    started,
	}, nil
}

// activeCluster is a cluster still awaiting a merge: its dendrogram node and
// its member position indices in merge order.
type activeCluster struct {
	node    int
	members []int
}

type agglomerativeRun struct {
	cfg    Config
	memo   *distanceMemo
	tree   *Dendrogram
	active []activeCluster
}

// rowMin is the closest partner of active cluster i among clusters j > i.
type rowMin struct {
	other int
	dist  float64
	found bool
}

// closestPair returns the indices i < j into r.active of the clusters with
// the smallest single-link distance. Rows are scanned in parallel and reduced
// in row order, which reproduces the sequential scan's tie-breaking.
func (r *agglomerativeRun) closestPair() (i, j int, dist float64, ok bool) {
	rows := make([]rowMin, len(r.active))
	parallelEach(len(r.active)-1, r.cfg.Workers, func(start, end int) {
		for row := start; row < end; row++ {
			rows[row] = r.scanRow(row)
		}
	})

	for row, m := range rows {
		if m.found && (!ok || m.dist < dist) {
			i, j, dist, ok = row, m.other, m.dist, true
		}
	}
	return i, j, dist, ok
}

// scanRow visits, for every member p of cluster i, every member q of every
// cluster after i, and keeps the first strictly smaller distance.
func (r *agglomerativeRun) scanRow(i int) rowMin {
	var best rowMin
	for _, p := range r.active[i].members {
		for j := i + 1; j < len(r.active); j++ {
			for _, q := range r.active[j].members {
				d, ok := r.memo.distance(p, q)
				if !ok {
					continue
				}
				if !best.found || d < best.dist {
					best = rowMin{other: j, dist: d, found: true}
				}
			}
		}
	}
	return best
}

// merge replaces active clusters i < j with their union, appended at the end
// of the active list.
func (r *agglomerativeRun) merge(i, j, height int, dist float64) Merge {
	a, b := r.active[i], r.active[j]
	node := r.tree.merge(a.node, b.node, height, dist)

	members := make([]int, 0, len(a.members)+len(b.members))
	members = append(members, a.members...)
	members = append(members, b.members...)

	r.active = slices.Delete(r.active, j, j+1)
	r.active = slices.Delete(r.active, i, i+1)
	r.active = append(r.active, activeCluster{node: node, members: members})

	return Merge{Height: height, A: a.node, B: b.node, Node: node, Distance: dist}
}
