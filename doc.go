// Package clustering groups fixed-dimensional numeric points ("positions"),
// such as gene-expression profiles, for exploratory data analysis.
//
// Two engines are provided. Single-link agglomerative hierarchical
// clustering merges positions pairwise until one cluster remains and records
// every merge:
//
//	res, err := clustering.ClusterAgglomerative(positions, clustering.DefaultConfig())
//	// res.Root holds every position; res.Merges[h-1] is the merge at height h
//	// res.Tree is the merge tree; res.Tree.Cut(k) gives a flat clustering
//
// K-Means chooses the number of clusters itself, by maximizing the
// Calinski-Harabasz index over K = 2, 3, 4, 6, 9, ...:
//
//	res, err := clustering.ClusterKMeans(positions, clustering.DefaultConfig())
//	// res.Centroids[i] is a cluster; res.K is the chosen cluster count
//
// Both results can be serialized as the tab-separated trace read by the
// trace visualizer:
//
//	err := res.WriteTrace(w, "GSE1000_series_matrix.txt")
//	// a *TraceError means only the trace failed; res is still valid
//
// # Algorithm selection
//
// NewClusterer returns the engine named by Config.Algorithm behind the
// Clusterer interface:
//
//	cfg.Algorithm = clustering.AlgorithmKMeans
//	c, err := clustering.NewClusterer(cfg)
//	res, err := c.Cluster(positions)
//
// Runs share no state: each call builds its own clusters and distance memo,
// so a Clusterer may be used from several goroutines at once.
package clustering
