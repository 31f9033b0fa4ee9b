package clustering

// WithinClusterVariance returns the total squared distance from each assigned
// position to its cluster's center, summed over all clusters.
//
// Each cluster is recentered first, so the call moves every non-empty
// centroid to the mean of its members. nil or empty input yields 0.
func WithinClusterVariance(clusters []*Centroid) float64 {
	var total float64
	for _, c := range clusters {
		c.Recenter()
		center := c.location.components
		for _, p := range c.assigned {
			total += euclideanSumOfSquares(center, p.components)
		}
	}
	return total
}

// BetweenClusterVariance returns the size-weighted sum of squared distances
// from each cluster's center to the mean of all assigned positions.
//
// Like WithinClusterVariance it recenters every cluster. The global mean uses
// the dimensionality of the first cluster; positions and clusters of any
// other dimensionality do not contribute. nil input, or clusters with no
// assigned positions, yield 0.
func BetweenClusterVariance(clusters []*Centroid) float64 {
	if len(clusters) == 0 {
		return 0
	}

	dims := clusters[0].location.Dims()
	global := newRunningMean(dims)
	for _, c := range clusters {
		for _, p := range c.assigned {
			if p.Dims() == dims {
				global.add(p.components)
			}
		}
	}
	if global.n == 0 {
		return 0
	}

	var total float64
	for _, c := range clusters {
		c.Recenter()
		if c.location.Dims() != dims {
			continue
		}
		total += euclideanSumOfSquares(c.location.components, global.mean) * float64(len(c.assigned))
	}
	return total
}

// CalinskiHarabasz returns the Calinski-Harabasz index of the clustering:
//
//	(between / (K-1)) / (within / (N-K))
//
// where K is len(clusters) and N is totalPositions. The index is undefined,
// and 0 is returned, when clusters is nil, K < 2, or N <= K.
func CalinskiHarabasz(clusters []*Centroid, totalPositions int) float64 {
	k := len(clusters)
	if clusters == nil || k < 2 || totalPositions <= k {
		return 0
	}
	between := BetweenClusterVariance(clusters) / float64(k-1)
	within := WithinClusterVariance(clusters) / float64(totalPositions-k)
	return between / within
}
