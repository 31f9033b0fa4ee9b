package clustering

import "github.com/RoaringBitmap/roaring/v2"

const (
	// smallClusteringSize is the assigned-position count below which a
	// K-Means run converges only when no position changed cluster.
	smallClusteringSize = 20

	// convergenceRatio is the fraction of changed positions under which a
	// larger K-Means run counts as converged.
	convergenceRatio = 0.05
)

// membership maps a cluster id to the indices of its assigned positions.
type membership map[string]*roaring.Bitmap

// snapshotMembership records the cluster of every position after a pass.
// assign[i] is the index into clusters of position i's cluster.
func snapshotMembership(clusters []*Centroid, assign []int) membership {
	m := make(membership, len(clusters))
	for _, c := range clusters {
		m[c.id] = roaring.New()
	}
	for i, ci := range assign {
		m[clusters[ci].id].Add(uint32(i))
	}
	return m
}

// membershipChanges compares two snapshots by cluster id. total is the
// number of positions assigned in before; changed counts those no longer
// assigned to the same cluster id in after.
func membershipChanges(before, after membership) (changed, total int) {
	for id, b := range before {
		card := int(b.GetCardinality())
		total += card
		a, ok := after[id]
		if !ok {
			changed += card
			continue
		}
		changed += card - int(b.AndCardinality(a))
	}
	return changed, total
}

// hasConverged applies the convergence rule: small runs need zero changes,
// larger ones fewer than convergenceRatio of all assigned positions.
func hasConverged(changed, total int) bool {
	if total < smallClusteringSize {
		return changed == 0
	}
	return float64(changed) < convergenceRatio*float64(total)
}
