package clustering

import (
	"math"
	"sync"
)

// pairKey identifies an unordered pair of positions by index, lo <= hi.
type pairKey struct {
	lo, hi int
}

func newPairKey(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// distanceMemo caches position-pair distances for one agglomerative run.
// Lookups may run concurrently. Because a pair's distance is deterministic,
// concurrent writers for the same key are resolved by keeping the first.
// Incomparable pairs are stored as NaN.
type distanceMemo struct {
	positions []*Position

	mu           sync.RWMutex
	dists        map[pairKey]float64
	incomparable int
}

func newDistanceMemo(positions []*Position) *distanceMemo {
	return &distanceMemo{
		positions: positions,
		dists:     make(map[pairKey]float64),
	}
}

// distance returns the distance between positions i and j and whether the
// pair is comparable.
func (m *distanceMemo) distance(i, j int) (float64, bool) {
	key := newPairKey(i, j)

	m.mu.RLock()
	d, ok := m.dists[key]
	m.mu.RUnlock()
	if ok {
		return d, !math.IsNaN(d)
	}

	d, err := Distance(m.positions[key.lo], m.positions[key.hi])
	if err != nil {
		d = math.NaN()
	}

	m.mu.Lock()
	if prev, ok := m.dists[key]; ok {
		d = prev
	} else {
		m.dists[key] = d
		if math.IsNaN(d) {
			m.incomparable++
		}
	}
	m.mu.Unlock()

	return d, !math.IsNaN(d)
}

// stats returns the number of distinct pairs computed and how many of them
// were incomparable.
func (m *distanceMemo) stats() (computed, incomparable int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.dists), m.incomparable
}
