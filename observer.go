package clustering

import "time"

// Observer receives statistics from clustering runs. Implementations must be
// safe for concurrent use when independent runs share one Observer.
type Observer interface {
	// OnRun is called once per run with its outcome.
	OnRun(algorithm Algorithm, positions int, duration time.Duration, err error)

	// OnMerge is called for every agglomerative merge.
	OnMerge(height int, distance float64)

	// OnDistances reports how many position-pair distances an agglomerative
	// run computed, and how many of those pairs were incomparable.
	OnDistances(computed, incomparable int)

	// OnKCandidate is called for every K tried by the K-Means K search.
	OnKCandidate(k int, score float64)

	// OnIteration is called after every K-Means pass that has a predecessor
	// to compare against.
	OnIteration(pass, changed, total int)
}

// NoopObserver is a no-op implementation of Observer.
type NoopObserver struct{}

func (NoopObserver) OnRun(Algorithm, int, time.Duration, error) {}
func (NoopObserver) OnMerge(int, float64)                        {}
func (NoopObserver) OnDistances(int, int)                        {}
func (NoopObserver) OnKCandidate(int, float64)                   {}
func (NoopObserver) OnIteration(int, int, int)                   {}
