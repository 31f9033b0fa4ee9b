package clustering

import (
	"sync"

	"golang.org/x/sync/errgroup"
)

// splitRanges divides [0, n) into at most numWorkers contiguous, non-empty
// ranges of near-equal size. With numWorkers <= 1 or n <= 1 the whole
// interval is a single range.
func splitRanges(n, numWorkers int) [][2]int {
	if n <= 0 {
		return nil
	}
	if numWorkers <= 1 || n <= 1 {
		return [][2]int{{0, n}}
	}

	perWorker := (n + numWorkers - 1) / numWorkers
	ranges := make([][2]int, 0, numWorkers)
	for start := 0; start < n; start += perWorker {
		ranges = append(ranges, [2]int{start, min(start+perWorker, n)})
	}
	return ranges
}

// parallelRanges splits [0, n) into contiguous ranges and calls fn on each
// range from its own goroutine. Ranges never overlap, so fn may write to
// per-index result slots without synchronization. With numWorkers <= 1 or
// n <= 1, fn runs once on the caller's goroutine.
//
// The first non-nil error from fn is returned after all ranges finish.
func parallelRanges(n, numWorkers int, fn func(start, end int) error) error {
	ranges := splitRanges(n, numWorkers)
	if len(ranges) == 1 {
		return fn(ranges[0][0], ranges[0][1])
	}

	var g errgroup.Group
	for _, r := range ranges {
		g.Go(func() error {
			return fn(r[0], r[1])
		})
	}
	return g.Wait()
}

// parallelEach is parallelRanges for work that cannot fail.
func parallelEach(n, numWorkers int, fn func(start, end int)) {
	ranges := splitRanges(n, numWorkers)
	if len(ranges) == 1 {
		fn(ranges[0][0], ranges[0][1])
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		wg.Go(func() {
			fn(r[0], r[1])
		})
	}
	wg.Wait()
}
