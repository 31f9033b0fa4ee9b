package clustering

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestParallelRanges_CoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{1, 2, 7, 20, 101} {
		for _, workers := range []int{0, 1, 2, 4, 7, 200} {
			hits := make([]int32, n)
			err := parallelRanges(n, workers, func(start, end int) error {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("n=%d workers=%d: unexpected error: %v", n, workers, err)
			}
			for i, h := range hits {
				if h != 1 {
					t.Errorf("n=%d workers=%d: index %d visited %d times", n, workers, i, h)
				}
			}
		}
	}
}

func TestParallelRanges_Empty(t *testing.T) {
	called := false
	err := parallelRanges(0, 4, func(start, end int) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("fn called for empty range")
	}
}

func TestParallelRanges_PropagatesError(t *testing.T) {
	boom := errors.New("boom")
	err := parallelRanges(10, 3, func(start, end int) error {
		if start == 0 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
}

func TestParallelRanges_SequentialOnOneWorker(t *testing.T) {
	var calls int
	err := parallelRanges(50, 1, func(start, end int) error {
		calls++
		if start != 0 || end != 50 {
			t.Errorf("expected a single [0,50) range, got [%d,%d)", start, end)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestSplitRanges(t *testing.T) {
	tests := []struct {
		n, workers int
		want       [][2]int
	}{
		{0, 4, nil},
		{5, 1, [][2]int{{0, 5}}},
		{1, 8, [][2]int{{0, 1}}},
		{10, 3, [][2]int{{0, 4}, {4, 8}, {8, 10}}},
		{3, 8, [][2]int{{0, 1}, {1, 2}, {2, 3}}},
	}
	for _, tt := range tests {
		got := splitRanges(tt.n, tt.workers)
		if len(got) != len(tt.want) {
			t.Errorf("splitRanges(%d, %d) = %v, want %v", tt.n, tt.workers, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitRanges(%d, %d) = %v, want %v", tt.n, tt.workers, got, tt.want)
				break
			}
		}
	}
}

func TestParallelEach_CoversEveryIndexOnce(t *testing.T) {
	for _, n := range []int{0, 1, 9, 64} {
		for _, workers := range []int{0, 1, 3, 16} {
			hits := make([]int32, n)
			parallelEach(n, workers, func(start, end int) {
				for i := start; i < end; i++ {
					atomic.AddInt32(&hits[i], 1)
				}
			})
			for i, h := range hits {
				if h != 1 {
					t.Errorf("n=%d workers=%d: index %d visited %d times", n, workers, i, h)
				}
			}
		}
	}
}

func sinePositions(n, dims int) []*Position {
	positions := make([]*Position, n)
	for i := range positions {
		comps := make([]float64, dims)
		for d := range comps {
			comps[d] = math.Sin(float64(i*dims+d) * 0.7)
		}
		positions[i] = NewPosition(positionID(i), comps)
	}
	return positions
}

func TestAgglomerativeParallel_BitwiseIdentical(t *testing.T) {
	positions := sinePositions(30, 3)

	cfg := DefaultConfig()
	cfg.Workers = 1
	sequential, err := ClusterAgglomerative(positions, cfg)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}

	for _, workers := range []int{2, 4, 7} {
		cfg.Workers = workers
		parallel, err := ClusterAgglomerative(positions, cfg)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if len(parallel.Merges) != len(sequential.Merges) {
			t.Fatalf("workers=%d: %d merges, expected %d", workers, len(parallel.Merges), len(sequential.Merges))
		}
		for i := range sequential.Merges {
			if parallel.Merges[i] != sequential.Merges[i] {
				t.Errorf("workers=%d: merge %d = %+v, expected %+v",
					workers, i, parallel.Merges[i], sequential.Merges[i])
			}
		}
		if parallel.Root.ID() != sequential.Root.ID() {
			t.Errorf("workers=%d: root id differs", workers)
		}
	}
}

func TestKMeansParallel_BitwiseIdentical(t *testing.T) {
	positions := sinePositions(60, 2)

	cfg := DefaultConfig()
	cfg.InitTrials = 10
	cfg.Workers = 1
	sequential, err := ClusterKMeans(positions, cfg)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}

	for _, workers := range []int{2, 4, 7} {
		cfg.Workers = workers
		parallel, err := ClusterKMeans(positions, cfg)
		if err != nil {
			t.Fatalf("workers=%d: %v", workers, err)
		}
		if parallel.K != sequential.K {
			t.Fatalf("workers=%d: K=%d, expected %d", workers, parallel.K, sequential.K)
		}
		for i := range sequential.Assignments {
			if parallel.Assignments[i] != sequential.Assignments[i] {
				t.Errorf("workers=%d: assignment[%d] = %d, expected %d",
					workers, i, parallel.Assignments[i], sequential.Assignments[i])
			}
		}
		for c := range sequential.Centroids {
			want := sequential.Centroids[c].Location().Components()
			got := parallel.Centroids[c].Location().Components()
			for d := range want {
				if got[d] != want[d] {
					t.Errorf("workers=%d: centroid %d component %d = %v, expected %v (bitwise)",
						workers, c, d, got[d], want[d])
				}
			}
		}
	}
}
