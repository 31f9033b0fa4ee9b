package clustering

import (
	"errors"
	"math"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"
)

func positionID(i int) string { return "p" + strconv.Itoa(i) }

// recordingObserver captures every callback for inspection.
type recordingObserver struct {
	mu           sync.Mutex
	runs         []error
	merges       []int
	computed     int
	incomparable int
	candidates   []KCandidate
	iterations   int
}

func (o *recordingObserver) OnRun(_ Algorithm, _ int, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.runs = append(o.runs, err)
}

func (o *recordingObserver) OnMerge(height int, _ float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.merges = append(o.merges, height)
}

func (o *recordingObserver) OnDistances(computed, incomparable int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.computed += computed
	o.incomparable += incomparable
}

func (o *recordingObserver) OnKCandidate(k int, score float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.candidates = append(o.candidates, KCandidate{K: k, Score: score})
}

func (o *recordingObserver) OnIteration(int, int, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.iterations++
}

func memberIDs(c *Centroid) []string {
	var ids []string
	for _, p := range c.Assigned() {
		ids = append(ids, p.ID())
	}
	return ids
}

func TestAgglomerative_TwoPositions(t *testing.T) {
	positions := []*Position{
		NewPosition("1", []float64{1.0}),
		NewPosition("2", []float64{2.0}),
	}
	res, err := ClusterAgglomerative(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Merges) != 1 {
		t.Fatalf("expected 1 merge, got %d", len(res.Merges))
	}
	want := Merge{Height: 1, A: 0, B: 1, Node: 2, Distance: 1.0}
	if res.Merges[0] != want {
		t.Errorf("merge = %+v, want %+v", res.Merges[0], want)
	}
	if res.Root.ID() != "1::2" {
		t.Errorf("root id = %q, want 1::2", res.Root.ID())
	}
	if res.Root.Size() != 2 {
		t.Errorf("root size = %d, want 2", res.Root.Size())
	}
	if got := res.Root.Location().Components(); !slices.Equal(got, []float64{1.0}) {
		t.Errorf("root location = %v, want [1]", got)
	}
}

func TestAgglomerative_HandTraced(t *testing.T) {
	res := fourPointTree(t)

	expected := []Merge{
		{Height: 1, A: 2, B: 3, Node: 4, Distance: 0.5},
		{Height: 2, A: 0, B: 1, Node: 5, Distance: 1.0},
		{Height: 3, A: 4, B: 5, Node: 6, Distance: 4.0},
	}
	if !slices.Equal(res.Merges, expected) {
		t.Errorf("merges = %+v, want %+v", res.Merges, expected)
	}
	if res.Root.ID() != "c::d::a::b" {
		t.Errorf("root id = %q, want c::d::a::b", res.Root.ID())
	}
	if res.Root.Location().ID() != "c" {
		t.Errorf("root location = %q, want c", res.Root.Location().ID())
	}
	if got := memberIDs(res.Root); !slices.Equal(got, []string{"c", "d", "a", "b"}) {
		t.Errorf("root members = %v, want [c d a b]", got)
	}
	if got := res.Clusters(); len(got) != 1 || got[0] != res.Root {
		t.Errorf("Clusters() = %v, want only the root", got)
	}
	if res.SkippedPairs != 0 {
		t.Errorf("SkippedPairs = %d, want 0", res.SkippedPairs)
	}
}

func TestAgglomerative_TiesPickFirstPair(t *testing.T) {
	positions := []*Position{
		NewPosition("a", []float64{0}),
		NewPosition("b", []float64{1}),
		NewPosition("c", []float64{2}),
	}
	res, err := ClusterAgglomerative(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Merges) != 2 {
		t.Fatalf("expected 2 merges, got %d", len(res.Merges))
	}
	if res.Merges[0].A != 0 || res.Merges[0].B != 1 {
		t.Errorf("first merge joined nodes %d and %d, want 0 and 1", res.Merges[0].A, res.Merges[0].B)
	}
	if res.Root.ID() != "c::a::b" {
		t.Errorf("root id = %q, want c::a::b", res.Root.ID())
	}
}

func TestAgglomerative_Properties(t *testing.T) {
	for _, n := range []int{2, 3, 10, 40} {
		positions := sinePositions(n, 3)
		res, err := ClusterAgglomerative(positions, DefaultConfig())
		if err != nil {
			t.Fatalf("n=%d: unexpected error: %v", n, err)
		}

		if len(res.Merges) != n-1 {
			t.Fatalf("n=%d: %d merges, want %d", n, len(res.Merges), n-1)
		}
		for i, m := range res.Merges {
			if m.Height != i+1 {
				t.Errorf("n=%d merge %d: height %d, want %d", n, i, m.Height, i+1)
			}
			if m.Node != n+i {
				t.Errorf("n=%d merge %d: node %d, want %d", n, i, m.Node, n+i)
			}
		}

		// The root holds every input position exactly once.
		seen := make(map[*Position]int)
		for _, p := range res.Root.Assigned() {
			seen[p]++
		}
		if len(seen) != n {
			t.Errorf("n=%d: root holds %d distinct positions", n, len(seen))
		}
		for _, p := range positions {
			if seen[p] != 1 {
				t.Errorf("n=%d: position %s held %d times", n, p.ID(), seen[p])
			}
		}
		if label := res.Tree.Label(res.Tree.Root()); label != res.Root.ID() {
			t.Errorf("n=%d: tree root label %q, root id %q", n, label, res.Root.ID())
		}
	}
}

func TestAgglomerative_SinglePosition(t *testing.T) {
	res, err := ClusterAgglomerative([]*Position{NewPosition("only", []float64{3, 4})}, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Merges) != 0 {
		t.Errorf("expected no merges, got %d", len(res.Merges))
	}
	if res.Root.ID() != "only" || res.Root.Size() != 1 {
		t.Errorf("root = %s (size %d), want only (size 1)", res.Root.ID(), res.Root.Size())
	}
}

func TestAgglomerative_Empty(t *testing.T) {
	_, err := ClusterAgglomerative(nil, DefaultConfig())
	if !errors.Is(err, ErrInsufficientData) {
		t.Errorf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAgglomerative_MixedDimensions(t *testing.T) {
	obs := &recordingObserver{}
	cfg := DefaultConfig()
	cfg.Observer = obs

	positions := []*Position{
		NewPosition("a", []float64{1, 2}),
		NewPosition("b", []float64{1}),
	}
	_, err := ClusterAgglomerative(positions, cfg)
	if !errors.Is(err, ErrIncomparableDimensions) {
		t.Errorf("expected ErrIncomparableDimensions, got %v", err)
	}
	// Rejected before any pair is scanned.
	if obs.computed != 0 {
		t.Errorf("computed %d distances, want 0", obs.computed)
	}
}

func TestAgglomerative_NaNPositionIsExcluded(t *testing.T) {
	obs := &recordingObserver{}
	cfg := DefaultConfig()
	cfg.Observer = obs

	positions := []*Position{
		NewPosition("nan", []float64{math.NaN()}),
		NewPosition("b", []float64{1}),
		NewPosition("c", []float64{2}),
	}
	_, err := ClusterAgglomerative(positions, cfg)
	if !errors.Is(err, ErrIncomparableDimensions) {
		t.Fatalf("expected ErrIncomparableDimensions, got %v", err)
	}

	// b and c merge first; nothing can reach the NaN position afterwards.
	if !slices.Equal(obs.merges, []int{1}) {
		t.Errorf("merges = %v, want [1]", obs.merges)
	}
	if obs.computed != 3 || obs.incomparable != 2 {
		t.Errorf("computed %d (incomparable %d), want 3 (2)", obs.computed, obs.incomparable)
	}
	if len(obs.runs) != 1 || !errors.Is(obs.runs[0], ErrIncomparableDimensions) {
		t.Errorf("runs = %v, want one ErrIncomparableDimensions", obs.runs)
	}
}

func TestAgglomerative_SkippedPairsCounted(t *testing.T) {
	// The two +Inf positions have a NaN distance to each other, but each is
	// an infinite, and therefore comparable, distance from the origin.
	positions := []*Position{
		NewPosition("inf1", []float64{math.Inf(1)}),
		NewPosition("inf2", []float64{math.Inf(1)}),
		NewPosition("origin", []float64{0}),
	}
	res, err := ClusterAgglomerative(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.SkippedPairs != 1 {
		t.Errorf("SkippedPairs = %d, want 1", res.SkippedPairs)
	}
	if len(res.Merges) != 2 {
		t.Fatalf("expected 2 merges, got %d", len(res.Merges))
	}
	if res.Merges[0].A != 0 || res.Merges[0].B != 2 {
		t.Errorf("first merge joined nodes %d and %d, want 0 and 2", res.Merges[0].A, res.Merges[0].B)
	}
	for _, m := range res.Merges {
		if !math.IsInf(m.Distance, 1) {
			t.Errorf("merge at height %d has distance %v, want +Inf", m.Height, m.Distance)
		}
	}
	if res.Root.ID() != "inf2::inf1::origin" {
		t.Errorf("root id = %q, want inf2::inf1::origin", res.Root.ID())
	}
}

func TestAgglomerative_IdenticalPositions(t *testing.T) {
	positions := make([]*Position, 6)
	for i := range positions {
		positions[i] = NewPosition(positionID(i), []float64{2.5, -1})
	}
	res, err := ClusterAgglomerative(positions, DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Merges) != 5 {
		t.Fatalf("expected 5 merges, got %d", len(res.Merges))
	}
	for _, m := range res.Merges {
		if m.Distance != 0 {
			t.Errorf("merge at height %d has distance %v, want 0", m.Height, m.Distance)
		}
	}
}

func TestAgglomerative_ObserverAndMemo(t *testing.T) {
	obs := &recordingObserver{}
	cfg := DefaultConfig()
	cfg.Observer = obs

	n := 12
	if _, err := ClusterAgglomerative(sinePositions(n, 2), cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(obs.merges) != n-1 {
		t.Errorf("observed %d merges, want %d", len(obs.merges), n-1)
	}
	// Every unordered pair is computed exactly once.
	if obs.computed != n*(n-1)/2 {
		t.Errorf("computed %d distances, want %d", obs.computed, n*(n-1)/2)
	}
	if obs.incomparable != 0 {
		t.Errorf("incomparable = %d, want 0", obs.incomparable)
	}
	if len(obs.runs) != 1 || obs.runs[0] != nil {
		t.Errorf("runs = %v, want one successful run", obs.runs)
	}
}

func TestAgglomerative_StartedAtUsesClock(t *testing.T) {
	when := time.Date(2026, 10, 17, 14, 30, 5, 0, time.UTC)
	cfg := DefaultConfig()
	cfg.Now = func() time.Time { return when }

	res, err := ClusterAgglomerative(sinePositions(3, 1), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.StartedAt.Equal(when) {
		t.Errorf("StartedAt = %v, want %v", res.StartedAt, when)
	}
}

func TestAgglomerative_ConcurrentRuns(t *testing.T) {
	a, err := NewAgglomerative(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	positions := sinePositions(20, 2)
	want, err := a.Run(positions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var wg sync.WaitGroup
	results := make([]*AgglomerativeResult, 4)
	for i := range results {
		wg.Go(func() {
			results[i], _ = a.Run(positions)
		})
	}
	wg.Wait()

	for i, r := range results {
		if r == nil {
			t.Fatalf("run %d returned no result", i)
		}
		if !slices.Equal(r.Merges, want.Merges) {
			t.Errorf("run %d: merges differ from the first run", i)
		}
	}
}

func TestDistanceMemo_CanonicalKey(t *testing.T) {
	positions := []*Position{
		NewPosition("a", []float64{0, 0}),
		NewPosition("b", []float64{3, 4}),
	}
	m := newDistanceMemo(positions)

	d1, ok1 := m.distance(0, 1)
	d2, ok2 := m.distance(1, 0)
	if !ok1 || !ok2 {
		t.Fatalf("pair reported incomparable")
	}
	if d1 != 5.0 || d2 != d1 {
		t.Errorf("distances = %v, %v, want 5, 5", d1, d2)
	}

	computed, incomparable := m.stats()
	if computed != 1 || incomparable != 0 {
		t.Errorf("stats = (%d, %d), want (1, 0)", computed, incomparable)
	}
	if newPairKey(0, 1) != newPairKey(1, 0) {
		t.Error("pair key depends on argument order")
	}
}
