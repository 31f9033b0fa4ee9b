package clustering

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Position is an immutable named point in fixed-dimensional real space.
type Position struct {
	id         string
	components []float64
}

// NewPosition returns a Position with the given id. The components are
// copied, so later changes to the caller's slice do not affect it.
func NewPosition(id string, components []float64) *Position {
	c := make([]float64, len(components))
	copy(c, components)
	return &Position{id: id, components: c}
}

// ID returns the position's identifier.
func (p *Position) ID() string { return p.id }

// Components returns the coordinate vector. The slice is shared with the
// Position and must not be modified.
func (p *Position) Components() []float64 { return p.components }

// Dims returns the dimensionality of the position.
func (p *Position) Dims() int { return len(p.components) }

func (p *Position) String() string {
	return p.id + " " + FormatComponents(p.components)
}

// Distance returns the Euclidean distance between a and b. It fails with
// ErrIncomparableDimensions if either is nil or their dimensionality differs.
func Distance(a, b *Position) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a.components, b.components, 2), nil
}

// SquaredDistance returns the squared Euclidean distance between a and b,
// with the same failure modes as Distance.
func SquaredDistance(a, b *Position) (float64, error) {
	if err := checkComparable(a, b); err != nil {
		return 0, err
	}
	return euclideanSumOfSquares(a.components, b.components), nil
}

func checkComparable(a, b *Position) error {
	if a == nil || b == nil {
		return fmt.Errorf("%w: nil position", ErrIncomparableDimensions)
	}
	if len(a.components) != len(b.components) {
		return fmt.Errorf("%w: %q has %d components, %q has %d",
			ErrIncomparableDimensions, a.id, len(a.components), b.id, len(b.components))
	}
	return nil
}

func euclideanSumOfSquares(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// checkDimensions verifies that every position is non-nil and shares the
// dimensionality of the first.
func checkDimensions(positions []*Position) error {
	if len(positions) == 0 {
		return nil
	}
	for i, p := range positions {
		if p == nil {
			return fmt.Errorf("%w: position %d is nil", ErrIncomparableDimensions, i)
		}
		if p.Dims() != positions[0].Dims() {
			return fmt.Errorf("%w: position %q has %d components, expected %d",
				ErrIncomparableDimensions, p.id, p.Dims(), positions[0].Dims())
		}
	}
	return nil
}

// checkFinite verifies that no position has a NaN or infinite component.
func checkFinite(positions []*Position) error {
	for _, p := range positions {
		for d, v := range p.components {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: position %q component %d is %s",
					ErrIncomparableDimensions, p.id, d, formatComponent(v))
			}
		}
	}
	return nil
}

// runningMean accumulates a componentwise mean incrementally. Adding the same
// vector repeatedly leaves the mean bitwise equal to that vector.
type runningMean struct {
	mean []float64
	diff []float64
	n    int
}

func newRunningMean(dims int) *runningMean {
	return &runningMean{mean: make([]float64, dims), diff: make([]float64, dims)}
}

func (m *runningMean) add(x []float64) {
	m.n++
	floats.SubTo(m.diff, x, m.mean)
	floats.AddScaled(m.mean, 1/float64(m.n), m.diff)
}
