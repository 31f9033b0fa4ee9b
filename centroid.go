package clustering

// Centroid is a named cluster: a representative location plus the positions
// assigned to it, in assignment order.
//
// A Centroid is not safe for concurrent mutation.
type Centroid struct {
	id       string
	location *Position
	assigned []*Position
}

// NewCentroid returns an empty centroid at location. Panics if location is nil.
func NewCentroid(id string, location *Position) *Centroid {
	if location == nil {
		panic("clustering: NewCentroid called with nil location")
	}
	return &Centroid{id: id, location: location}
}

// ID returns the centroid's identifier.
func (c *Centroid) ID() string { return c.id }

// Location returns the centroid's current location.
func (c *Centroid) Location() *Position { return c.location }

// Assigned returns the assigned positions in assignment order. The slice is
// shared with the centroid and must not be modified.
func (c *Centroid) Assigned() []*Position { return c.assigned }

// Size returns the number of assigned positions.
func (c *Centroid) Size() int { return len(c.assigned) }

// Assign appends p to the centroid. It reports false, and leaves the centroid
// unchanged, if p is nil or its dimensionality differs from the location's.
func (c *Centroid) Assign(p *Position) bool {
	if p == nil || p.Dims() != c.location.Dims() {
		return false
	}
	c.assigned = append(c.assigned, p)
	return true
}

// Clear removes every assigned position. The location is kept.
func (c *Centroid) Clear() {
	c.assigned = nil
}

// Recenter moves the location to the componentwise mean of the assigned
// positions. A centroid with no assigned positions keeps its location. The
// location keeps its id.
func (c *Centroid) Recenter() {
	if len(c.assigned) == 0 {
		return
	}
	m := newRunningMean(c.location.Dims())
	for _, p := range c.assigned {
		m.add(p.components)
	}
	c.location = &Position{id: c.location.id, components: m.mean}
}

func (c *Centroid) String() string {
	return c.id + " @ " + FormatComponents(c.location.components)
}
