package clustering

import "fmt"

// MergeSeparator joins the display ids of two merged clusters.
const MergeSeparator = "::"

// DendrogramNode is one node of the merge tree. Leaves have Left and Right
// set to -1.
type DendrogramNode struct {
	Left, Right int

	// Height is the 1-based merge index that created the node; 0 for leaves.
	Height int

	// Distance is the single-link distance between the merged clusters.
	Distance float64

	// Size is the number of leaves under the node.
	Size int
}

// Dendrogram is the binary merge tree of an agglomerative run, stored as an
// arena: nodes 0..n-1 are the leaves in input order, and merge h (1-based)
// creates node n+h-1. Children always have smaller ids than their parent.
type Dendrogram struct {
	Nodes     []DendrogramNode
	positions []*Position
}

func newDendrogram(positions []*Position) *Dendrogram {
	n := len(positions)
	nodes := make([]DendrogramNode, n, max(2*n-1, 0))
	for i := range nodes {
		nodes[i] = DendrogramNode{Left: -1, Right: -1, Size: 1}
	}
	return &Dendrogram{Nodes: nodes, positions: positions}
}

func (d *Dendrogram) merge(a, b, height int, distance float64) int {
	d.Nodes = append(d.Nodes, DendrogramNode{
		Left:     a,
		Right:    b,
		Height:   height,
		Distance: distance,
		Size:     d.Nodes[a].Size + d.Nodes[b].Size,
	})
	return len(d.Nodes) - 1
}

// NumLeaves returns the number of input positions.
func (d *Dendrogram) NumLeaves() int { return len(d.positions) }

// Root returns the id of the last node created.
func (d *Dendrogram) Root() int { return len(d.Nodes) - 1 }

// IsLeaf reports whether node is a leaf.
func (d *Dendrogram) IsLeaf(node int) bool { return node < len(d.positions) }

// Position returns the position of a leaf node, or nil for merged nodes.
func (d *Dendrogram) Position(node int) *Position {
	if !d.IsLeaf(node) {
		return nil
	}
	return d.positions[node]
}

// Labels returns the display id of every node: the position id for leaves,
// and "A::B" built from the children's ids for merged nodes.
func (d *Dendrogram) Labels() []string {
	labels := make([]string, len(d.Nodes))
	for i, node := range d.Nodes {
		if d.IsLeaf(i) {
			labels[i] = d.positions[i].id
			continue
		}
		labels[i] = labels[node.Left] + MergeSeparator + labels[node.Right]
	}
	return labels
}

// Label returns the display id of a single node.
func (d *Dendrogram) Label(node int) string {
	if d.IsLeaf(node) {
		return d.positions[node].id
	}
	return d.Labels()[node]
}

// Members returns the leaf ids under node, left subtree first.
func (d *Dendrogram) Members(node int) []int {
	members := make([]int, 0, d.Nodes[node].Size)
	stack := []int{node}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if d.IsLeaf(top) {
			members = append(members, top)
			continue
		}
		// Push right first so the left subtree is visited first.
		stack = append(stack, d.Nodes[top].Right, d.Nodes[top].Left)
	}
	return members
}

// Linkage returns the merges in scipy linkage format: one row per merge,
// [left, right, distance, size], with merged cluster ids starting at n.
func (d *Dendrogram) Linkage() [][4]float64 {
	n := len(d.positions)
	if len(d.Nodes) <= n {
		return nil
	}
	rows := make([][4]float64, 0, len(d.Nodes)-n)
	for _, node := range d.Nodes[n:] {
		rows = append(rows, [4]float64{
			float64(node.Left), float64(node.Right), node.Distance, float64(node.Size),
		})
	}
	return rows
}

// Cut returns a flat clustering with k clusters, obtained by undoing the
// last k-1 merges. labels[i] is the cluster of position i; cluster numbers
// are assigned in order of first appearance.
func (d *Dendrogram) Cut(k int) ([]int, error) {
	n := len(d.positions)
	merges := len(d.Nodes) - n
	if k < 1 || k > n {
		return nil, fmt.Errorf("clustering: cut size must be in [1, %d], got %d", n, k)
	}
	if n-k > merges {
		return nil, fmt.Errorf("clustering: dendrogram has %d merges, cannot cut to %d clusters", merges, k)
	}

	uf := NewUnionFind(n)
	for _, node := range d.Nodes[n : n+(n-k)] {
		uf.Merge(node.Left, node.Right)
	}

	labels := make([]int, n)
	cluster := make(map[int]int, k)
	for i := range labels {
		root := uf.Find(i)
		c, ok := cluster[root]
		if !ok {
			c = len(cluster)
			cluster[root] = c
		}
		labels[i] = c
	}
	return labels, nil
}
