package clustering

// UnionFind is a disjoint-set structure over dendrogram node ids: leaves
// 0..n-1 and merged clusters n..2n-2. Merging two sets creates the next
// merged-cluster id as their common root, so Find(leaf) always names the
// dendrogram node the leaf currently belongs to.
type UnionFind struct {
	parent []int
	size   []int
	// nextLabel is the ID for the next merged cluster, starting at n.
	nextLabel int
}

// NewUnionFind creates a UnionFind for n leaves with room for n-1 merges.
func NewUnionFind(n int) *UnionFind {
	total := 2*n - 1
	if total < 1 {
		total = 1
	}
	parent := make([]int, total)
	size := make([]int, total)
	for i := range parent {
		parent[i] = -1 // -1 means "is a root"
	}
	for i := 0; i < n; i++ {
		size[i] = 1
	}
	return &UnionFind{
		parent:    parent,
		size:      size,
		nextLabel: n,
	}
}

// Find returns the root of the set containing x, with path compression.
func (uf *UnionFind) Find(x int) int {
	root := x
	for uf.parent[root] != -1 {
		root = uf.parent[root]
	}
	for uf.parent[x] != -1 {
		x, uf.parent[x] = uf.parent[x], root
	}
	return root
}

// Merge joins the sets containing x and y under a new merged-cluster id and
// returns that id. Merging elements already in the same set returns their
// root unchanged.
func (uf *UnionFind) Merge(x, y int) int {
	rootX := uf.Find(x)
	rootY := uf.Find(y)
	if rootX == rootY {
		return rootX
	}

	label := uf.nextLabel
	uf.size[label] = uf.size[rootX] + uf.size[rootY]
	uf.parent[rootX] = label
	uf.parent[rootY] = label
	uf.nextLabel++
	return label
}

// Size returns the number of leaves in the set rooted at root.
func (uf *UnionFind) Size(root int) int { return uf.size[root] }
