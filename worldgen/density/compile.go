// Package density implements the density-function expression graph used by
// world generation: a deduplicated DAG of noise/arithmetic components,
// compiled into a flat topologically-ordered stack and sampled bottom-up.
package density

import (
	"github.com/cespare/xxhash/v2"
)

// CompiledGraph is a flattened, deduplicated density-function graph, ready
// for repeated sampling.
type CompiledGraph struct {
	nodes []compiledNode
	roots []int // indices into nodes, one per function the caller compiled
}

type compiledNode struct {
	node     Node
	children []int // indices into CompiledGraph.nodes, in this node's child order
}

// Compile flattens one or more root nodes into a single deduplicated graph.
// Structurally identical subtrees (same kind, same canonical fields, same
// children after dedup) collapse to one entry, matching the hash-canonical
// dedup strategy used by the original noise router.
func Compile(roots ...Node) *CompiledGraph {
	g := &CompiledGraph{}
	seen := make(map[uint64][]int) // hash -> candidate node indices (collision list)

	var visit func(n Node) int
	visit = func(n Node) int {
		childIdx := make([]int, 0)
		for _, c := range n.children() {
			if c == nil {
				childIdx = append(childIdx, -1)
				continue
			}
			childIdx = append(childIdx, visit(c))
		}

		h := canonicalHash(n, childIdx)
		for _, idx := range seen[h] {
			existing := g.nodes[idx]
			if sameShape(existing, n, childIdx) {
				return idx
			}
		}

		idx := len(g.nodes)
		g.nodes = append(g.nodes, compiledNode{node: n, children: childIdx})
		seen[h] = append(seen[h], idx)
		return idx
	}

	for _, r := range roots {
		g.roots = append(g.roots, visit(r))
	}
	return g
}

func canonicalHash(n Node, children []int) uint64 {
	h := xxhash.New()
	h.WriteString(n.kind())
	h.WriteString("|")
	h.WriteString(n.canonical())
	for _, c := range children {
		h.WriteString("|")
		h.WriteString(itoa(int64(c)))
	}
	return h.Sum64()
}

func sameShape(existing compiledNode, n Node, children []int) bool {
	if existing.node.kind() != n.kind() || existing.node.canonical() != n.canonical() {
		return false
	}
	if len(existing.children) != len(children) {
		return false
	}
	for i := range children {
		if existing.children[i] != children[i] {
			return false
		}
	}
	return true
}

// NodeCount returns how many distinct nodes the compiled graph retains after
// deduplication.
func (g *CompiledGraph) NodeCount() int { return len(g.nodes) }

// Root returns the compiled index of the i'th root passed to Compile.
func (g *CompiledGraph) Root(i int) int { return g.roots[i] }
