package routing

import (
	"slices"

	"github.com/zalando/storefront/pattern"
)

// the synthetic root of the containment graph is always the first
// entry in the arena.
const rootIndex = 0

// node in the containment graph. Children are indices into the arena
// of the generation, and a node can be the child of more than one
// parent.
type node struct {
	pattern      *pattern.Pattern
	registration *Registration
	children     []int
}

type graphBuilder struct {
	nodes []node
	seen  []int
}

func (n *node) hasChild(i int) bool {
	return slices.Contains(n.children, i)
}

// buildGraph constructs the containment graph from the wildcard
// registrations in their registration order. An edge from A to B means
// that the matcher of A accepts the pattern text of B, i.e. A is
// broader than B.
func buildGraph(wildcards []*Registration) []node {
	b := &graphBuilder{nodes: make([]node, 1, len(wildcards)+1)}
	for _, r := range wildcards {
		b.nodes = append(b.nodes, node{pattern: r.compile(), registration: r})
		i := len(b.nodes) - 1
		b.insert(i, rootIndex)
		b.backfill(i)
		b.seen = append(b.seen, i)
	}

	return b.nodes
}

// insert places the node i below the node at. When an existing branch
// accepts the new pattern, the node descends into that branch. When the
// new pattern accepts an existing branch, the branch is moved below the
// new node. When both hold, the branch examined first wins.
func (b *graphBuilder) insert(i, at int) {
	n := &b.nodes[i]
	branches := b.nodes[at].children
	kept := make([]int, 0, len(branches))
	child := true
	for _, bi := range branches {
		branch := &b.nodes[bi]
		if bi == i || branch.pattern.Raw() == n.pattern.Raw() {
			kept = append(kept, bi)
			continue
		}

		if branch.pattern.Contains(n.pattern) {
			b.insert(i, bi)
			child = false
			kept = append(kept, bi)
			continue
		}

		if n.pattern.Contains(branch.pattern) {
			if !n.hasChild(bi) {
				n.children = append(n.children, bi)
			}

			continue
		}

		kept = append(kept, bi)
	}

	if child && !slices.Contains(kept, i) {
		kept = append(kept, i)
	}

	b.nodes[at].children = kept
}

// backfill adds every previously inserted node that the new pattern
// accepts as an additional child of the new node. Nodes that the new
// node already descends from are skipped, to keep the graph acyclic.
func (b *graphBuilder) backfill(i int) {
	for _, si := range b.seen {
		n := &b.nodes[i]
		if n.hasChild(si) || !n.pattern.Contains(b.nodes[si].pattern) {
			continue
		}

		if b.reaches(si, i) {
			continue
		}

		n.children = append(n.children, si)
	}
}

// reaches tells whether to can be found below from.
func (b *graphBuilder) reaches(from, to int) bool {
	visited := make(map[int]bool)
	var walk func(int) bool
	walk = func(at int) bool {
		if at == to {
			return true
		}

		if visited[at] {
			return false
		}

		visited[at] = true
		for _, c := range b.nodes[at].children {
			if walk(c) {
				return true
			}
		}

		return false
	}

	return walk(from)
}
