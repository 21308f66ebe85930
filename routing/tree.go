package routing

import (
	"fmt"
	"sort"
	"strings"
)

type vizNode struct {
	pattern   string
	contentId string
	children  []*vizNode
}

// makeVizTree turns the arena into a tree for printing. Nodes with
// multiple parents appear under each of them.
func (g *Generation) makeVizTree() *vizNode {
	return g.aggregateTree(rootIndex)
}

func (g *Generation) aggregateTree(at int) *vizNode {
	n := &g.nodes[at]
	v := &vizNode{}
	if n.registration != nil {
		v.pattern = n.registration.Pattern
		v.contentId = n.registration.ContentId
	}

	for _, c := range n.children {
		v.children = append(v.children, g.aggregateTree(c))
	}

	return v
}

func (v *vizNode) write(sb *strings.Builder, depth int) {
	for _, c := range v.children {
		fmt.Fprintf(sb, "%s%s -> %s\n", strings.Repeat("  ", depth), c.pattern, c.contentId)
		c.write(sb, depth+1)
	}
}

// Tree renders the generation in a human readable form: the literal
// index in lexical order, the containment graph with the narrower
// registrations indented below the broader ones, and the default slot.
func (g *Generation) Tree() string {
	var sb strings.Builder

	keys := make([]string, 0, len(g.literals))
	for k := range g.literals {
		keys = append(keys, k)
	}

	sort.Strings(keys)
	sb.WriteString("literals:\n")
	for _, k := range keys {
		fmt.Fprintf(&sb, "  %s -> %s\n", k, g.literals[k].ContentId)
	}

	sb.WriteString("wildcards:\n")
	g.makeVizTree().write(&sb, 1)

	sb.WriteString("default:")
	if g.defaultReg != nil {
		fmt.Fprintf(&sb, " %s", g.defaultReg.ContentId)
	}

	sb.WriteString("\n")
	return sb.String()
}
