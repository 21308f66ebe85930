package routing

import (
	"time"
)

// MatchType tells how a registration was found for a path.
type MatchType int

const (
	// MatchNone means that no registration accepted the path.
	MatchNone MatchType = iota

	// MatchLiteral means that the path equals a literal registration.
	MatchLiteral

	// MatchWildcard means that the path was accepted by the most
	// specific wildcard registration.
	MatchWildcard

	// MatchDefault is not returned by the generation itself. It is
	// reported by callers that fall back to the default registration.
	MatchDefault
)

func (t MatchType) String() string {
	switch t {
	case MatchLiteral:
		return "literal"
	case MatchWildcard:
		return "wildcard"
	case MatchDefault:
		return "default"
	default:
		return "none"
	}
}

// Match is the result of looking up a path.
type Match struct {
	Registration *Registration
	Type         MatchType

	// Score is the accumulated specificity of a wildcard match.
	Score int
}

// Generation is an immutable snapshot of the routing structures built
// from one complete registration set. It is safe for concurrent use.
type Generation struct {
	literals      map[string]*Registration
	nodes         []node
	defaultReg    *Registration
	wildcards     int
	fingerprint   uint64
	created       time.Time
	registrations []*Registration
}

// Build creates a new generation from the registrations, in their
// order. Literal registrations with the same pattern overwrite each
// other, the last one wins. The first registration eligible for the
// default slot is taken, the rest of them are ignored.
func Build(registrations []*Registration) *Generation {
	g := &Generation{
		literals:      make(map[string]*Registration),
		created:       time.Now(),
		registrations: registrations,
		fingerprint:   fingerprint(registrations),
	}

	var wildcards []*Registration
	for _, r := range registrations {
		p := r.compile()
		switch {
		case p.IsDefault():
			if g.defaultReg == nil {
				g.defaultReg = r
			}
		case p.IsWildcard():
			wildcards = append(wildcards, r)
		default:
			g.literals[r.Pattern] = r
		}
	}

	g.nodes = buildGraph(wildcards)
	g.wildcards = len(wildcards)
	return g
}

// Resolve returns the registration matching path. Literal registrations
// always take precedence. Otherwise the most specific wildcard
// registration is returned. When nothing matches, it returns false. The
// default registration is never returned by Resolve, see Default.
func (g *Generation) Resolve(path string) (*Registration, bool) {
	m := g.Match(path)
	return m.Registration, m.Type != MatchNone
}

// Match looks up path like Resolve, and tells how the registration was
// found.
func (g *Generation) Match(path string) Match {
	if r, ok := g.literals[path]; ok {
		return Match{Registration: r, Type: MatchLiteral}
	}

	scores := make(map[int]int)
	var order []int
	var walk func(int, int)
	walk = func(at, depth int) {
		for _, c := range g.nodes[at].children {
			if !g.nodes[c].pattern.Match(path) {
				continue
			}

			if _, visited := scores[c]; !visited {
				order = append(order, c)
			}

			scores[c] += depth
			walk(c, depth+1)
		}
	}

	walk(rootIndex, 1)
	if len(order) == 0 {
		return Match{}
	}

	best := order[0]
	for _, i := range order[1:] {
		if scores[i] > scores[best] {
			best = i
		}
	}

	return Match{
		Registration: g.nodes[best].registration,
		Type:         MatchWildcard,
		Score:        scores[best],
	}
}

// Default returns the default registration of the generation, if any.
func (g *Generation) Default() (*Registration, bool) {
	return g.defaultReg, g.defaultReg != nil
}

// Registrations returns the complete registration set that the
// generation was built from. The returned slice must not be modified.
func (g *Generation) Registrations() []*Registration {
	return g.registrations
}

// Created returns the time when the generation was built.
func (g *Generation) Created() time.Time { return g.created }

// Stats returns the number of registrations in the literal index, the
// containment graph, and the default slot.
func (g *Generation) Stats() (literals, wildcards, defaults int) {
	literals = len(g.literals)
	wildcards = g.wildcards
	if g.defaultReg != nil {
		defaults = 1
	}

	return
}
