/*
Package routing resolves request paths to content registrations, and
keeps the resolution structures up to date from the registration
sources.

# Generations

A generation is built from one complete, ordered registration set, and
it is never modified afterwards. Every registration is placed in exactly
one of three structures:

- the literal index, for the patterns without a wildcard, looked up by
exact equality. Among literal registrations with the same pattern, the
last one wins.

- the default slot, for the first registration with the bare "*"
pattern that is not a landing page. The default registration is never
returned by the lookups, the callers may fall back to it.

- the containment graph, for every other pattern containing a wildcard.

# Containment Graph

A wildcard registration is broader than another one, when its pattern
accepts the raw pattern text of the other one. The graph stores the
narrower registrations below the broader ones, and a registration can
have more than one parent:

	/shop/*  ->  /shop/sale/*
	*y*      ->  /shop/y*
	/shop/*  ->  /shop/y*

When two patterns accept each other, the one registered first stays
above.

# Resolution

A path matching a literal registration always resolves to it. Otherwise
the graph is walked from the top, descending only into the nodes
accepting the path. Every visited node collects the depth at which it
was reached, summed over all the paths leading to it, and the node with
the highest score wins. Among equal scores, the one visited first wins.

# Updates

The Routing polls the data clients, merges their sets, and builds a new
generation whenever the merged set changes. Registrations with the same
id are merged, the later source wins and keeps the position of the
earlier one. A failing source keeps its last successfully loaded set.
The new generation replaces the current one atomically, and the lookups
are never blocked by an update.
*/
package routing
