/*
# Module: pkg/graphdb/transitive.go
Transitive closure resolution for `+`/`*`-tagged predicates.

A predicate tagged transitive supports two variants: reflexive closure
(includes the zero-hop s==o binding) and one-or-more-hop closure. Both
walk the graph with a breadth-first search guarded by a visited set, so
cycles terminate rather than loop forever.

## Linked Modules
- [graph](./graph.go) - Graph and its three index rotations
- [resolve](./resolve.go) - Non-transitive pattern resolution

## Tags
graphdb, transitive, closure, bfs

## Exports
Transitivity, TransitiveReachable, TransitivePath, TransitiveFrom

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#transitive.go> a code:Module ;
    code:name "pkg/graphdb/transitive.go" ;
    code:description "Transitive closure resolution for +/*-tagged predicates" ;
    code:tags "graphdb", "transitive", "closure", "bfs" .
<!-- End LinkedDoc RDF -->
*/

package graphdb

import (
	"iter"

	"github.com/justin4957/graphfs/internal/store"
)

// Transitivity tags how a predicate's closure should be walked.
type Transitivity int

const (
	// Plus is one-or-more-hop closure: the zero-hop s==o binding is
	// never emitted even if a self-loop exists.
	Plus Transitivity = iota
	// Star is reflexive closure: s==o is always a valid zero-hop match.
	Star
)

// TransitivePath reports whether a path from s to o exists along p,
// honoring Star's zero-hop reflexivity. Used for the (V, p+/*, V) shape.
func (g Graph) TransitivePath(s, p, o store.Value, t Transitivity) bool {
	if t == Star && s == o {
		return true
	}
	visited := map[store.Value]bool{s: true}
	frontier := []store.Value{s}
	for len(frontier) > 0 {
		var next []store.Value
		for _, cur := range frontier {
			l2, ok := g.spo.Level2(cur, p)
			if !ok {
				continue
			}
			for succ := range l2 {
				if succ == o {
					return true
				}
				if !visited[succ] {
					visited[succ] = true
					next = append(next, succ)
				}
			}
		}
		frontier = next
	}
	return false
}

// TransitiveReachable walks forward from s along p, emitting each
// reached node exactly once. With Star it emits s first as the zero-hop
// binding. Used for the (V, p+/*, ?) shapes.
func (g Graph) TransitiveReachable(s, p store.Value, t Transitivity) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		visited := map[store.Value]bool{s: true}
		if t == Star {
			if !yield(Row{s}) {
				return
			}
		}
		frontier := []store.Value{s}
		for len(frontier) > 0 {
			var next []store.Value
			for _, cur := range frontier {
				l2, ok := g.spo.Level2(cur, p)
				if !ok {
					continue
				}
				for succ := range l2 {
					if visited[succ] {
						continue
					}
					visited[succ] = true
					if !yield(Row{succ}) {
						return
					}
					next = append(next, succ)
				}
			}
			frontier = next
		}
	}
}

// TransitiveFrom walks backward from o along p via POS, the symmetric
// counterpart to TransitiveReachable for the (?, p+/*, V) shapes.
// POS is keyed [p][o][s], so POS[p][cur] yields exactly the subjects s
// such that (s, p, cur) holds.
func (g Graph) TransitiveFrom(p, o store.Value, t Transitivity) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		visited := map[store.Value]bool{o: true}
		if t == Star {
			if !yield(Row{o}) {
				return
			}
		}
		frontier := []store.Value{o}
		for len(frontier) > 0 {
			var next []store.Value
			for _, cur := range frontier {
				l2, ok := g.pos.Level2(p, cur)
				if !ok {
					continue
				}
				for pred := range l2 {
					if visited[pred] {
						continue
					}
					visited[pred] = true
					if !yield(Row{pred}) {
						return
					}
					next = append(next, pred)
				}
			}
			frontier = next
		}
	}
}

// TransitiveCountEstimate returns the upper-bound cardinality estimate
// |SPO| * |OSP| the planner uses for the (?, p+/*, ?) shape, which spec
// leaves unmeaningful to resolve exactly: it exists purely to give the
// query planner a selectivity number to order joins by.
func (g Graph) TransitiveCountEstimate() int {
	return len(g.spo.Roots()) * len(g.osp.Roots())
}
