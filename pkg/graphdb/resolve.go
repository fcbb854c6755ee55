/*
# Module: pkg/graphdb/resolve.go
Pattern resolver: lazy binding sequences over a Graph.

Implements the 8-way shape dispatch over (subject, predicate, object)
bound/unbound slots using Go 1.23 range-over-func iterators
(iter.Seq[Row]) so query joins can consume bindings one row at a time
instead of materializing a full result set, a lazy producer the
planner can short-circuit.

## Linked Modules
- [graph](./graph.go) - Graph and its three index rotations
- [transitive](./transitive.go) - Transitive-predicate resolution

## Tags
graphdb, resolve, iterator, pattern-matching

## Exports
Row, Graph.Resolve

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#resolve.go> a code:Module ;
    code:name "pkg/graphdb/resolve.go" ;
    code:description "Pattern resolver: lazy binding sequences over a Graph" ;
    code:tags "graphdb", "resolve", "iterator", "pattern-matching" .
<!-- End LinkedDoc RDF -->
*/

package graphdb

import (
	"iter"

	"github.com/justin4957/graphfs/internal/store"
)

// Row is one binding: one value per wildcard slot, in the order those
// slots appeared in the pattern (s, then p, then o).
type Row = []store.Value

// Resolve matches the pattern (s, p, o) against g, where each slot is
// either a literal value or store.Blank (a wildcard). It returns a lazy
// sequence of Rows; a missing intermediate index level simply yields no
// rows rather than an error. On a multi graph, a leaf with Count>1
// yields Count identical rows, so callers that only count bindings get
// the right cardinality without special-casing the flavor.
func (g Graph) Resolve(s, p, o store.Value) iter.Seq[Row] {
	sW, pW, oW := store.IsWildcard(s), store.IsWildcard(p), store.IsWildcard(o)

	switch {
	case !sW && !pW && !oW:
		return g.resolveVVV(s, p, o)
	case !sW && !pW && oW:
		return g.resolveVVQ(s, p)
	case !sW && pW && !oW:
		return g.resolveVQV(s, o)
	case !sW && pW && oW:
		return g.resolveVQQ(s)
	case sW && !pW && !oW:
		return g.resolveQVV(p, o)
	case sW && !pW && oW:
		return g.resolveQVQ(p)
	case sW && pW && !oW:
		return g.resolveQQV(o)
	default:
		return g.resolveQQQ()
	}
}

func (g Graph) repeat(yield func(Row) bool, m store.Meta, row Row) bool {
	n := 1
	if g.kind == KindMulti {
		n = m.Count
	}
	for i := 0; i < n; i++ {
		if !yield(row) {
			return false
		}
	}
	return true
}

func (g Graph) resolveVVV(s, p, o store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		m, ok := g.spo.Lookup(s, p, o)
		if !ok {
			return
		}
		g.repeat(yield, m, Row{})
	}
}

func (g Graph) resolveVVQ(s, p store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l2, ok := g.spo.Level2(s, p)
		if !ok {
			return
		}
		for o, m := range l2 {
			if !g.repeat(yield, m, Row{o}) {
				return
			}
		}
	}
}

func (g Graph) resolveVQV(s, o store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l2, ok := g.osp.Level2(o, s)
		if !ok {
			return
		}
		for p, m := range l2 {
			if !g.repeat(yield, m, Row{p}) {
				return
			}
		}
	}
}

func (g Graph) resolveVQQ(s store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l1, ok := g.spo.Level1(s)
		if !ok {
			return
		}
		for p, l2 := range l1 {
			for o, m := range l2 {
				if !g.repeat(yield, m, Row{p, o}) {
					return
				}
			}
		}
	}
}

func (g Graph) resolveQVV(p, o store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l2, ok := g.pos.Level2(p, o)
		if !ok {
			return
		}
		for s, m := range l2 {
			if !g.repeat(yield, m, Row{s}) {
				return
			}
		}
	}
}

func (g Graph) resolveQVQ(p store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l1, ok := g.pos.Level1(p)
		if !ok {
			return
		}
		for o, l2 := range l1 {
			for s, m := range l2 {
				if !g.repeat(yield, m, Row{s, o}) {
					return
				}
			}
		}
	}
}

func (g Graph) resolveQQV(o store.Value) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		l1, ok := g.osp.Level1(o)
		if !ok {
			return
		}
		for s, l2 := range l1 {
			for p, m := range l2 {
				if !g.repeat(yield, m, Row{s, p}) {
					return
				}
			}
		}
	}
}

func (g Graph) resolveQQQ() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for s, l1 := range g.spo.Roots() {
			for p, l2 := range l1 {
				for o, m := range l2 {
					if !g.repeat(yield, m, Row{s, p, o}) {
						return
					}
				}
			}
		}
	}
}
