/*
# Module: pkg/graphdb/graph.go
Graph value: the triple store bundled with its statement counter.

An immutable value over three store.Index tries (SPO/POS/OSP), with
the two graph flavors ("simple", idempotent assertion, and "multi",
multiplicity-preserving) dispatched as a tagged Kind field rather than
separate types.

## Linked Modules
- [../../internal/store](../../internal/store/index.go) - Persistent indexes
- [resolve](./resolve.go) - Pattern resolution over this graph
- [../dberr](../dberr/dberr.go) - Error taxonomy

## Tags
graphdb, graph, triple-store, immutable

## Exports
Kind, Graph, New, Graph.Add, Graph.Delete, Graph.Transact, Graph.Diff,
Graph.CountTriple

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#graph.go> a code:Module ;
    code:name "pkg/graphdb/graph.go" ;
    code:description "Graph value: the triple store bundled with its statement counter" ;
    code:tags "graphdb", "graph", "triple-store", "immutable" .
<!-- End LinkedDoc RDF -->
*/

package graphdb

import (
	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
)

// Kind tags which multiplicity semantics a Graph follows.
type Kind int

const (
	// KindSimple: add is idempotent, resolve yields each match once.
	KindSimple Kind = iota
	// KindMulti: add increments count, resolve yields count copies.
	KindMulti
)

func (k Kind) String() string {
	if k == KindMulti {
		return "multi"
	}
	return "simple"
}

// Graph bundles the three index rotations plus the next statement id.
// It is an immutable value: every mutating method returns a new Graph
// sharing untouched index structure with its receiver.
type Graph struct {
	kind       Kind
	spo        store.Index
	pos        store.Index
	osp        store.Index
	nextStmtID uint64
}

// New returns an empty Graph of the given flavor.
func New(kind Kind) Graph {
	return Graph{
		kind:       kind,
		spo:        store.NewIndex(),
		pos:        store.NewIndex(),
		osp:        store.NewIndex(),
		nextStmtID: 1,
	}
}

// Kind reports the graph's multiplicity flavor.
func (g Graph) Kind() Kind { return g.kind }

// Add inserts (s, p, o) under transaction tx. On a simple graph,
// re-asserting an existing triple is a no-op (count stays 1, no new
// statement id is consumed). On a multi graph, re-asserting increments
// count and still consumes a statement id, though the leaf keeps the
// id of its first assertion.
func (g Graph) Add(s, p, o store.Value, tx int) Graph {
	if g.kind == KindSimple {
		if _, ok := g.spo.Lookup(s, p, o); ok {
			return g
		}
	}

	id := g.nextStmtID
	next := Graph{
		kind:       g.kind,
		spo:        g.spo.Add(s, p, o, tx, id),
		pos:        g.pos.Add(p, o, s, tx, id),
		osp:        g.osp.Add(o, s, p, tx, id),
		nextStmtID: id + 1,
	}
	return next
}

// Delete attempts to retract one assertion of (s, p, o). If the SPO
// index reports no change, the receiver is returned unmodified;
// otherwise the symmetric deletes on POS and OSP must also apply,
// since the three indexes are always kept in lock-step.
func (g Graph) Delete(s, p, o store.Value) Graph {
	newSPO, changed := g.spo.Delete(s, p, o)
	if !changed {
		return g
	}
	newPOS, _ := g.pos.Delete(p, o, s)
	newOSP, _ := g.osp.Delete(o, s, p)

	return Graph{
		kind:       g.kind,
		spo:        newSPO,
		pos:        newPOS,
		osp:        newOSP,
		nextStmtID: g.nextStmtID,
	}
}

// Transact folds Delete over retractions, then Add over assertions, so
// a statement retracted and reasserted in the same transaction ends up
// present.
func (g Graph) Transact(tx int, assertions, retractions []store.Triple) Graph {
	next := g
	for _, t := range retractions {
		next = next.Delete(t.S, t.P, t.O)
	}
	for _, t := range assertions {
		next = next.Add(t.S, t.P, t.O, tx)
	}
	return next
}

// Contains reports whether (s, p, o) is present, equivalent to testing
// presence directly in SPO.
func (g Graph) Contains(s, p, o store.Value) bool {
	_, ok := g.spo.Lookup(s, p, o)
	return ok
}

// Diff returns the set of subjects whose p->o submap differs between g
// and other. Fails with ErrIncompatibleGraphs if the flavors differ.
func (g Graph) Diff(other Graph) (map[store.Value]bool, error) {
	if g.kind != other.kind {
		return nil, dberr.ErrIncompatibleGraphs
	}

	diff := map[store.Value]bool{}
	for s, l1 := range g.spo.Roots() {
		otherL1, ok := other.spo.Level1(s)
		if !ok || !samePOMap(l1, otherL1) {
			diff[s] = true
		}
	}
	for s := range other.spo.Roots() {
		if diff[s] {
			continue
		}
		if _, ok := g.spo.Level1(s); !ok {
			diff[s] = true
		}
	}
	return diff, nil
}

// CountTriple returns the cardinality query callers should plan
// against: the number of bindings Resolve yields for the pattern,
// which already accounts for multi-edge duplication per graph flavor.
func (g Graph) CountTriple(s, p, o store.Value) int {
	count := 0
	for range g.Resolve(s, p, o) {
		count++
	}
	return count
}

// samePOMap compares two p->o submaps structurally, ignoring multi-edge
// metadata: only (p, o) presence matters for diff.
func samePOMap(a, b store.Level1) bool {
	if len(a) != len(b) {
		return false
	}
	for p, aOs := range a {
		bOs, ok := b[p]
		if !ok || len(aOs) != len(bOs) {
			return false
		}
		for o := range aOs {
			if _, ok := bOs[o]; !ok {
				return false
			}
		}
	}
	return true
}
