/*
# Module: pkg/query/planner.go
Selectivity-based clause reordering.

Reorders a Query's where clauses so the most constrained Pattern runs
first (selectivity = count_triple on its constant slots, ties broken by
original order) and places Not/Filter/Bind/Or only once their free
variables are already bound. `planner: :user` (Query.UserPlanner)
disables all of this and executes clauses exactly as written.

## Linked Modules
- [query](./query.go) - Clause/Pattern/Query types
- [../graphdb](../graphdb/graph.go) - CountTriple selectivity source

## Tags
query, planner, selectivity

## Exports
Plan

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#planner.go> a code:Module ;
    code:name "pkg/query/planner.go" ;
    code:description "Selectivity-based clause reordering" ;
    code:tags "query", "planner", "selectivity" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"sort"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

// Plan returns where reordered for execution: constrained patterns
// first, then every other clause kind inserted as soon as its free
// variables are satisfied by the patterns placed so far.
func Plan(g graphdb.Graph, where []Clause, userPlanner bool) []Clause {
	if userPlanner {
		return where
	}

	var patterns []Clause
	var rest []Clause
	for _, c := range where {
		if _, ok := c.(Pattern); ok {
			patterns = append(patterns, c)
		} else {
			rest = append(rest, c)
		}
	}

	sort.SliceStable(patterns, func(i, j int) bool {
		return selectivity(g, patterns[i].(Pattern)) < selectivity(g, patterns[j].(Pattern))
	})

	bound := map[Variable]bool{}
	ordered := make([]Clause, 0, len(where))
	pending := append([]Clause{}, rest...)

	placePending := func() {
		remaining := pending[:0]
		for _, c := range pending {
			if subset(freeVars(c), bound) {
				ordered = append(ordered, c)
			} else {
				remaining = append(remaining, c)
			}
		}
		pending = remaining
	}

	placePending()
	for _, c := range patterns {
		ordered = append(ordered, c)
		for _, v := range patternVars(c.(Pattern)) {
			bound[v] = true
		}
		placePending()
	}
	// Anything never satisfied (e.g. a Filter over a variable that only
	// a Bind introduces)
	// still runs, in original relative order, at the end.
	ordered = append(ordered, pending...)
	return ordered
}

func subset(vars []Variable, bound map[Variable]bool) bool {
	for _, v := range vars {
		if !bound[v] {
			return false
		}
	}
	return true
}

func selectivity(g graphdb.Graph, p Pattern) int {
	if kw, ok := literalKeyword(p.P); ok {
		if _, _, tagged := transitivity(kw); tagged {
			_, sVar := p.S.(Variable)
			_, oVar := p.O.(Variable)
			if sVar && oVar {
				return g.TransitiveCountEstimate()
			}
		}
	}
	s := termToValue(p.S)
	pr := termToValue(p.P)
	o := termToValue(p.O)
	return g.CountTriple(s, pr, o)
}

// termToValue resolves a pattern slot to a value suitable for
// CountTriple: literals pass through, variables and the wildcard both
// become store.Blank since neither constrains the estimate.
func termToValue(t Term) store.Value {
	if _, ok := t.(Variable); ok {
		return store.Blank
	}
	return t
}

func patternVars(p Pattern) []Variable {
	var out []Variable
	for _, t := range []Term{p.S, p.P, p.O} {
		if v, ok := t.(Variable); ok {
			out = append(out, v)
		}
	}
	return out
}

func freeVars(c Clause) []Variable {
	switch cl := c.(type) {
	case Pattern:
		return patternVars(cl)
	case Not:
		seen := map[Variable]bool{}
		var out []Variable
		for _, sub := range cl.Clauses {
			for _, v := range freeVars(sub) {
				if !seen[v] {
					seen[v] = true
					out = append(out, v)
				}
			}
		}
		return out
	case Or:
		seen := map[Variable]bool{}
		var out []Variable
		for _, branch := range cl.Branches {
			for _, sub := range branch {
				for _, v := range freeVars(sub) {
					if !seen[v] {
						seen[v] = true
						out = append(out, v)
					}
				}
			}
		}
		return out
	case Filter:
		return exprVars(cl.Expr)
	case Bind:
		return exprVars(cl.Expr)
	default:
		return nil
	}
}

func exprVars(e Expr) []Variable {
	switch ex := e.(type) {
	case VarRef:
		return []Variable{ex.Name}
	case App:
		var out []Variable
		for _, a := range ex.Args {
			out = append(out, exprVars(a)...)
		}
		return out
	default:
		return nil
	}
}
