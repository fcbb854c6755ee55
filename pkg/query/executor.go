/*
# Module: pkg/query/executor.go
Clause execution, joins, and result projection.

Folds the planned where-list over a set of binding rows: each Pattern
extends rows via graphdb.Graph.Resolve (dispatching to the transitive
resolver when the predicate carries a '+'/'*' tag), Not/Or recurse into
their own sub-plans, Filter/Bind consult the expr sandbox. A nested-loop
join over Go 1.23 range-over-func Resolve sequences, rather than
eagerly materialized triple slices.

## Linked Modules
- [query](./query.go) - Clause/Query/QueryResult types
- [planner](./planner.go) - Clause ordering
- [expr](./expr.go) - Bind/Filter evaluation
- [../graphdb](../graphdb/graph.go) - Resolve/transitive resolution

## Tags
query, executor, join

## Exports
Execute

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#executor.go> a code:Module ;
    code:name "pkg/query/executor.go" ;
    code:description "Clause execution, joins, and result projection" ;
    code:tags "query", "executor", "join" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"fmt"
	"strings"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

type row = map[Variable]store.Value

func cloneRow(r row) row {
	out := make(row, len(r)+1)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Execute plans and runs q against g. env supplies the ambient
// name->function environment for Bind/Filter; inputs are the
// positional values bound by q.In.
func Execute(g graphdb.Graph, q Query, env Env, inputs []store.Value) (*QueryResult, error) {
	rows, err := bindInputs(q.In, inputs)
	if err != nil {
		return nil, err
	}

	planned := Plan(g, q.Where, q.UserPlanner)
	rows, err = executeClauses(g, planned, rows, env)
	if err != nil {
		return nil, err
	}

	return project(q, rows)
}

func bindInputs(specs []InputSpec, inputs []store.Value) ([]row, error) {
	rows := []row{{}}
	idx := 0
	for _, spec := range specs {
		if idx >= len(inputs) {
			return nil, fmt.Errorf("query expects %d positional inputs, got %d", len(specs), len(inputs))
		}
		val := inputs[idx]
		idx++
		switch spec.Kind {
		case InputScalar:
			for _, r := range rows {
				r[spec.Names[0]] = val
			}
		case InputTuple:
			tuple, ok := val.([]store.Value)
			if !ok || len(tuple) != len(spec.Names) {
				return nil, fmt.Errorf("tuple input arity mismatch for %v", spec.Names)
			}
			for _, r := range rows {
				for i, n := range spec.Names {
					r[n] = tuple[i]
				}
			}
		case InputCollection:
			coll, ok := val.([]store.Value)
			if !ok {
				return nil, fmt.Errorf("collection input must be a slice for %v", spec.Names)
			}
			var out []row
			for _, r := range rows {
				for _, elem := range coll {
					nr := cloneRow(r)
					nr[spec.Names[0]] = elem
					out = append(out, nr)
				}
			}
			rows = out
		}
	}
	return rows, nil
}

func executeClauses(g graphdb.Graph, clauses []Clause, rows []row, env Env) ([]row, error) {
	for _, c := range clauses {
		var err error
		rows, err = executeClause(g, c, rows, env)
		if err != nil {
			return nil, err
		}
		if len(rows) == 0 {
			break
		}
	}
	return rows, nil
}

func executeClause(g graphdb.Graph, c Clause, rows []row, env Env) ([]row, error) {
	switch cl := c.(type) {
	case Pattern:
		var out []row
		for _, r := range rows {
			out = append(out, matchPattern(g, r, cl)...)
		}
		return out, nil
	case Not:
		planned := Plan(g, cl.Clauses, false)
		var out []row
		for _, r := range rows {
			sub, err := executeClauses(g, planned, []row{cloneRow(r)}, env)
			if err != nil {
				return nil, err
			}
			if len(sub) == 0 {
				out = append(out, r)
			}
		}
		return out, nil
	case Or:
		var out []row
		for _, r := range rows {
			for _, branch := range cl.Branches {
				planned := Plan(g, branch, false)
				sub, err := executeClauses(g, planned, []row{cloneRow(r)}, env)
				if err != nil {
					return nil, err
				}
				out = append(out, sub...)
			}
		}
		return out, nil
	case Filter:
		var out []row
		for _, r := range rows {
			v, err := Eval(cl.Expr, r, env)
			if err != nil {
				return nil, err
			}
			if Truthy(v) {
				out = append(out, r)
			}
		}
		return out, nil
	case Bind:
		var out []row
		for _, r := range rows {
			v, err := Eval(cl.Expr, r, env)
			if err != nil {
				return nil, err
			}
			nr := cloneRow(r)
			if len(cl.Target) == 1 {
				nr[cl.Target[0]] = v
			} else {
				vals, ok := v.([]store.Value)
				if !ok || len(vals) != len(cl.Target) {
					return nil, fmt.Errorf("bind destructure arity mismatch for %v", cl.Target)
				}
				for i, t := range cl.Target {
					nr[t] = vals[i]
				}
			}
			out = append(out, nr)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown clause type %T", c)
	}
}

type termInfo struct {
	isVar   bool
	varName Variable
	bound   bool
	value   store.Value
}

func resolveTerm(r row, t Term) termInfo {
	if v, ok := t.(Variable); ok {
		if val, ok2 := r[v]; ok2 {
			return termInfo{isVar: true, varName: v, bound: true, value: val}
		}
		return termInfo{isVar: true, varName: v, bound: false}
	}
	return termInfo{bound: true, value: t}
}

func matchPattern(g graphdb.Graph, r row, pat Pattern) []row {
	if kw, ok := literalKeyword(pat.P); ok {
		if base, trans, tagged := transitivity(kw); tagged {
			return matchTransitive(g, r, pat, base, trans)
		}
	}
	return matchRegular(g, r, pat)
}

func literalKeyword(t Term) (store.Keyword, bool) {
	kw, ok := t.(store.Keyword)
	return kw, ok
}

func transitivity(kw store.Keyword) (store.Keyword, graphdb.Transitivity, bool) {
	s := string(kw)
	if strings.HasSuffix(s, "+") {
		return store.Keyword(s[:len(s)-1]), graphdb.Plus, true
	}
	if strings.HasSuffix(s, "*") {
		return store.Keyword(s[:len(s)-1]), graphdb.Star, true
	}
	return kw, graphdb.Plus, false
}

func matchRegular(g graphdb.Graph, r row, pat Pattern) []row {
	sInfo := resolveTerm(r, pat.S)
	pInfo := resolveTerm(r, pat.P)
	oInfo := resolveTerm(r, pat.O)

	sArg, pArg, oArg := store.Value(store.Blank), store.Value(store.Blank), store.Value(store.Blank)
	if sInfo.bound {
		sArg = sInfo.value
	}
	if pInfo.bound {
		pArg = pInfo.value
	}
	if oInfo.bound {
		oArg = oInfo.value
	}

	var wildcardVars []Variable
	if sInfo.isVar && !sInfo.bound {
		wildcardVars = append(wildcardVars, sInfo.varName)
	}
	if pInfo.isVar && !pInfo.bound {
		wildcardVars = append(wildcardVars, pInfo.varName)
	}
	if oInfo.isVar && !oInfo.bound {
		wildcardVars = append(wildcardVars, oInfo.varName)
	}

	var out []row
	for binding := range g.Resolve(sArg, pArg, oArg) {
		nr := cloneRow(r)
		for i, v := range wildcardVars {
			nr[v] = binding[i]
		}
		out = append(out, nr)
	}
	return out
}

// matchTransitive handles a pattern whose predicate carries a '+'/'*'
// tag. The (?, p+/*, ?) shape is not meaningful for exact resolution
// and yields no rows; its cardinality is estimated separately for
// planning via TransitiveCountEstimate.
func matchTransitive(g graphdb.Graph, r row, pat Pattern, pred store.Keyword, t graphdb.Transitivity) []row {
	sInfo := resolveTerm(r, pat.S)
	oInfo := resolveTerm(r, pat.O)

	switch {
	case sInfo.bound && oInfo.bound:
		if g.TransitivePath(sInfo.value, pred, oInfo.value, t) {
			return []row{cloneRow(r)}
		}
		return nil
	case sInfo.bound && !oInfo.bound:
		var out []row
		for binding := range g.TransitiveReachable(sInfo.value, pred, t) {
			nr := cloneRow(r)
			if oInfo.isVar {
				nr[oInfo.varName] = binding[0]
			}
			out = append(out, nr)
		}
		return out
	case !sInfo.bound && oInfo.bound:
		var out []row
		for binding := range g.TransitiveFrom(pred, oInfo.value, t) {
			nr := cloneRow(r)
			if sInfo.isVar {
				nr[sInfo.varName] = binding[0]
			}
			out = append(out, nr)
		}
		return out
	default:
		return nil
	}
}
