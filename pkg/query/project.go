/*
# Module: pkg/query/project.go
Result shaping: find-spec projection and aggregation.

Turns the joined row set into a QueryResult per the four find shapes
(relation/scalar/tuple-once/collection) and the six aggregate functions,
grouping by the non-aggregate find variables plus any `:with` variables
when at least one column aggregates.

## Linked Modules
- [query](./query.go) - ProjectionSpec/Aggregate/QueryResult
- [executor](./executor.go) - Row type, Execute's final step

## Tags
query, projection, aggregation

## Exports
(internal: project)

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#project.go> a code:Module ;
    code:name "pkg/query/project.go" ;
    code:description "Result shaping: find-spec projection and aggregation" ;
    code:tags "query", "projection", "aggregation" .
<!-- End LinkedDoc RDF -->
*/

package query

import (
	"fmt"

	"github.com/justin4957/graphfs/internal/store"
)

func project(q Query, rows []row) (*QueryResult, error) {
	hasAgg := false
	for _, c := range q.Find.Columns {
		if c.IsAggregate() {
			hasAgg = true
			break
		}
	}

	var out []row
	var err error
	if hasAgg {
		out, err = projectAggregates(q, rows)
	} else {
		out = dedupRows(projectPlain(q, rows))
	}
	if err != nil {
		return nil, err
	}

	return shape(q.Find.Shape, q.Find.Columns, out), nil
}

func projectPlain(q Query, rows []row) []row {
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		nr := row{}
		for _, col := range q.Find.Columns {
			if v, ok := r[col.Var]; ok {
				nr[col.Var] = v
			}
		}
		out = append(out, nr)
	}
	return out
}

func dedupRows(rows []row) []row {
	seen := map[string]bool{}
	out := make([]row, 0, len(rows))
	for _, r := range rows {
		key := fmt.Sprint(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

func projectAggregates(q Query, rows []row) ([]row, error) {
	var groupVars []Variable
	for _, c := range q.Find.Columns {
		if !c.IsAggregate() {
			groupVars = append(groupVars, c.Var)
		}
	}
	groupVars = append(groupVars, q.With...)

	type group struct {
		key  row
		rows []row
	}
	order := []string{}
	groups := map[string]*group{}
	for _, r := range rows {
		key := row{}
		for _, v := range groupVars {
			key[v] = r[v]
		}
		k := fmt.Sprint(key)
		g, ok := groups[k]
		if !ok {
			g = &group{key: key}
			groups[k] = g
			order = append(order, k)
		}
		g.rows = append(g.rows, r)
	}
	if len(groups) == 0 && len(rows) == 0 {
		// No input rows: aggregates still produce one row of zero/nil
		// values, matching "count of nothing is zero" semantics.
		groups[""] = &group{key: row{}}
		order = append(order, "")
	}

	out := make([]row, 0, len(order))
	for _, k := range order {
		g := groups[k]
		nr := row{}
		for _, col := range q.Find.Columns {
			if col.IsAggregate() {
				v, err := computeAgg(col, g.rows)
				if err != nil {
					return nil, err
				}
				nr[col.Var] = v
			} else {
				nr[col.Var] = g.key[col.Var]
			}
		}
		out = append(out, nr)
	}
	return out, nil
}

func computeAgg(a Aggregate, rows []row) (store.Value, error) {
	switch a.Kind {
	case AggCount:
		if a.Var == "*" {
			return int64(len(rows)), nil
		}
		n := int64(0)
		for _, r := range rows {
			if _, ok := r[a.Var]; ok {
				n++
			}
		}
		return n, nil
	case AggCountDistinct:
		seen := map[string]bool{}
		for _, r := range rows {
			if a.Var == "*" {
				seen[fmt.Sprint(r)] = true
				continue
			}
			if v, ok := r[a.Var]; ok {
				seen[fmt.Sprint(v)] = true
			}
		}
		return int64(len(seen)), nil
	case AggSum, AggMin, AggMax, AggAvg:
		var vals []float64
		for _, r := range rows {
			if v, ok := r[a.Var]; ok {
				if f, ok2 := toFloat(v); ok2 {
					vals = append(vals, f)
				}
			}
		}
		if len(vals) == 0 {
			return nil, nil
		}
		switch a.Kind {
		case AggSum:
			s := 0.0
			for _, v := range vals {
				s += v
			}
			return s, nil
		case AggAvg:
			s := 0.0
			for _, v := range vals {
				s += v
			}
			return s / float64(len(vals)), nil
		case AggMin:
			m := vals[0]
			for _, v := range vals {
				if v < m {
					m = v
				}
			}
			return m, nil
		default: // AggMax
			m := vals[0]
			for _, v := range vals {
				if v > m {
					m = v
				}
			}
			return m, nil
		}
	default:
		return nil, fmt.Errorf("unsupported aggregate kind %v", a.Kind)
	}
}

func shape(s ProjectionShape, cols []Aggregate, rows []row) *QueryResult {
	vars := make([]string, len(cols))
	for i, c := range cols {
		vars[i] = c.Label()
	}

	res := &QueryResult{Variables: vars}
	switch s {
	case ShapeScalar:
		if len(rows) > 0 && len(cols) > 0 {
			res.Bindings = []map[string]store.Value{{vars[0]: rows[0][cols[0].Var]}}
			res.Count = 1
		}
	case ShapeTupleOnce:
		if len(rows) > 0 {
			res.Bindings = []map[string]store.Value{toBindingMap(rows[0], cols)}
			res.Count = 1
		}
	case ShapeCollection:
		for _, r := range rows {
			res.Bindings = append(res.Bindings, map[string]store.Value{vars[0]: r[cols[0].Var]})
		}
		res.Count = len(res.Bindings)
	default: // ShapeRelation
		for _, r := range rows {
			res.Bindings = append(res.Bindings, toBindingMap(r, cols))
		}
		res.Count = len(res.Bindings)
	}
	return res
}

func toBindingMap(r row, cols []Aggregate) map[string]store.Value {
	m := make(map[string]store.Value, len(cols))
	for _, c := range cols {
		m[c.Label()] = r[c.Var]
	}
	return m
}

// Label renders the output column name for this find-spec entry.
func (a Aggregate) Label() string {
	if !a.IsAggregate() {
		return string(a.Var)
	}
	names := map[AggKind]string{
		AggCount: "count", AggCountDistinct: "count-distinct",
		AggSum: "sum", AggMin: "min", AggMax: "max", AggAvg: "avg",
	}
	return fmt.Sprintf("(%s %s)", names[a.Kind], a.Var)
}
