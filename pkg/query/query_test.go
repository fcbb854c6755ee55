package query

import (
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func buildGraph() graphdb.Graph {
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(store.Keyword("alice"), store.Keyword(":a/knows"), store.Keyword("bob"), 0)
	g = g.Add(store.Keyword("bob"), store.Keyword(":a/knows"), store.Keyword("carol"), 0)
	g = g.Add(store.Keyword("alice"), store.Keyword(":a/age"), int64(30), 0)
	g = g.Add(store.Keyword("bob"), store.Keyword(":a/age"), int64(25), 0)
	return g
}

func TestParse_MissingFind(t *testing.T) {
	_, err := Parse(`{:where [[?x :a/knows ?y]]}`)
	if _, ok := err.(*dberr.MissingClauseError); !ok {
		t.Fatalf("Parse with no :find = %v, want MissingClauseError", err)
	}
}

func TestParse_MissingWhere(t *testing.T) {
	_, err := Parse(`{:find [?x]}`)
	if _, ok := err.(*dberr.MissingClauseError); !ok {
		t.Fatalf("Parse with no :where = %v, want MissingClauseError", err)
	}
}

func TestParse_UnknownClause(t *testing.T) {
	_, err := Parse(`{:find [?x] :where [[?x :a/knows ?y]] :bogus [1]}`)
	if _, ok := err.(*dberr.UnknownClausesError); !ok {
		t.Fatalf("Parse with unknown clause = %v, want UnknownClausesError", err)
	}
}

func TestExecute_SimplePattern(t *testing.T) {
	g := buildGraph()
	q, err := Parse(`{:find [?x ?y] :where [[?x :a/knows ?y]]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 2 {
		t.Fatalf("Execute count = %d, want 2", res.Count)
	}
}

func TestExecute_JoinNarrowsResults(t *testing.T) {
	g := buildGraph()
	q, err := Parse(`{:find [?x] :where [[?x :a/knows ?y] [?y :a/age 25]]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("Execute count = %d, want 1 (only alice knows a 25 year old)", res.Count)
	}
}

func TestExecute_Not(t *testing.T) {
	g := buildGraph()
	// Both alice and bob have an :a/age and also a :a/knows edge, so
	// excluding anyone who knows someone drops both of them.
	q, err := Parse(`{:find [?x] :where [[?x :a/age ?a] (not [?x :a/knows ?y])]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 0 {
		t.Fatalf("Execute count = %d, want 0 (alice and bob both know someone)", res.Count)
	}
}

func TestExecute_FilterAndBind(t *testing.T) {
	g := buildGraph()
	q, err := Parse(`{:find [?x ?double] :where [[?x :a/age ?a] (bind (* ?a 2) ?double) (filter (> ?double 50))]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("Execute count = %d, want 1 (only alice's doubled age exceeds 50)", res.Count)
	}
}

func TestExecute_CountAggregate(t *testing.T) {
	g := buildGraph()
	q, err := Parse(`{:find [(count ?y)] :where [[?x :a/knows ?y]]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 1 {
		t.Fatalf("aggregate with no grouping vars should yield 1 row, got %d", res.Count)
	}
	if res.Bindings[0]["(count ?y)"] != int64(2) {
		t.Errorf("count = %v, want 2", res.Bindings[0]["(count ?y)"])
	}
}

func TestExecute_ScalarShape(t *testing.T) {
	g := buildGraph()
	q, err := Parse(`{:find [?a .] :where [[?x :a/knows ?a] [?x :a/age 30]]}`)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	res, err := Execute(g, q, nil, nil)
	if err != nil {
		t.Fatalf("Execute error: %v", err)
	}
	if res.Count != 1 || len(res.Bindings) != 1 {
		t.Fatalf("scalar shape should yield exactly one binding, got %+v", res)
	}
}

func TestExecute_IllegalAggregateStar(t *testing.T) {
	_, err := Parse(`{:find [(sum *)] :where [[?x :a/age ?a]]}`)
	if _, ok := err.(*dberr.IllegalAggregateError); !ok {
		t.Fatalf("(sum *) should fail with IllegalAggregateError, got %v", err)
	}
}
