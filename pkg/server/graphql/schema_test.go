package graphql

import (
	"context"
	"testing"

	"github.com/graphql-go/graphql"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func setupTestConn(t *testing.T) *conn.Conn {
	t.Helper()
	c := conn.New(graphdb.KindSimple)
	_, err := c.Transact(func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
		alice := store.NewNode()
		triples := []store.Triple{
			store.NewTriple(alice, store.Keyword(":db/ident"), "alice"),
			store.NewTriple(alice, store.Keyword(":person/name"), "Alice"),
			store.NewTriple(alice, store.Keyword(":person/age"), int64(30)),
		}
		next := g
		for _, tr := range triples {
			next = next.Add(tr.S, tr.P, tr.O, tx)
		}
		return next, triples, nil, nil
	})
	if err != nil {
		t.Fatalf("setup transact: %v", err)
	}
	return c
}

func TestBuildSchema(t *testing.T) {
	c := setupTestConn(t)

	schema, err := BuildSchema(c, nil)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}
	if schema.QueryType() == nil {
		t.Error("Schema missing Query type")
	}
}

func TestEntityQuery(t *testing.T) {
	c := setupTestConn(t)

	schema, err := BuildSchema(c, nil)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ entity(id: "alice") }`,
		Context:       context.Background(),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	doc, ok := data["entity"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected entity document, got %v", data["entity"])
	}
	if doc["person/name"] != "Alice" && doc[":person/name"] != "Alice" {
		t.Errorf("entity document missing name field: %v", doc)
	}
}

func TestQueryQuery(t *testing.T) {
	c := setupTestConn(t)

	schema, err := BuildSchema(c, nil)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ query(edn: "{:find [?name] :where [[?e :person/name ?name]]}") { variables count } }`,
		Context:       context.Background(),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	qr := data["query"].(map[string]interface{})
	if qr["count"] != 1 {
		t.Errorf("Expected count 1, got %v", qr["count"])
	}
}

func TestAsOfQuery(t *testing.T) {
	c := setupTestConn(t)

	schema, err := BuildSchema(c, nil)
	if err != nil {
		t.Fatalf("BuildSchema failed: %v", err)
	}

	result := graphql.Do(graphql.Params{
		Schema:        schema,
		RequestString: `{ asOf(t: "1") { t tripleCount } }`,
		Context:       context.Background(),
	})
	if len(result.Errors) > 0 {
		t.Fatalf("Query failed: %v", result.Errors)
	}

	data := result.Data.(map[string]interface{})
	asOf := data["asOf"].(map[string]interface{})
	if asOf["t"] != 1 {
		t.Errorf("Expected t=1, got %v", asOf["t"])
	}
}
