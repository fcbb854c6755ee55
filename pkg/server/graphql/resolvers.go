/*
# Module: pkg/server/graphql/resolvers.go
GraphQL resolvers over a versioned connection.

Three root fields cover the database's read surface: entity(id)
materializes a document, query(edn) runs a find/where query, asOf(t)
reports what a historical database value looked like. entity and query
accept an optional `asOf` argument so a client can pin both in a single
request to the same historical point; the asOf field takes its point as t.

## Linked Modules
- [../../conn](../../conn/conn.go) - Conn, DB, AsOf
- [../../entity](../../entity/entity.go) - Materialize, ResolveIdent
- [../../query](../../query/query.go) - Parse, Execute
- [./schema](./schema.go) - GraphQL schema

## Tags
graphql, resolvers, server

## Exports
Resolver, NewResolver

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#resolvers.go> a code:Module ;
    code:name "pkg/server/graphql/resolvers.go" ;
    code:description "GraphQL resolvers over a versioned connection" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <../../conn/conn.go>, <../../entity/entity.go>, <../../query/query.go> ;
    code:exports <#Resolver>, <#NewResolver> ;
    code:tags "graphql", "resolvers", "server" .
<!-- End LinkedDoc RDF -->
*/

package graphql

import (
	"fmt"
	"strconv"
	"time"

	"github.com/graphql-go/graphql"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/entity"
	"github.com/justin4957/graphfs/pkg/query"
)

// parseAsOf interprets an asOf argument as a transaction number
// (plain integer) or an RFC3339 timestamp, per conn.AsOf's accepted
// store.Value forms.
func parseAsOf(s string) (store.Value, error) {
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("asOf must be a transaction number or RFC3339 timestamp: %w", err)
	}
	return t, nil
}

// Resolver handles GraphQL query resolution over a connection.
type Resolver struct {
	conn *conn.Conn
	env  query.Env
}

// NewResolver creates a resolver bound to c, evaluating Bind/Filter
// expressions against env.
func NewResolver(c *conn.Conn, env query.Env) *Resolver {
	return &Resolver{conn: c, env: env}
}

func (r *Resolver) db(asOf interface{}) (conn.DB, error) {
	db, err := r.conn.Db()
	if err != nil {
		return conn.DB{}, err
	}
	if s, ok := asOf.(string); ok && s != "" {
		t, err := parseAsOf(s)
		if err != nil {
			return conn.DB{}, err
		}
		db = conn.AsOf(db, t)
	}
	return db, nil
}

// Entity resolves the entity(id, asOf) query.
func (r *Resolver) Entity(p graphql.ResolveParams) (interface{}, error) {
	id, _ := p.Args["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("id is required")
	}

	db, err := r.db(p.Args["asOf"])
	if err != nil {
		return nil, err
	}

	n, ok := entity.ResolveIdent(db.Graph, id)
	if !ok {
		return nil, nil
	}

	doc := entity.Materialize(db.Graph, n, entity.Options{Nested: true})
	return toJSON(doc), nil
}

// Query resolves the query(edn, asOf) query.
func (r *Resolver) Query(p graphql.ResolveParams) (interface{}, error) {
	ednText, _ := p.Args["edn"].(string)
	if ednText == "" {
		return nil, fmt.Errorf("edn is required")
	}

	parsed, err := query.Parse(ednText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse query: %w", err)
	}

	db, err := r.db(p.Args["asOf"])
	if err != nil {
		return nil, err
	}

	result, err := query.Execute(db.Graph, parsed, r.env, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	bindings := make([]map[string]interface{}, 0, len(result.Bindings))
	for _, b := range result.Bindings {
		row := make(map[string]interface{}, len(result.Variables))
		for _, v := range result.Variables {
			row[v] = toJSON(b[v])
		}
		bindings = append(bindings, row)
	}

	return map[string]interface{}{
		"variables": result.Variables,
		"bindings":  bindings,
		"count":     result.Count,
	}, nil
}

// AsOf resolves the asOf(t) query, reporting what the database looked
// like at transaction/time value t.
func (r *Resolver) AsOf(p graphql.ResolveParams) (interface{}, error) {
	t, _ := p.Args["t"].(string)
	if t == "" {
		return nil, fmt.Errorf("t is required")
	}

	asOfVal, err := parseAsOf(t)
	if err != nil {
		return nil, err
	}

	current, err := r.conn.Db()
	if err != nil {
		return nil, err
	}
	historical := conn.AsOf(current, asOfVal)

	return map[string]interface{}{
		"t":           historical.T,
		"timestamp":   historical.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
		"tripleCount": historical.Graph.CountTriple(store.Blank, store.Blank, store.Blank),
	}, nil
}

// toJSON converts a materialized document (or a raw store.Value) into
// plain Go values the graphql-go JSON encoder can serialize: nodes and
// keywords become their string form, maps and slices recurse.
func toJSON(v interface{}) interface{} {
	switch t := v.(type) {
	case store.Node:
		return t.String()
	case store.Keyword:
		return string(t)
	case map[string]store.Value:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = toJSON(val)
		}
		return out
	case []store.Value:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = toJSON(val)
		}
		return out
	default:
		return t
	}
}
