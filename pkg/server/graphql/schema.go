/*
# Module: pkg/server/graphql/schema.go
GraphQL schema for the versioned triple database.

Exposes the database's read surface as three root fields: entity,
query, and asOf. Document-shaped results (entity documents, query
bindings) are typed as a permissive JSON scalar rather than a fixed
object graph, since an entity's shape is schema-less by construction.

## Linked Modules
- [../../conn](../../conn/conn.go) - Conn, the data source
- [./resolvers](./resolvers.go) - GraphQL resolvers

## Tags
graphql, schema, server

## Exports
BuildSchema, JSONScalar

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#schema.go> a code:Module ;
    code:name "pkg/server/graphql/schema.go" ;
    code:description "GraphQL schema for the versioned triple database" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <../../conn/conn.go>, <./resolvers.go> ;
    code:exports <#BuildSchema>, <#JSONScalar> ;
    code:tags "graphql", "schema", "server" .
<!-- End LinkedDoc RDF -->
*/

package graphql

import (
	"fmt"

	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"

	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/query"
)

// JSONScalar passes Go values (maps, slices, scalars already produced
// by toJSON) straight through to the response encoder.
var JSONScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "JSON",
	Description: "An arbitrary JSON document, used for entity and query results",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		if sv, ok := valueAST.(*ast.StringValue); ok {
			return sv.Value
		}
		return nil
	},
})

var asOfType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "AsOf",
	Description: "Summary of the database as of a historical point",
	Fields: graphql.Fields{
		"t": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "Transaction number at this point",
		},
		"timestamp": &graphql.Field{
			Type:        graphql.String,
			Description: "Wall-clock time the transaction was committed",
		},
		"tripleCount": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "Number of triples visible at this point",
		},
	},
})

var queryResultType = graphql.NewObject(graphql.ObjectConfig{
	Name:        "QueryResult",
	Description: "Result of evaluating a find/where query",
	Fields: graphql.Fields{
		"variables": &graphql.Field{
			Type:        graphql.NewList(graphql.NewNonNull(graphql.String)),
			Description: "Output column order",
		},
		"bindings": &graphql.Field{
			Type:        graphql.NewList(JSONScalar),
			Description: "One document per result row",
		},
		"count": &graphql.Field{
			Type:        graphql.NewNonNull(graphql.Int),
			Description: "Number of result rows",
		},
	},
})

// BuildSchema builds a schema resolving every field against c.
func BuildSchema(c *conn.Conn, env query.Env) (graphql.Schema, error) {
	resolver := NewResolver(c, env)

	asOfArg := &graphql.ArgumentConfig{
		Type:        graphql.String,
		Description: "Transaction number or RFC3339 timestamp to evaluate against",
	}

	queryType := graphql.NewObject(graphql.ObjectConfig{
		Name:        "Query",
		Description: "Root query type",
		Fields: graphql.Fields{
			"entity": &graphql.Field{
				Type:        JSONScalar,
				Description: "Materialize the entity identified by id",
				Args: graphql.FieldConfigArgument{
					"id":   &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"asOf": asOfArg,
				},
				Resolve: resolver.Entity,
			},
			"query": &graphql.Field{
				Type:        queryResultType,
				Description: "Evaluate a find/where query",
				Args: graphql.FieldConfigArgument{
					"edn":  &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
					"asOf": asOfArg,
				},
				Resolve: resolver.Query,
			},
			"asOf": &graphql.Field{
				Type:        asOfType,
				Description: "Summarize the database as of a historical point",
				Args: graphql.FieldConfigArgument{
					"t": &graphql.ArgumentConfig{Type: graphql.NewNonNull(graphql.String)},
				},
				Resolve: resolver.AsOf,
			},
		},
	})

	schema, err := graphql.NewSchema(graphql.SchemaConfig{Query: queryType})
	if err != nil {
		return schema, fmt.Errorf("failed to build GraphQL schema: %w", err)
	}
	return schema, nil
}
