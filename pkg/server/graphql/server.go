/*
# Module: pkg/server/graphql/server.go
GraphQL HTTP server over a versioned connection.

## Linked Modules
- [../../conn](../../conn/conn.go) - Conn
- [./schema](./schema.go) - GraphQL schema
- [./resolvers](./resolvers.go) - GraphQL resolvers

## Tags
graphql, server, http

## Exports
NewHandler

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#graphql-server.go> a code:Module ;
    code:name "pkg/server/graphql/server.go" ;
    code:description "GraphQL HTTP server over a versioned connection" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <../../conn/conn.go>, <./schema.go>, <./resolvers.go> ;
    code:exports <#NewHandler> ;
    code:tags "graphql", "server", "http" .
<!-- End LinkedDoc RDF -->
*/

package graphql

import (
	"net/http"

	"github.com/graphql-go/handler"

	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/query"
)

// HandlerConfig configures the GraphQL handler.
type HandlerConfig struct {
	EnablePlayground bool
	EnableCORS       bool
}

// NewHandler creates a GraphQL HTTP handler bound to c.
func NewHandler(c *conn.Conn, env query.Env, config HandlerConfig) (http.Handler, error) {
	schema, err := BuildSchema(c, env)
	if err != nil {
		return nil, err
	}

	h := handler.New(&handler.Config{
		Schema:     &schema,
		Pretty:     true,
		GraphiQL:   config.EnablePlayground,
		Playground: config.EnablePlayground,
	})

	if config.EnableCORS {
		return corsHandler(h), nil
	}
	return h, nil
}

func corsHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}
