/*
# Module: pkg/server/server.go
HTTP server binding query, GraphQL, and REST endpoints to a connection.

## Linked Modules
- [sparql_handler](./sparql_handler.go) - Query-language HTTP handler
- [../conn](../conn/conn.go) - Conn, the bound connection
- [./graphql](./graphql/server.go) - GraphQL handler
- [./rest](./rest/handler.go) - REST handler

## Tags
server, http, api

## Exports
Server, Config, NewServer

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#server.go> a code:Module ;
    code:name "pkg/server/server.go" ;
    code:description "HTTP server binding query, GraphQL, and REST endpoints to a connection" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <./sparql_handler.go>, <../conn/conn.go> ;
    code:exports <#Server>, <#Config>, <#NewServer> ;
    code:tags "server", "http", "api" .
<!-- End LinkedDoc RDF -->
*/

package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/justin4957/graphfs/pkg/cache"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/query"
	graphqlserver "github.com/justin4957/graphfs/pkg/server/graphql"
	restserver "github.com/justin4957/graphfs/pkg/server/rest"
)

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	EnableCORS       bool
	EnableGraphQL    bool
	EnablePlayground bool
	EnableREST       bool
	EnableCache      bool
	CacheMaxEntries  int
	CacheTTL         time.Duration
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:             "localhost",
		Port:             8080,
		ReadTimeout:      30 * time.Second,
		WriteTimeout:     30 * time.Second,
		EnableCORS:       true,
		EnableGraphQL:    true,
		EnablePlayground: true,
		EnableREST:       true,
		EnableCache:      true,
		CacheMaxEntries:  1000,
		CacheTTL:         5 * time.Minute,
	}
}

// Server is the HTTP server binding query, GraphQL, and REST endpoints
// to a single connection.
type Server struct {
	config *Config
	conn   *conn.Conn
	env    query.Env
	server *http.Server
	cache  *cache.Cache
}

// NewServer creates an HTTP server bound to c.
func NewServer(config *Config, c *conn.Conn, env query.Env) *Server {
	if config == nil {
		config = DefaultConfig()
	}

	s := &Server{config: config, conn: c, env: env}
	if config.EnableCache {
		s.cache = cache.NewCache(config.CacheMaxEntries, config.CacheTTL)
	}
	return s
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()

	queryHandler := NewQueryHandler(s.conn, s.env, s.config.EnableCORS)
	if s.config.EnableCache && s.cache != nil {
		mux.Handle("/query", CacheMiddleware(queryHandler, s.cache))
	} else {
		mux.Handle("/query", queryHandler)
	}

	if s.config.EnableGraphQL {
		graphqlHandler, err := graphqlserver.NewHandler(s.conn, s.env, graphqlserver.HandlerConfig{
			EnablePlayground: s.config.EnablePlayground,
			EnableCORS:       s.config.EnableCORS,
		})
		if err != nil {
			return fmt.Errorf("failed to create GraphQL handler: %w", err)
		}

		if s.config.EnableCache && s.cache != nil {
			mux.Handle("/graphql", CacheMiddleware(graphqlHandler, s.cache))
		} else {
			mux.Handle("/graphql", graphqlHandler)
		}
	}

	if s.config.EnableREST {
		restHandler := restserver.NewHandler(s.conn, s.env, s.config.EnableCORS)
		if s.config.EnableCache && s.cache != nil {
			restHandler.RegisterRoutesWithCache(mux, s.cache)
		} else {
			restHandler.RegisterRoutes(mux)
		}
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	if s.config.EnableCache && s.cache != nil {
		mux.HandleFunc("/cache/stats", s.handleCacheStats)
	}

	mux.HandleFunc("/", s.handleRoot)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}

	log.Printf("Starting graphfs server on http://%s", addr)
	log.Printf("Query endpoint: http://%s/query", addr)
	if s.config.EnableGraphQL {
		log.Printf("GraphQL endpoint: http://%s/graphql", addr)
		if s.config.EnablePlayground {
			log.Printf("GraphQL Playground: http://%s/graphql", addr)
		}
	}
	if s.config.EnableREST {
		log.Printf("REST API: http://%s/api/v1", addr)
	}
	if s.config.EnableCache && s.cache != nil {
		log.Printf("Cache enabled: %d max entries, %v TTL", s.config.CacheMaxEntries, s.config.CacheTTL)
		log.Printf("Cache stats: http://%s/cache/stats", addr)
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	endpoints := `{
  "name": "graphfs API",
  "version": "0.3.0",
  "endpoints": {
    "query": {
      "path": "/query",
      "methods": ["GET", "POST"],
      "description": "Find/where query endpoint",
      "formats": ["json", "csv", "tsv", "xml"]
    }`

	if s.config.EnableGraphQL {
		endpoints += `,
    "graphql": {
      "path": "/graphql",
      "methods": ["GET", "POST"],
      "description": "GraphQL query endpoint",
      "playground": ` + fmt.Sprintf("%v", s.config.EnablePlayground) + `
    }`
	}

	if s.config.EnableREST {
		endpoints += `,
    "rest": {
      "path": "/api/v1",
      "methods": ["GET", "POST"],
      "description": "RESTful API for entity, query, and as-of reads",
      "endpoints": {
        "entity": "/api/v1/entity/{id}",
        "query": "/api/v1/query?q=...",
        "asof": "/api/v1/asof/{t}"
      }
    }`
	}

	endpoints += `,
    "health": {
      "path": "/health",
      "methods": ["GET"],
      "description": "Health check endpoint"
    }
  }
}`

	w.Write([]byte(endpoints))
}

func (s *Server) handleCacheStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.cache == nil {
		http.Error(w, "Cache not enabled", http.StatusNotFound)
		return
	}

	stats := s.cache.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	response := fmt.Sprintf(`{
  "hits": %d,
  "misses": %d,
  "evictions": %d,
  "size": %d,
  "maxSize": %d,
  "totalBytes": %d,
  "hitRate": %.4f
}`, stats.Hits, stats.Misses, stats.Evictions, stats.Size, stats.MaxSize, stats.TotalBytes, stats.HitRate)

	w.Write([]byte(response))
}
