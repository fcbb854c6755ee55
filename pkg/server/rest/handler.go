/*
# Module: pkg/server/rest/handler.go
REST API handler over a versioned connection.

Three endpoint families mirror the GraphQL root fields: GET
/api/v1/entity/{id} materializes a document, GET/POST /api/v1/query
runs a find/where query, GET /api/v1/asof/{t} reports what the
database looked like at a historical point. The entity and query
endpoints accept an `asof` query parameter to pin reads to the same
historical value; the asof endpoint takes its point from the path.

## Linked Modules
- [../../conn](../../conn/conn.go) - Conn, AsOf
- [../../entity](../../entity/entity.go) - Materialize, ResolveIdent
- [../../query](../../query/query.go) - Parse, Execute

## Tags
rest, api, http, server

## Exports
Handler, NewHandler

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#rest-handler.go> a code:Module ;
    code:name "pkg/server/rest/handler.go" ;
    code:description "REST API handler over a versioned connection" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <../../conn/conn.go>, <../../entity/entity.go>, <../../query/query.go> ;
    code:exports <#Handler>, <#NewHandler> ;
    code:tags "rest", "api", "http", "server" .
<!-- End LinkedDoc RDF -->
*/

package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/cache"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/entity"
	"github.com/justin4957/graphfs/pkg/query"
)

// Handler handles REST API requests over a connection.
type Handler struct {
	conn       *conn.Conn
	env        query.Env
	enableCORS bool
}

// NewHandler creates a REST API handler bound to c.
func NewHandler(c *conn.Conn, env query.Env, enableCORS bool) *Handler {
	return &Handler{conn: c, env: env, enableCORS: enableCORS}
}

// RegisterRoutes registers all REST API routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/entity/", h.handleEntity)
	mux.HandleFunc("/api/v1/query", h.handleQuery)
	mux.HandleFunc("/api/v1/asof/", h.handleAsOf)
}

// RegisterRoutesWithCache registers routes, wrapping the read-mostly
// query endpoint with HTTP response caching.
func (h *Handler) RegisterRoutesWithCache(mux *http.ServeMux, c *cache.Cache) {
	mux.HandleFunc("/api/v1/entity/", h.handleEntity)
	mux.Handle("/api/v1/query", cacheMiddleware(http.HandlerFunc(h.handleQuery), c))
	mux.HandleFunc("/api/v1/asof/", h.handleAsOf)
}

func cacheMiddleware(next http.Handler, c *cache.Cache) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		key := cache.GenerateKey(r.URL.String())
		if cached, ok := c.Get(key); ok {
			if body, ok := cached.([]byte); ok {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("X-Cache", "HIT")
				w.Write(body)
				return
			}
		}
		rec := &captureWriter{ResponseWriter: w, buf: nil}
		next.ServeHTTP(rec, r)
		if rec.status == http.StatusOK {
			c.Set(key, rec.buf, int64(len(rec.buf)))
		}
	})
}

type captureWriter struct {
	http.ResponseWriter
	buf    []byte
	status int
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.buf = append(c.buf, b...)
	return c.ResponseWriter.Write(b)
}

func (h *Handler) corsHeaders(w http.ResponseWriter) {
	if h.enableCORS {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
	}
}

// writeJSON writes a JSON response.
func (h *Handler) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	h.corsHeaders(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func (h *Handler) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	h.writeJSON(w, statusCode, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
			"status":  statusCode,
		},
	})
}

// parseAsOf interprets the `asof` query parameter as a transaction
// number or an RFC3339 timestamp.
func parseAsOf(s string) (store.Value, error) {
	if s == "" {
		return nil, nil
	}
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("asof must be a transaction number or RFC3339 timestamp: %w", err)
	}
	return t, nil
}

func (h *Handler) db(r *http.Request) (conn.DB, error) {
	db, err := h.conn.Db()
	if err != nil {
		return conn.DB{}, err
	}
	asOfVal, err := parseAsOf(r.URL.Query().Get("asof"))
	if err != nil {
		return conn.DB{}, err
	}
	if asOfVal != nil {
		db = conn.AsOf(db, asOfVal)
	}
	return db, nil
}

// extractID extracts the trailing path segment after prefix.
func extractID(path, prefix string) string {
	path = strings.TrimPrefix(path, prefix)
	return strings.Trim(path, "/")
}

// handleEntity handles GET /api/v1/entity/{id}.
func (h *Handler) handleEntity(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.corsHeaders(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is supported")
		return
	}

	id := extractID(r.URL.Path, "/api/v1/entity")
	if id == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_ID", "Entity id is required")
		return
	}

	db, err := h.db(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_ASOF", err.Error())
		return
	}

	n, ok := entity.ResolveIdent(db.Graph, id)
	if !ok {
		h.writeError(w, http.StatusNotFound, "NOT_FOUND", "No entity with that id")
		return
	}

	doc := entity.Materialize(db.Graph, n, entity.Options{Nested: true})
	h.writeJSON(w, http.StatusOK, doc)
}

// handleQuery handles GET/POST /api/v1/query.
func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.corsHeaders(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET and POST are supported")
		return
	}

	var queryStr string
	if r.Method == http.MethodGet {
		queryStr = r.URL.Query().Get("q")
	} else {
		var body struct {
			Query string `json:"query"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.writeError(w, http.StatusBadRequest, "BAD_BODY", err.Error())
			return
		}
		queryStr = body.Query
	}
	if queryStr == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_QUERY", "query parameter is required")
		return
	}

	parsed, err := query.Parse(queryStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "PARSE_ERROR", err.Error())
		return
	}

	db, err := h.db(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_ASOF", err.Error())
		return
	}

	result, err := query.Execute(db.Graph, parsed, h.env, nil)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "EXEC_ERROR", err.Error())
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// handleAsOf handles GET /api/v1/asof/{t}.
func (h *Handler) handleAsOf(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h.corsHeaders(w)
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET is supported")
		return
	}

	t := extractID(r.URL.Path, "/api/v1/asof")
	if t == "" {
		h.writeError(w, http.StatusBadRequest, "MISSING_T", "asof value is required")
		return
	}

	asOfVal, err := parseAsOf(t)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "BAD_ASOF", err.Error())
		return
	}

	current, err := h.conn.Db()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "DB_ERROR", err.Error())
		return
	}
	historical := conn.AsOf(current, asOfVal)

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"t":           historical.T,
		"timestamp":   historical.Timestamp,
		"tripleCount": historical.Graph.CountTriple(store.Blank, store.Blank, store.Blank),
	})
}
