package rest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

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

func TestHandlerEntity(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entity/alice", nil)
	rec := httptest.NewRecorder()
	h.handleEntity(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Alice") {
		t.Errorf("expected body to contain Alice, got %s", rec.Body.String())
	}
}

func TestHandlerEntityNotFound(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entity/bob", nil)
	rec := httptest.NewRecorder()
	h.handleEntity(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerQuery(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	q := `{:find [?name] :where [[?e :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodGet, "/api/v1/query?q="+url.QueryEscape(q), nil)
	rec := httptest.NewRecorder()
	h.handleQuery(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Alice") {
		t.Errorf("expected result to contain Alice, got %s", rec.Body.String())
	}
}

func TestHandlerQueryMissing(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	h.handleQuery(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerAsOf(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/asof/1", nil)
	rec := httptest.NewRecorder()
	h.handleAsOf(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"t"`) {
		t.Errorf("expected response to contain t field, got %s", rec.Body.String())
	}
}

func TestHandlerMethodNotAllowed(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/entity/alice", nil)
	rec := httptest.NewRecorder()
	h.handleEntity(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rec.Code)
	}
}

func TestHandlerCORS(t *testing.T) {
	h := NewHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/query", nil)
	rec := httptest.NewRecorder()
	h.handleQuery(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for OPTIONS, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header to be set")
	}
}
