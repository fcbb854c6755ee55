package server

import (
	"io"
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
		triples := []store.Triple{
			store.NewTriple("alice", store.Keyword(":person/name"), "Alice"),
			store.NewTriple("bob", store.Keyword(":person/name"), "Bob"),
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

func TestQueryHandler_GET(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := `{:find [?name] :where [[?s :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(queryStr), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	contentType := rec.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		t.Errorf("Expected JSON content type, got %s", contentType)
	}
}

func TestQueryHandler_POST(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := `{:find [?name] :where [[?s :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(queryStr))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestQueryHandler_CSVFormat(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := `{:find [?name] :where [[?s :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(queryStr)+"&format=csv", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if !strings.Contains(contentType, "text/csv") {
		t.Errorf("Expected CSV content type, got %s", contentType)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "?name") {
		t.Error("Expected CSV header '?name' in output")
	}
}

func TestQueryHandler_XMLFormat(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := `{:find [?name] :where [[?s :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(queryStr)+"&format=xml", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if !strings.Contains(contentType, "application/xml") {
		t.Errorf("Expected XML content type, got %s", contentType)
	}

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "<?xml") {
		t.Error("Expected XML declaration in output")
	}
}

func TestQueryHandler_TSVFormat(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := `{:find [?name] :where [[?s :person/name ?name]]}`
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(queryStr)+"&format=tsv", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if !strings.Contains(contentType, "text/tab-separated-values") {
		t.Errorf("Expected TSV content type, got %s", contentType)
	}
}

func TestQueryHandler_InvalidQuery(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	queryStr := "not a valid query"
	req := httptest.NewRequest(http.MethodGet, "/query?query="+url.QueryEscape(queryStr), nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestQueryHandler_MissingQuery(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodGet, "/query", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", rec.Code)
	}
}

func TestQueryHandler_CORS(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodOptions, "/query", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200 for OPTIONS, got %d", rec.Code)
	}

	corsHeader := rec.Header().Get("Access-Control-Allow-Origin")
	if corsHeader != "*" {
		t.Errorf("Expected CORS header '*', got %s", corsHeader)
	}
}

func TestQueryHandler_MethodNotAllowed(t *testing.T) {
	handler := NewQueryHandler(setupTestConn(t), nil, true)

	req := httptest.NewRequest(http.MethodPut, "/query", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected status 405, got %d", rec.Code)
	}
}
