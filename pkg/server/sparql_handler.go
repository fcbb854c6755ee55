/*
# Module: pkg/server/sparql_handler.go
HTTP handler for the map query language.

Accepts a query string (and optional as-of point) over HTTP and
executes it against a conn.Conn's current database value, rendering
the result in the requested format.

## Linked Modules
- [../query](../query/executor.go) - Parse, Execute
- [../conn](../conn/conn.go) - Conn, AsOf

## Tags
server, query, http, handler

## Exports
QueryHandler, NewQueryHandler

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#sparql_handler.go> a code:Module ;
    code:name "pkg/server/sparql_handler.go" ;
    code:description "HTTP handler for the map query language" ;
    code:language "go" ;
    code:layer "server" ;
    code:linksTo <../query/executor.go>, <../conn/conn.go> ;
    code:exports <#QueryHandler>, <#NewQueryHandler> ;
    code:tags "server", "query", "http", "handler" .
<!-- End LinkedDoc RDF -->
*/

package server

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/query"
)

// parseAsOf interprets an asof value as a transaction number (plain
// integer) or an RFC3339 timestamp, the only forms conn.AsOf resolves
// to a historical value; any other store.Value leaves the db unchanged.
func parseAsOf(s string) (interface{}, error) {
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("asof must be a transaction number or RFC3339 timestamp: %w", err)
	}
	return t, nil
}

// QueryHandler serves query-language requests against a connection.
type QueryHandler struct {
	conn       *conn.Conn
	env        query.Env
	enableCORS bool
}

// NewQueryHandler creates a query handler bound to c, evaluating
// Bind/Filter expressions against env.
func NewQueryHandler(c *conn.Conn, env query.Env, enableCORS bool) *QueryHandler {
	return &QueryHandler{conn: c, env: env, enableCORS: enableCORS}
}

// ServeHTTP handles HTTP requests for query execution.
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.enableCORS {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept")
	}

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	queryStr, asOf, err := h.extractQuery(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if queryStr == "" {
		h.writeError(w, http.StatusBadRequest, "Missing query parameter")
		return
	}

	parsed, err := query.Parse(queryStr)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Query parse failed: %v", err))
		return
	}

	db, err := h.conn.Db()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read database: %v", err))
		return
	}
	if asOf != "" {
		asOfVal, err := parseAsOf(asOf)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		db = conn.AsOf(db, asOfVal)
	}

	result, err := query.Execute(db.Graph, parsed, h.env, nil)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Query execution failed: %v", err))
		return
	}

	format := h.determineFormat(r)
	if err := h.writeResult(w, result, format); err != nil {
		h.writeError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to write response: %v", err))
	}
}

// extractQuery extracts the query text and optional as-of value from
// the request.
func (h *QueryHandler) extractQuery(r *http.Request) (string, string, error) {
	if r.Method == http.MethodGet {
		q := r.URL.Query()
		return q.Get("query"), q.Get("asof"), nil
	}

	contentType := r.Header.Get("Content-Type")

	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return "", "", fmt.Errorf("failed to parse form: %w", err)
		}
		return r.FormValue("query"), r.FormValue("asof"), nil
	}

	if strings.Contains(contentType, "application/json") {
		var body struct {
			Query string `json:"query"`
			AsOf  string `json:"asof"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", "", fmt.Errorf("failed to decode JSON body: %w", err)
		}
		return body.Query, body.AsOf, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read request body: %w", err)
	}
	return string(body), r.URL.Query().Get("asof"), nil
}

// determineFormat determines the output format from Accept header or
// query parameter.
func (h *QueryHandler) determineFormat(r *http.Request) string {
	if format := r.URL.Query().Get("format"); format != "" {
		return format
	}

	accept := r.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "text/csv"):
		return "csv"
	case strings.Contains(accept, "text/tab-separated-values"):
		return "tsv"
	case strings.Contains(accept, "application/xml"):
		return "xml"
	default:
		return "json"
	}
}

func (h *QueryHandler) writeResult(w http.ResponseWriter, result *query.QueryResult, format string) error {
	switch format {
	case "csv":
		return h.writeCSV(w, result)
	case "tsv":
		return h.writeTSV(w, result)
	case "xml":
		return h.writeXML(w, result)
	default:
		return h.writeJSON(w, result)
	}
}

func (h *QueryHandler) writeJSON(w http.ResponseWriter, result *query.QueryResult) error {
	w.Header().Set("Content-Type", "application/json")

	bindings := make([]map[string]interface{}, 0, len(result.Bindings))
	for _, b := range result.Bindings {
		row := make(map[string]interface{}, len(result.Variables))
		for _, v := range result.Variables {
			if val, ok := b[v]; ok {
				row[v] = val
			}
		}
		bindings = append(bindings, row)
	}

	response := map[string]interface{}{
		"variables": result.Variables,
		"bindings":  bindings,
		"count":     result.Count,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

func (h *QueryHandler) writeCSV(w http.ResponseWriter, result *query.QueryResult) error {
	w.Header().Set("Content-Type", "text/csv")

	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(result.Variables); err != nil {
		return err
	}
	for _, binding := range result.Bindings {
		row := make([]string, len(result.Variables))
		for i, v := range result.Variables {
			row[i] = fmt.Sprint(binding[v])
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (h *QueryHandler) writeTSV(w http.ResponseWriter, result *query.QueryResult) error {
	w.Header().Set("Content-Type", "text/tab-separated-values")

	fmt.Fprintln(w, strings.Join(result.Variables, "\t"))
	for _, binding := range result.Bindings {
		row := make([]string, len(result.Variables))
		for i, v := range result.Variables {
			row[i] = fmt.Sprint(binding[v])
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return nil
}

// queryResultsXML is the XML rendering of a QueryResult.
type queryResultsXML struct {
	XMLName xml.Name `xml:"results"`
	Head    struct {
		Variables []struct {
			Name string `xml:"name,attr"`
		} `xml:"variable"`
	} `xml:"head"`
	Rows []rowXML `xml:"result"`
}

type rowXML struct {
	Bindings []bindingXML `xml:"binding"`
}

type bindingXML struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value"`
}

func (h *QueryHandler) writeXML(w http.ResponseWriter, result *query.QueryResult) error {
	w.Header().Set("Content-Type", "application/xml")

	var out queryResultsXML
	for _, v := range result.Variables {
		out.Head.Variables = append(out.Head.Variables, struct {
			Name string `xml:"name,attr"`
		}{Name: v})
	}
	for _, binding := range result.Bindings {
		var row rowXML
		for _, v := range result.Variables {
			if val, ok := binding[v]; ok {
				row.Bindings = append(row.Bindings, bindingXML{Name: v, Value: fmt.Sprint(val)})
			}
		}
		out.Rows = append(out.Rows, row)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")
	w.Write([]byte(xml.Header))
	return encoder.Encode(out)
}

func (h *QueryHandler) writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
