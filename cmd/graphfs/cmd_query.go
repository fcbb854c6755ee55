/*
# Module: cmd/graphfs/cmd_query.go
Query command implementation.

Executes find/where queries against a connection's current (or
historical, via --as-of) database value.

## Linked Modules
- [root](./root.go) - Root command
- [output](./output.go) - Output formatting
- [../../pkg/query](../../pkg/query/query.go) - Query parser and executor

## Tags
cli, command, query

## Exports
queryCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#cmd_query.go> a code:Module ;

	code:name "cmd/graphfs/cmd_query.go" ;
	code:description "Query command implementation" ;
	code:language "go" ;
	code:layer "cli" ;
	code:linksTo <./root.go>, <./output.go>, <../../pkg/query/query.go> ;
	code:exports <#queryCmd> ;
	code:tags "cli", "command", "query" .

<!-- End LinkedDoc RDF -->
*/
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/cli"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/query"
	"github.com/spf13/cobra"
)

var (
	queryFile   string
	queryFormat string
	queryOutput string
	queryAsOf   string
)

// queryCmd represents the query command.
var queryCmd = &cobra.Command{
	Use:   "query <query>",
	Short: "Execute a find/where query against the graph",
	Long: `Execute a find/where query against the graph.

Results can be formatted as table, JSON, or CSV, and pinned to a
historical database value with --as-of (a transaction number or an
RFC3339 timestamp).

Examples:
  # Inline query
  graphfs query '{:find [?name] :where [[?e :person/name ?name]]}'

  # Query from file
  graphfs query --file queries/people.edn

  # Format as JSON
  graphfs query '{:find [?e] :where [[?e :person/name "Alice"]]}' --format json

  # Query a historical value
  graphfs query --as-of 3 '{:find [?name] :where [[?e :person/name ?name]]}'`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "Read query from file")
	queryCmd.Flags().StringVar(&queryFormat, "format", "table", "Output format: table, json, csv")
	queryCmd.Flags().StringVarP(&queryOutput, "output", "o", "", "Write results to file")
	queryCmd.Flags().StringVar(&queryAsOf, "as-of", "", "Pin the read to this historical transaction number or RFC3339 timestamp")
}

func runQuery(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

	var queryString string
	if queryFile != "" {
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return fmt.Errorf("failed to read query file: %w", err)
		}
		queryString = string(data)
	} else if len(args) > 0 {
		queryString = args[0]
	} else {
		return fmt.Errorf("query string or --file required")
	}

	parsedQuery, err := query.Parse(queryString)
	if err != nil {
		return fmt.Errorf("query parse failed: %w", err)
	}

	sess, err := currentSession(cmd)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer sess.Close()

	db, err := sess.conn.Db()
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}
	if queryAsOf != "" {
		asOfVal, err := parseAsOf(queryAsOf)
		if err != nil {
			return err
		}
		db = conn.AsOf(db, asOfVal)
	}

	out.Debug("Querying database at t=%d", db.T)

	result, err := query.Execute(db.Graph, parsedQuery, nil, nil)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	var output string
	switch queryFormat {
	case "json":
		output, err = formatJSON(result)
	case "csv":
		output, err = formatCSV(result)
	case "table":
		output, err = formatTable(result)
	default:
		return fmt.Errorf("unsupported format: %s", queryFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}

	if queryOutput != "" {
		if err := os.WriteFile(queryOutput, []byte(output), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		out.Success("Results written to %s", queryOutput)
	} else {
		fmt.Println(output)
	}

	return nil
}

// formatJSON formats query results as JSON.
func formatJSON(result *query.QueryResult) (string, error) {
	bindings := make([]map[string]interface{}, 0, len(result.Bindings))
	for _, b := range result.Bindings {
		row := make(map[string]interface{}, len(result.Variables))
		for _, v := range result.Variables {
			if val, ok := b[v]; ok {
				row[v] = jsonValue(val)
			}
		}
		bindings = append(bindings, row)
	}

	data, err := json.MarshalIndent(map[string]interface{}{
		"variables": result.Variables,
		"bindings":  bindings,
		"count":     result.Count,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// jsonValue renders a store.Value for JSON encoding; store.Node and
// store.Keyword carry unexported fields json.Marshal can't reach.
func jsonValue(v store.Value) interface{} {
	switch t := v.(type) {
	case store.Node:
		return t.String()
	case store.Keyword:
		return string(t)
	default:
		return t
	}
}

// formatCSV formats query results as CSV.
func formatCSV(result *query.QueryResult) (string, error) {
	if len(result.Bindings) == 0 {
		return "", nil
	}

	var rows [][]string
	rows = append(rows, result.Variables)
	for _, binding := range result.Bindings {
		row := make([]string, len(result.Variables))
		for i, variable := range result.Variables {
			if value, ok := binding[variable]; ok {
				row[i] = fmt.Sprint(value)
			}
		}
		rows = append(rows, row)
	}

	var csvData string
	writer := csv.NewWriter(&stringWriter{&csvData})
	if err := writer.WriteAll(rows); err != nil {
		return "", err
	}
	writer.Flush()

	return csvData, writer.Error()
}

// stringWriter implements io.Writer over a string.
type stringWriter struct {
	s *string
}

func (sw *stringWriter) Write(p []byte) (n int, err error) {
	*sw.s += string(p)
	return len(p), nil
}
