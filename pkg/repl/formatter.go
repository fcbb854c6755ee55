/*
# Module: pkg/repl/formatter.go
Output formatters for REPL results.

Provides formatting for query results in table, JSON, and CSV formats.

## Linked Modules
- [../query](../query/executor.go) - Query result types
- [repl](./repl.go) - REPL core

## Tags
repl, formatter, output

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#formatter.go> a code:Module ;
    code:name "pkg/repl/formatter.go" ;
    code:description "Output formatters for REPL results" ;
    code:language "go" ;
    code:layer "repl" ;
    code:linksTo <../query/executor.go>, <./repl.go> ;
    code:tags "repl", "formatter", "output" .
<!-- End LinkedDoc RDF -->
*/

package repl

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/justin4957/graphfs/pkg/query"
)

func (r *REPL) formatResult(result *query.QueryResult) error {
	if result == nil || len(result.Bindings) == 0 {
		r.printInfo("No results")
		return nil
	}
	switch r.format {
	case "table":
		return r.formatTable(result)
	case "json":
		return r.formatJSON(result)
	case "csv":
		return r.formatCSV(result)
	default:
		return fmt.Errorf("unknown format: %s", r.format)
	}
}

func (r *REPL) formatTable(result *query.QueryResult) error {
	vars := result.Variables
	if len(vars) == 0 {
		r.printInfo("No results")
		return nil
	}

	colWidths := make(map[string]int, len(vars))
	for _, v := range vars {
		colWidths[v] = len(v)
	}
	for _, binding := range result.Bindings {
		for _, v := range vars {
			if val, ok := binding[v]; ok {
				if l := len(formatValue(val)); l > colWidths[v] {
					colWidths[v] = l
				}
			}
		}
	}
	for v := range colWidths {
		if colWidths[v] > 50 {
			colWidths[v] = 50
		}
	}

	var header []string
	for _, v := range vars {
		header = append(header, padRight(v, colWidths[v]))
	}
	if r.config.NoColor {
		fmt.Println(strings.Join(header, " | "))
	} else {
		color.New(color.FgCyan, color.Bold).Println(strings.Join(header, " | "))
	}
	fmt.Println(strings.Repeat("-", sumWidths(colWidths, len(vars))))

	for _, binding := range result.Bindings {
		var row []string
		for _, v := range vars {
			val := ""
			if bv, ok := binding[v]; ok {
				val = formatValue(bv)
				if len(val) > 50 {
					val = val[:47] + "..."
				}
			}
			row = append(row, padRight(val, colWidths[v]))
		}
		fmt.Println(strings.Join(row, " | "))
	}
	return nil
}

func (r *REPL) formatJSON(result *query.QueryResult) error {
	out := make([]map[string]string, len(result.Bindings))
	for i, binding := range result.Bindings {
		row := make(map[string]string, len(binding))
		for k, v := range binding {
			row[k] = formatValue(v)
		}
		out[i] = row
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func (r *REPL) formatCSV(result *query.QueryResult) error {
	w := csv.NewWriter(r.rl.Stdout())
	if err := w.Write(result.Variables); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, binding := range result.Bindings {
		row := make([]string, len(result.Variables))
		for i, v := range result.Variables {
			if val, ok := binding[v]; ok {
				row[i] = formatValue(val)
			}
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(val interface{}) string {
	if val == nil {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

func sumWidths(widths map[string]int, numCols int) int {
	total := 0
	for _, w := range widths {
		total += w
	}
	total += (numCols - 1) * 3
	return total
}
