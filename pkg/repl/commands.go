/*
# Module: pkg/repl/commands.go
REPL command handlers.

Implements REPL commands like .help, .format, .asof, etc.

## Linked Modules
- [repl](./repl.go) - REPL core

## Tags
repl, commands, cli

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#commands.go> a code:Module ;
    code:name "pkg/repl/commands.go" ;
    code:description "REPL command handlers" ;
    code:language "go" ;
    code:layer "repl" ;
    code:linksTo <./repl.go> ;
    code:tags "repl", "commands", "cli" .
<!-- End LinkedDoc RDF -->
*/

package repl

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/conn"
)

func (r *REPL) handleCommand(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}
	cmd, args := parts[0], parts[1:]

	switch cmd {
	case ".help":
		return r.cmdHelp(args)
	case ".format":
		return r.cmdFormat(args)
	case ".load":
		return r.cmdLoad(args)
	case ".save":
		return r.cmdSave(args)
	case ".history":
		return r.cmdHistory(args)
	case ".clear":
		return r.cmdClear(args)
	case ".schema":
		return r.cmdSchema(args)
	case ".stats":
		return r.cmdStats(args)
	case ".asof":
		return r.cmdAsOf(args)
	case ".now":
		return r.cmdNow(args)
	case ".exit", ".quit":
		return io.EOF
	default:
		return fmt.Errorf("unknown command: %s (type .help for available commands)", cmd)
	}
}

func (r *REPL) cmdHelp(args []string) error {
	help := `
GraphFS REPL Commands:
=====================

Query syntax:
  {:find [?x ?y] :where [[?x :a/knows ?y]]}

REPL Commands:
  .help               Show this help message
  .format [fmt]       Change output format (table, json, csv)
  .load <file>        Load and execute a query from file
  .save <file>        Save last query to file
  .history            Show query history
  .clear              Clear screen
  .schema             Show distinct predicates seen in the graph
  .stats              Show graph statistics
  .asof <rfc3339|int> Pin the view to a historical database
  .now                Return to the live tip
  .exit               Exit REPL (or Ctrl+D)

Query Features:
  - Multi-line queries: unbalanced braces continue to the next line
  - Tab completion: Press Tab for command and clause completion
  - History: Up/Down arrows navigate query history
`
	fmt.Println(help)
	return nil
}

func (r *REPL) cmdFormat(args []string) error {
	if len(args) == 0 {
		r.printInfo(fmt.Sprintf("Current format: %s", r.format))
		r.printInfo("Available formats: table, json, csv")
		return nil
	}
	format := strings.ToLower(args[0])
	switch format {
	case "table", "json", "csv":
		r.format = format
		r.printSuccess(fmt.Sprintf("Output format set to: %s", format))
	default:
		return fmt.Errorf("unknown format: %s (available: table, json, csv)", format)
	}
	return nil
}

func (r *REPL) cmdLoad(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .load <file>")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	r.printInfo(fmt.Sprintf("Loaded query from %s", args[0]))
	r.executeQuery(string(data))
	return nil
}

func (r *REPL) cmdSave(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .save <file>")
	}
	if len(r.history) == 0 {
		return fmt.Errorf("no query in history to save")
	}
	last := r.history[len(r.history)-1]
	if err := os.WriteFile(args[0], []byte(last), 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	r.printSuccess(fmt.Sprintf("Saved last query to %s", args[0]))
	return nil
}

func (r *REPL) cmdHistory(args []string) error {
	if len(r.history) == 0 {
		r.printInfo("No query history")
		return nil
	}
	r.printInfo("Query History:")
	r.printInfo("==============")
	for i, q := range r.history {
		fmt.Printf("%d: %s\n", i+1, truncate(q, 80))
	}
	return nil
}

func (r *REPL) cmdClear(args []string) error {
	fmt.Print("\033[H\033[2J")
	return nil
}

func (r *REPL) cmdSchema(args []string) error {
	g, err := r.currentGraph()
	if err != nil {
		return err
	}
	predicates := map[string]int{}
	for row := range g.Resolve(store.Blank, store.Blank, store.Blank) {
		predicates[fmt.Sprint(row[1])]++
	}
	r.printInfo("Schema Information:")
	r.printInfo("==================")
	fmt.Println("\nPredicates seen:")
	for pred, count := range predicates {
		fmt.Printf("  %-30s (%d occurrences)\n", pred, count)
	}
	return nil
}

func (r *REPL) cmdStats(args []string) error {
	db, err := r.conn.Db()
	if err != nil {
		return err
	}
	g, err := r.currentGraph()
	if err != nil {
		return err
	}
	count := 0
	for range g.Resolve(store.Blank, store.Blank, store.Blank) {
		count++
	}
	r.printInfo("Graph Statistics:")
	r.printInfo("=================")
	fmt.Printf("Kind: %s\n", g.Kind())
	fmt.Printf("Total Triples: %d\n", count)
	fmt.Printf("Transaction: %d\n", db.T)
	fmt.Printf("History Depth: %d\n", len(db.History))
	return nil
}

func (r *REPL) cmdAsOf(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: .asof <rfc3339 timestamp|transaction index>")
	}
	if n, err := parsePageNumber(args[0]); err == nil {
		t := time.Time{}
		db, dbErr := r.conn.Db()
		if dbErr != nil {
			return dbErr
		}
		asOf := conn.AsOf(db, int64(n))
		t = asOf.Timestamp
		r.asOf = &t
		r.printSuccess(fmt.Sprintf("Pinned to transaction %d", n))
		return nil
	}
	ts, err := time.Parse(time.RFC3339, args[0])
	if err != nil {
		return fmt.Errorf("invalid timestamp or transaction index: %s", args[0])
	}
	r.asOf = &ts
	r.printSuccess(fmt.Sprintf("Pinned to %s", ts))
	return nil
}

func (r *REPL) cmdNow(args []string) error {
	r.asOf = nil
	r.printSuccess("Returned to the live tip")
	return nil
}

func truncate(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
