/*
# Module: cmd/graphfs/cmd_transact.go
Transact command implementation.

Parses a small transact-data text syntax into txdata.Statement values
and commits them as one transaction.

Each non-blank, non-comment line is:

	<op> <entity> <attribute> <value>

op is `+` (assert) or `-` (retract). entity is `tempid:<name>` for a
new entity (consistent across the whole payload) or `@<ident>` to
reference an existing entity by its :db/ident value. attribute is a
`:namespace/name` keyword. value is a quoted string, a bare number,
true/false, or another entity reference (`tempid:<name>` / `@<ident>`).

## Linked Modules
- [root](./root.go) - Root command
- [session](./session.go) - Connection lifecycle
- [../../pkg/txdata](../../pkg/txdata/txdata.go) - Statement, Build

## Tags
cli, command, transact

## Exports
transactCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_transact.go> a code:Module ;
    code:name "cmd/graphfs/cmd_transact.go" ;
    code:description "Transact command implementation" ;
    code:tags "cli", "command", "transact" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/cli"
	"github.com/justin4957/graphfs/pkg/entity"
	"github.com/justin4957/graphfs/pkg/graphdb"
	"github.com/justin4957/graphfs/pkg/txdata"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var transactFile string

var transactCmd = &cobra.Command{
	Use:   "transact",
	Short: "Commit facts to the graph",
	Long: `Commit one transaction of assertions/retractions to the graph.

Statement syntax, one per line:

  + tempid:alice :person/name "Alice"
  + tempid:alice :person/age 30
  + tempid:alice :person/knows @bob
  - @alice :person/age 30

Examples:
  graphfs transact --file facts.txt
  echo '+ tempid:alice :person/name "Alice"' | graphfs transact`,
	RunE: runTransact,
}

func init() {
	transactCmd.Flags().StringVarP(&transactFile, "file", "f", "", "Read statements from file (default: stdin)")
}

func runTransact(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

	var r *bufio.Scanner
	if transactFile != "" {
		f, err := os.Open(transactFile)
		if err != nil {
			return fmt.Errorf("failed to open statements file: %w", err)
		}
		defer f.Close()
		r = bufio.NewScanner(f)
	} else {
		r = bufio.NewScanner(os.Stdin)
	}

	var rawLines []string
	for r.Scan() {
		line := strings.TrimSpace(r.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rawLines = append(rawLines, line)
	}
	if err := r.Err(); err != nil {
		return fmt.Errorf("failed to read statements: %w", err)
	}
	if len(rawLines) == 0 {
		return fmt.Errorf("no statements given")
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

	var bar *progressbar.ProgressBar
	if !quiet {
		bar = progressbar.Default(int64(len(rawLines)), "parsing statements")
	}

	stmts := make([]txdata.Statement, 0, len(rawLines))
	for _, line := range rawLines {
		stmt, err := parseTransactLine(line, db.Graph)
		if err != nil {
			return fmt.Errorf("invalid statement %q: %w", line, err)
		}
		stmts = append(stmts, stmt)
		if bar != nil {
			bar.Add(1)
		}
	}

	assertions, retractions, tempids, err := txdata.Build(stmts)
	if err != nil {
		return fmt.Errorf("failed to build transaction: %w", err)
	}

	report, err := sess.transact(func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
		return g.Transact(tx, assertions, retractions), assertions, tempids, nil
	}, assertions, retractions)
	if err != nil {
		return fmt.Errorf("transact failed: %w", err)
	}

	out.Success("Committed t=%d: %d asserted, %d retracted", report.DBAfter.T, len(assertions), len(retractions))
	for name, n := range tempids {
		out.KeyValue(name, n.String())
	}
	return nil
}

// parseTransactLine parses one transact-data line against g, resolving
// @ident entity references to existing nodes.
func parseTransactLine(line string, g graphdb.Graph) (txdata.Statement, error) {
	fields, err := splitQuoted(line)
	if err != nil {
		return txdata.Statement{}, err
	}
	if len(fields) != 4 {
		return txdata.Statement{}, fmt.Errorf("expected 4 fields, got %d", len(fields))
	}

	var op txdata.Op
	switch fields[0] {
	case "+":
		op = txdata.Add
	case "-":
		op = txdata.Retract
	default:
		return txdata.Statement{}, fmt.Errorf("op must be + or -, got %q", fields[0])
	}

	e, err := resolveRef(fields[1], g)
	if err != nil {
		return txdata.Statement{}, fmt.Errorf("entity: %w", err)
	}

	if !strings.HasPrefix(fields[2], ":") {
		return txdata.Statement{}, fmt.Errorf("attribute must be a :namespace/name keyword, got %q", fields[2])
	}
	a := store.Keyword(fields[2])

	v, err := parseTransactValue(fields[3], g)
	if err != nil {
		return txdata.Statement{}, fmt.Errorf("value: %w", err)
	}

	return txdata.Statement{Op: op, E: e, A: a, V: v}, nil
}

// resolveRef resolves an entity-reference token: tempid:<name> stays a
// tempid string, @<ident> resolves to an existing node.
func resolveRef(tok string, g graphdb.Graph) (store.Value, error) {
	switch {
	case strings.HasPrefix(tok, "tempid:"):
		return strings.TrimPrefix(tok, "tempid:"), nil
	case strings.HasPrefix(tok, "@"):
		ident := strings.TrimPrefix(tok, "@")
		n, ok := entity.ResolveIdent(g, ident)
		if !ok {
			return nil, fmt.Errorf("no entity with ident %q", ident)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected tempid:<name> or @<ident>, got %q", tok)
	}
}

// parseTransactValue parses a literal or entity-reference value.
func parseTransactValue(tok string, g graphdb.Graph) (store.Value, error) {
	if strings.HasPrefix(tok, "tempid:") || strings.HasPrefix(tok, "@") {
		return resolveRef(tok, g)
	}
	if strings.HasPrefix(tok, `"`) && strings.HasSuffix(tok, `"`) && len(tok) >= 2 {
		return tok[1 : len(tok)-1], nil
	}
	if strings.HasPrefix(tok, ":") {
		return store.Keyword(tok), nil
	}
	switch tok {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}
	return tok, nil
}

// splitQuoted splits s on space characters, treating a double-quoted region
// as one field.
func splitQuoted(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
			cur.WriteByte(c)
		case c == ' ' && !inQuote:
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quoted value")
	}
	flush()
	return fields, nil
}
