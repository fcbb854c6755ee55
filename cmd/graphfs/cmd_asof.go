/*
# Module: cmd/graphfs/cmd_asof.go
As-of command implementation.

Reports the transaction number, timestamp, and triple count of a
historical database value, without executing a query against it.

## Linked Modules
- [root](./root.go) - Root command
- [../../pkg/conn](../../pkg/conn/conn.go) - AsOf, DB

## Tags
cli, command, asof

## Exports
asOfCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_asof.go> a code:Module ;
    code:name "cmd/graphfs/cmd_asof.go" ;
    code:description "As-of command implementation" ;
    code:tags "cli", "command", "asof" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/cli"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/spf13/cobra"
)

var asOfHistory bool

var asOfCmd = &cobra.Command{
	Use:   "as-of <t>",
	Short: "Inspect a historical database value",
	Long: `Inspect a historical database value without querying it.

<t> is a transaction number or an RFC3339 timestamp.

Examples:
  graphfs as-of 3
  graphfs as-of 2026-07-01T00:00:00Z
  graphfs as-of 3 --history`,
	Args: cobra.ExactArgs(1),
	RunE: runAsOf,
}

func init() {
	asOfCmd.Flags().BoolVar(&asOfHistory, "history", false, "List every prior database value leading up to t")
}

func runAsOf(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

	asOfVal, err := parseAsOf(args[0])
	if err != nil {
		return err
	}

	sess, err := currentSession(cmd)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer sess.Close()

	current, err := sess.conn.Db()
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}

	db := conn.AsOf(current, asOfVal)
	describeDB(out, db)

	if asOfHistory {
		out.Header("History (oldest first)")
		for _, h := range db.History {
			describeDB(out, h)
		}
	}
	return nil
}

func describeDB(out *cli.OutputFormatter, db conn.DB) {
	count := 0
	for range db.Graph.Resolve(store.Blank, store.Blank, store.Blank) {
		count++
	}
	out.KeyValue("t", fmt.Sprintf("%d", db.T))
	out.KeyValue("timestamp", db.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	out.KeyValue("kind", db.Graph.Kind().String())
	out.KeyValue("triples", fmt.Sprintf("%d", count))
	out.Separator()
}
