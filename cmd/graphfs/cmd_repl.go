/*
# Module: cmd/graphfs/cmd_repl.go
CLI command for interactive REPL.

Implements the 'graphfs repl' command for interactive query sessions.

## Linked Modules
- [../../pkg/repl](../../pkg/repl/repl.go) - REPL implementation
- [session](./session.go) - Connection lifecycle

## Tags
cli, repl, commands

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_repl.go> a code:Module ;
    code:name "cmd/graphfs/cmd_repl.go" ;
    code:description "CLI command for interactive REPL" ;
    code:tags "cli", "repl", "commands" .
<!-- End LinkedDoc RDF -->
*/

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/justin4957/graphfs/pkg/repl"
	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:     "repl",
	Aliases: []string{"interactive"},
	Short:   "Start interactive REPL for queries",
	Long: `Start an interactive Read-Eval-Print Loop for exploring the graph.

The REPL provides an interactive shell for executing find/where
queries with:
- Multi-line query editing (brace-depth aware)
- Command history (up/down arrows)
- Tab completion
- Multiple output formats (table, JSON, CSV)
- Syntax highlighting and time travel via .asof

REPL Commands:
  .help               Show help and available commands
  .format [fmt]       Change output format (table, json, csv)
  .load <file>        Load and execute query from file
  .asof <t>           Pin the session to a historical database value
  .history            Show query history
  .clear              Clear screen
  .exit               Exit REPL (or Ctrl+D)

Examples:
  graphfs repl
  graphfs repl --db sys:multi-graph://scratch`,
	RunE: runREPL,
}

func runREPL(cmd *cobra.Command, args []string) error {
	sess, err := currentSession(cmd)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	replConfig := &repl.Config{
		HistoryFile: filepath.Join(os.TempDir(), ".graphfs_history"),
		Prompt:      "graphfs> ",
		NoColor:     noColor,
		PageSize:    25,
		Paginate:    true,
	}

	r, err := repl.New(sess.conn, replConfig)
	if err != nil {
		sess.Close()
		return fmt.Errorf("failed to create REPL: %w", err)
	}

	err = r.Run()
	closeErr := sess.Close()
	if err != nil {
		return err
	}
	return closeErr
}
