/*
# Module: cmd/graphfs/cmd_entity.go
Entity command implementation.

Materializes an entity as a document, optionally pinned to a
historical database value.

## Linked Modules
- [root](./root.go) - Root command
- [../../pkg/entity](../../pkg/entity/entity.go) - Materialize, ResolveIdent

## Tags
cli, command, entity

## Exports
entityCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_entity.go> a code:Module ;
    code:name "cmd/graphfs/cmd_entity.go" ;
    code:description "Entity command implementation" ;
    code:tags "cli", "command", "entity" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"encoding/json"
	"fmt"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/cli"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/entity"
	"github.com/spf13/cobra"
)

var (
	entityAsOf   string
	entityNested bool
)

var entityCmd = &cobra.Command{
	Use:   "entity <ident>",
	Short: "Materialize an entity as a document",
	Long: `Materialize an entity as a document.

<ident> may be a node id as printed by transact (e.g. _:n42) or a
:db/ident value to look up.

Examples:
  graphfs entity :alice
  graphfs entity _:n42 --nested
  graphfs entity :alice --as-of 3`,
	Args: cobra.ExactArgs(1),
	RunE: runEntity,
}

func init() {
	entityCmd.Flags().StringVar(&entityAsOf, "as-of", "", "Pin the read to this historical transaction number or RFC3339 timestamp")
	entityCmd.Flags().BoolVar(&entityNested, "nested", false, "Expand referenced entities inline instead of as placeholders")
}

func runEntity(cmd *cobra.Command, args []string) error {
	out := cli.NewOutputFormatter(quiet, verbose, noColor)

	sess, err := currentSession(cmd)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}
	defer sess.Close()

	db, err := sess.conn.Db()
	if err != nil {
		return fmt.Errorf("failed to read database: %w", err)
	}
	if entityAsOf != "" {
		asOfVal, err := parseAsOf(entityAsOf)
		if err != nil {
			return err
		}
		db = conn.AsOf(db, asOfVal)
	}

	var ident store.Value = args[0]
	if node, err := store.ParseNode(args[0]); err == nil {
		ident = node
	}
	n, ok := entity.ResolveIdent(db.Graph, ident)
	if !ok {
		return fmt.Errorf("no entity with ident %q", args[0])
	}

	doc := entity.Materialize(db.Graph, n, entity.Options{Nested: entityNested})

	data, err := json.MarshalIndent(jsonDoc(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entity: %w", err)
	}

	out.Debug("Materialized %s at t=%d", n.String(), db.T)
	fmt.Println(string(data))
	return nil
}

// jsonDoc recursively converts a materialized document into plain
// JSON-encodable values; store.Node and store.Keyword carry unexported
// fields json.Marshal can't reach on its own.
func jsonDoc(v store.Value) interface{} {
	switch t := v.(type) {
	case store.Node:
		return t.String()
	case store.Keyword:
		return string(t)
	case map[string]store.Value:
		out := make(map[string]interface{}, len(t))
		for k, val := range t {
			out[k] = jsonDoc(val)
		}
		return out
	case []store.Value:
		out := make([]interface{}, len(t))
		for i, val := range t {
			out[i] = jsonDoc(val)
		}
		return out
	default:
		return t
	}
}
