/*
# Module: cmd/graphfs/cmd_init.go
Init command implementation.

Initializes graphfs in a directory by creating the configuration file
and the directory a durable connection's bbolt store lives in.

## Linked Modules
- [root](./root.go) - Root command
- [config](./config.go) - Configuration handling

## Tags
cli, command, init

## Exports
initCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#cmd_init.go> a code:Module ;

	code:name "cmd/graphfs/cmd_init.go" ;
	code:description "Init command implementation" ;
	code:language "go" ;
	code:layer "cli" ;
	code:linksTo <./root.go>, <./config.go> ;
	code:exports <#initCmd> ;
	code:tags "cli", "command", "init" .

<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// initCmd represents the init command.
var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize graphfs in a directory",
	Long: `Initialize graphfs in a directory by creating the .graphfs
configuration directory and config file. The durable connection's
store file is not created here; it is created inside .graphfs the
first time a durable connection is opened.

Examples:
  graphfs init                  # Initialize in current directory
  graphfs init /path/to/project # Initialize in specific directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	targetPath := "."
	if len(args) > 0 {
		targetPath = args[0]
	}

	absPath, err := filepath.Abs(targetPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return fmt.Errorf("directory does not exist: %s", absPath)
	}

	graphfsDir := filepath.Join(absPath, ".graphfs")
	if err := os.MkdirAll(graphfsDir, 0755); err != nil {
		return fmt.Errorf("failed to create .graphfs directory: %w", err)
	}

	configPath := filepath.Join(graphfsDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := saveDefaultConfig(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		fmt.Printf("Created config file: %s\n", configPath)
	} else {
		fmt.Printf("Config file already exists: %s\n", configPath)
	}

	fmt.Printf("\ngraphfs initialized in %s\n", absPath)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Review and customize .graphfs/config.yaml")
	fmt.Println("  2. Run 'graphfs transact' to assert your first facts")
	fmt.Println("  3. Run 'graphfs query' or 'graphfs repl' to explore the graph")

	return nil
}
