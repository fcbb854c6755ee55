/*
# Module: cmd/graphfs/root.go
Root command for the graphfs CLI.

Defines the root command with global flags and version information.

## Linked Modules
- [main](./main.go) - CLI entry point
- [config](./config.go) - Configuration handling
- [session](./session.go) - Connection lifecycle

## Tags
cli, root, cobra

## Exports
rootCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#root.go> a code:Module ;

	code:name "cmd/graphfs/root.go" ;
	code:description "Root command for the graphfs CLI" ;
	code:language "go" ;
	code:layer "cli" ;
	code:linksTo <./main.go>, <./config.go>, <./session.go> ;
	code:exports <#rootCmd> ;
	code:tags "cli", "root", "cobra" .

<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	// Version is the current version of graphfs.
	Version = "0.3.0"
	// Name is the application name.
	Name = "graphfs"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	quiet   bool
	dbURI   string
	dbStore string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "graphfs",
	Short: "Immutable, temporally-versioned triple-store database",
	Long: `graphfs - an in-process, immutable, temporally-versioned graph
database built on (subject, predicate, object) triples.

Transact facts, query them with a Datalog-style find/where language,
materialize entities as documents, and time-travel across every past
database value. Serves queries over HTTP (query/GraphQL/REST) and an
interactive REPL.

Run 'graphfs <command> --help' for details on each command.`,
	Version: Version,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .graphfs/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "minimal output (for scripting)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&dbURI, "db", "sys:durable://default", "connection URI (sys:simple-graph|multi-graph|durable://name)")
	rootCmd.PersistentFlags().StringVar(&dbStore, "store", ".graphfs/store.db", "bbolt file backing a durable connection")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(transactCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(entityCmd)
	rootCmd.AddCommand(asOfCmd)
	rootCmd.AddCommand(replCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(vizCmd)
	rootCmd.AddCommand(versionCmd)
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("%s v%s\n", Name, Version)
	},
}

// currentSession opens the database named by the --db/--store flags,
// falling back to the config file's db section for a flag not given.
func currentSession(cmd *cobra.Command) (*session, error) {
	cfg, err := loadConfig(".graphfs/config.yaml")
	if err != nil {
		return nil, err
	}
	uri, storePath := dbURI, dbStore
	if !cmd.Flags().Changed("db") && cfg.DB.URI != "" {
		uri = cfg.DB.URI
	}
	if !cmd.Flags().Changed("store") && cfg.DB.StorePath != "" {
		storePath = cfg.DB.StorePath
	}
	return openSession(uri, storePath, cfg.DB.SnapshotEvery)
}
