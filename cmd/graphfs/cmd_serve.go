/*
# Module: cmd/graphfs/cmd_serve.go
CLI command to start the graphfs HTTP server.

Starts the HTTP server exposing the query, GraphQL, and REST endpoints
over a single connection.

## Linked Modules
- [../../pkg/server](../../pkg/server/server.go) - HTTP server
- [session](./session.go) - Connection lifecycle

## Tags
cli, server, command

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_serve.go> a code:Module ;
    code:name "cmd/graphfs/cmd_serve.go" ;
    code:description "CLI command to start the graphfs HTTP server" ;
    code:tags "cli", "server", "command" .
<!-- End LinkedDoc RDF -->
*/

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/justin4957/graphfs/pkg/server"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
	serveNoGraphQL bool
	serveNoREST    bool
	serveNoCache   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the graphfs HTTP server",
	Long: `Start the HTTP server exposing /query, /graphql, and /api/v1 REST
endpoints over the connection named by --db.

Examples:
  graphfs serve
  graphfs serve --port 9000
  graphfs serve --host 0.0.0.0 --port 8080
  graphfs serve --db sys:multi-graph://scratch

  curl 'http://localhost:8080/query?query={:find+[?e]+:where+[[?e+:person/name+"Alice"]]}'`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "localhost", "Host to bind server to")
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	serveCmd.Flags().BoolVar(&serveNoGraphQL, "no-graphql", false, "Disable the /graphql endpoint")
	serveCmd.Flags().BoolVar(&serveNoREST, "no-rest", false, "Disable the /api/v1 REST endpoints")
	serveCmd.Flags().BoolVar(&serveNoCache, "no-cache", false, "Disable the query result cache")
}

func runServe(cmd *cobra.Command, args []string) error {
	sess, err := currentSession(cmd)
	if err != nil {
		return fmt.Errorf("failed to open connection: %w", err)
	}

	serverConfig := server.DefaultConfig()
	serverConfig.Host = serveHost
	serverConfig.Port = servePort
	serverConfig.EnableGraphQL = !serveNoGraphQL
	serverConfig.EnableREST = !serveNoREST
	serverConfig.EnableCache = !serveNoCache
	serverConfig.EnableCORS = true

	srv := server.NewServer(serverConfig, sess.conn, nil)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		fmt.Println("\nShutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Stop(ctx); err != nil {
			log.Printf("Error during shutdown: %v", err)
		}
		if err := sess.Close(); err != nil {
			log.Printf("Error closing session: %v", err)
		}
		os.Exit(0)
	}()

	if err := srv.Start(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
