/*
# Module: cmd/graphfs/main.go
Main CLI entry point for graphfs.

## Linked Modules
- [root](./root.go) - Root cobra command

## Tags
cli, main, entrypoint

## Exports
main

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<this> a code:Module ;
    code:name "cmd/graphfs/main.go" ;
    code:description "Main CLI entry point for graphfs" ;
    code:tags "cli", "main", "entrypoint" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"
	"os"
)

func main() {
	err := rootCmd.Execute()
	sharedRegistry.Shutdown()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
