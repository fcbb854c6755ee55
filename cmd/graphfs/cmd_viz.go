/*
# Module: cmd/graphfs/cmd_viz.go
Graph visualization command implementation.

Renders a triple neighborhood as GraphViz DOT, or Mermaid for
Markdown embedding.

## Linked Modules
- [root](./root.go) - Root command
- [../../pkg/viz](../../pkg/viz/dot.go) - DOT/Mermaid rendering

## Tags
cli, command, viz

## Exports
vizCmd

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#cmd_viz.go> a code:Module ;
    code:name "cmd/graphfs/cmd_viz.go" ;
    code:description "Graph visualization command implementation" ;
    code:tags "cli", "command", "viz" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/justin4957/graphfs/pkg/cli"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/entity"
	"github.com/justin4957/graphfs/pkg/viz"
	"github.com/spf13/cobra"
)

var (
	vizRoot       string
	vizDepth      int
	vizRankdir    string
	vizTitle      string
	vizPredicates []string
	vizOutput     string
	vizFormat     string
	vizLayout     string
	vizAsOf       string
)

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Visualize a triple neighborhood",
	Long: `Render a neighborhood of the graph as a GraphViz DOT document or a
Mermaid flowchart.

With no --root, the whole graph is rendered. With --root, the walk
follows edges out to --depth hops, optionally restricted to
--predicate.

Output Formats:
  dot, svg, png, pdf - rendered via GraphViz's 'dot' family of tools
  mermaid            - raw Mermaid flowchart syntax (.mmd)
  md                 - Mermaid embedded in a fenced Markdown block

Examples:
  graphfs viz --output graph.dot
  graphfs viz --root :alice --depth 2 --output alice.svg
  graphfs viz --root :alice --predicate :person/knows --format md --output alice.md`,
	RunE: runViz,
}

func init() {
	vizCmd.Flags().StringVar(&vizRoot, "root", "", "Root entity ident to walk from (default: whole graph)")
	vizCmd.Flags().IntVar(&vizDepth, "depth", 2, "Hops to follow from --root")
	vizCmd.Flags().StringVar(&vizRankdir, "rankdir", "LR", "Graph direction (LR, TB, RL, BT)")
	vizCmd.Flags().StringVar(&vizTitle, "title", "", "Graph title")
	vizCmd.Flags().StringSliceVar(&vizPredicates, "predicate", nil, "Restrict traversal to these predicates")
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "graph.dot", "Output file path")
	vizCmd.Flags().StringVarP(&vizFormat, "format", "f", "", "Output format: dot, svg, png, pdf, mermaid, md (default: from --output extension)")
	vizCmd.Flags().StringVarP(&vizLayout, "layout", "l", "dot", "GraphViz layout engine (dot, neato, fdp, circo, twopi)")
	vizCmd.Flags().StringVar(&vizAsOf, "as-of", "", "Render a historical database value")
}

func runViz(cmd *cobra.Command, args []string) error {
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
	if vizAsOf != "" {
		asOfVal, err := parseAsOf(vizAsOf)
		if err != nil {
			return err
		}
		db = conn.AsOf(db, asOfVal)
	}

	opts := viz.VizOptions{
		Depth:      vizDepth,
		Rankdir:    vizRankdir,
		Title:      vizTitle,
		Predicates: vizPredicates,
	}
	if vizRoot != "" {
		n, ok := entity.ResolveIdent(db.Graph, vizRoot)
		if !ok {
			return fmt.Errorf("no entity with ident %q", vizRoot)
		}
		opts.Root = n
	}

	format := strings.ToLower(vizFormat)
	if format == "" {
		format = formatFromExt(vizOutput)
	}

	if format == "mermaid" || format == "md" {
		mermaidOpts := viz.MermaidOptions{Direction: vizRankdir, Title: vizTitle}
		var diagram string
		var err error
		if format == "md" {
			diagram, err = viz.GenerateMermaidMarkdown(db.Graph, opts, mermaidOpts)
		} else {
			diagram, err = viz.GenerateMermaid(db.Graph, opts, mermaidOpts)
		}
		if err != nil {
			return fmt.Errorf("failed to generate Mermaid diagram: %w", err)
		}
		if err := os.WriteFile(vizOutput, []byte(diagram), 0644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		out.Success("Mermaid diagram written to %s", vizOutput)
		return nil
	}

	dot, err := viz.GenerateDOT(db.Graph, opts)
	if err != nil {
		return fmt.Errorf("failed to generate DOT: %w", err)
	}

	renderOpts := viz.RenderOptions{Layout: vizLayout, Output: vizOutput, Format: viz.OutputFormat(format)}
	if err := viz.RenderToFile(dot, renderOpts); err != nil {
		return fmt.Errorf("failed to render visualization: %w", err)
	}

	out.Success("Visualization saved to %s", vizOutput)
	return nil
}

func formatFromExt(path string) string {
	switch {
	case strings.HasSuffix(path, ".mmd"):
		return "mermaid"
	case strings.HasSuffix(path, ".md"):
		return "md"
	case strings.HasSuffix(path, ".svg"):
		return "svg"
	case strings.HasSuffix(path, ".png"):
		return "png"
	case strings.HasSuffix(path, ".pdf"):
		return "pdf"
	default:
		return "dot"
	}
}
