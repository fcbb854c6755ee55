/*
# Module: pkg/viz/mermaid.go
Mermaid flowchart rendering of a triple neighborhood.

Renders the same neighborhood walk as dot.go, in Mermaid's flowchart
syntax, for embedding in Markdown (README diagrams, docs) without a
GraphViz install.

## Linked Modules
- [dot](./dot.go) - Shared neighborhood walk and VizOptions

## Tags
viz, mermaid

## Exports
MermaidOptions, GenerateMermaid, GenerateMermaidMarkdown

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#mermaid.go> a code:Module ;
    code:name "pkg/viz/mermaid.go" ;
    code:description "Mermaid flowchart rendering of a triple neighborhood" ;
    code:language "go" ;
    code:layer "viz" ;
    code:linksTo <./dot.go> ;
    code:exports <#MermaidOptions>, <#GenerateMermaid>, <#GenerateMermaidMarkdown> ;
    code:tags "viz", "mermaid" .
<!-- End LinkedDoc RDF -->
*/

package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/justin4957/graphfs/pkg/graphdb"
)

// MermaidOptions configures Mermaid flowchart rendering.
type MermaidOptions struct {
	// Direction is a Mermaid flowchart direction (LR, TB, RL, BT).
	Direction string
	Title     string
}

func mermaidNodeID(id string) string {
	return strings.TrimPrefix(id, "n")
}

func mermaidSanitize(label string) string {
	label = strings.ReplaceAll(label, `"`, `&quot;`)
	label = strings.ReplaceAll(label, "\n", " ")
	return label
}

// GenerateMermaid renders g's neighborhood (per vizOpts) as a Mermaid
// flowchart.
func GenerateMermaid(g graphdb.Graph, vizOpts VizOptions, opts MermaidOptions) (string, error) {
	triples := neighborhood(g, vizOpts)

	direction := opts.Direction
	if direction == "" {
		direction = "LR"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "flowchart %s\n", direction)

	sort.Slice(triples, func(i, j int) bool {
		return fmt.Sprint(triples[i]) < fmt.Sprint(triples[j])
	})

	written := map[string]bool{}
	for _, t := range triples {
		for _, v := range []interface{}{t.S, t.O} {
			id := mermaidNodeID(nodeID(v))
			if written[id] {
				continue
			}
			written[id] = true
			fmt.Fprintf(&b, "  %s[%q]\n", id, mermaidSanitize(nodeLabel(v)))
		}
	}
	for _, t := range triples {
		fmt.Fprintf(&b, "  %s -->|%s| %s\n",
			mermaidNodeID(nodeID(t.S)), mermaidSanitize(nodeLabel(t.P)), mermaidNodeID(nodeID(t.O)))
	}

	return b.String(), nil
}

// GenerateMermaidMarkdown wraps GenerateMermaid's output in a fenced
// ```mermaid code block, with an optional heading from opts.Title.
func GenerateMermaidMarkdown(g graphdb.Graph, vizOpts VizOptions, opts MermaidOptions) (string, error) {
	diagram, err := GenerateMermaid(g, vizOpts, opts)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if opts.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	}
	fmt.Fprintf(&b, "```mermaid\n%s```\n", diagram)
	return b.String(), nil
}
