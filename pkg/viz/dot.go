/*
# Module: pkg/viz/dot.go
GraphViz DOT rendering of a triple neighborhood.

Walks outward from a root node (or the whole graph, if no root is
given) and renders the triples reached as a labeled directed graph:
one DOT node per store.Value seen in a subject or object position, one
edge per triple labeled with its predicate.

## Linked Modules
- [../graphdb](../graphdb/graph.go) - Graph being visualized
- [../entity](../entity/entity.go) - isEntity-style node/value distinction

## Tags
viz, dot, graphviz

## Exports
VizOptions, GenerateDOT

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#dot.go> a code:Module ;
    code:name "pkg/viz/dot.go" ;
    code:description "GraphViz DOT rendering of a triple neighborhood" ;
    code:language "go" ;
    code:layer "viz" ;
    code:linksTo <../graphdb/graph.go>, <../entity/entity.go> ;
    code:exports <#VizOptions>, <#GenerateDOT> ;
    code:tags "viz", "dot", "graphviz" .
<!-- End LinkedDoc RDF -->
*/

package viz

import (
	"crypto/sha1"
	"fmt"
	"sort"
	"strings"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

// VizOptions configures neighborhood traversal and DOT rendering.
type VizOptions struct {
	// Root restricts the walk to the neighborhood of this node. The
	// zero Node (store.Node{}) means "walk the whole graph".
	Root store.Node
	// Depth bounds how many hops from Root are followed. Ignored when
	// Root is zero.
	Depth int
	// Rankdir is a GraphViz rankdir value (LR, TB, RL, BT).
	Rankdir string
	// Title labels the rendered graph.
	Title string
	// Predicates restricts traversal to these predicates when non-empty.
	Predicates []string
}

func hasRoot(opts VizOptions) bool {
	return opts.Root != (store.Node{})
}

// neighborhood walks g starting at opts.Root out to opts.Depth hops,
// following both outgoing and incoming edges, and returns every triple
// reached. With no Root, every triple in g is returned.
func neighborhood(g graphdb.Graph, opts VizOptions) []store.Triple {
	if !hasRoot(opts) {
		var all []store.Triple
		for row := range g.Resolve(store.Blank, store.Blank, store.Blank) {
			all = append(all, store.NewTriple(row[0], row[1], row[2]))
		}
		return all
	}

	allowed := map[string]bool{}
	for _, p := range opts.Predicates {
		allowed[p] = true
	}
	matchPred := func(p store.Value) bool {
		if len(allowed) == 0 {
			return true
		}
		return allowed[fmt.Sprint(p)]
	}

	depth := opts.Depth
	if depth <= 0 {
		depth = 2
	}

	seen := map[store.Value]bool{opts.Root: true}
	frontier := []store.Value{opts.Root}
	var triples []store.Triple
	seenTriple := map[store.Triple]bool{}

	for d := 0; d < depth && len(frontier) > 0; d++ {
		var next []store.Value
		for _, n := range frontier {
			// Resolve yields only the unbound slots: (p, o) here.
			for row := range g.Resolve(n, store.Blank, store.Blank) {
				if !matchPred(row[0]) {
					continue
				}
				t := store.NewTriple(n, row[0], row[1])
				if !seenTriple[t] {
					seenTriple[t] = true
					triples = append(triples, t)
				}
				if !seen[row[1]] {
					seen[row[1]] = true
					next = append(next, row[1])
				}
			}
			// And (s, p) here.
			for row := range g.Resolve(store.Blank, store.Blank, n) {
				if !matchPred(row[1]) {
					continue
				}
				t := store.NewTriple(row[0], row[1], n)
				if !seenTriple[t] {
					seenTriple[t] = true
					triples = append(triples, t)
				}
				if !seen[row[0]] {
					seen[row[0]] = true
					next = append(next, row[0])
				}
			}
		}
		frontier = next
	}
	return triples
}

func nodeID(v store.Value) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("%v", v)))
	return fmt.Sprintf("n%x", sum[:8])
}

func nodeLabel(v store.Value) string {
	switch t := v.(type) {
	case store.Node:
		return t.String()
	case store.Keyword:
		return string(t)
	case string:
		return fmt.Sprintf("%q", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func nodeColor(v store.Value) string {
	switch v.(type) {
	case store.Node:
		return "#a6cee3"
	case store.Keyword:
		return "#b2df8a"
	default:
		return "#fdbf6f"
	}
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

// GenerateDOT renders g's neighborhood (per opts) as GraphViz DOT source.
func GenerateDOT(g graphdb.Graph, opts VizOptions) (string, error) {
	triples := neighborhood(g, opts)

	rankdir := opts.Rankdir
	if rankdir == "" {
		rankdir = "LR"
	}

	var b strings.Builder
	fmt.Fprintln(&b, "digraph triples {")
	fmt.Fprintf(&b, "  rankdir=%s;\n", rankdir)
	fmt.Fprintln(&b, "  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\"];")
	fmt.Fprintln(&b, "  edge [fontname=\"Helvetica\", fontsize=10];")
	if opts.Title != "" {
		fmt.Fprintf(&b, "  labelloc=\"t\";\n  label=\"%s\";\n", escapeLabel(opts.Title))
	}

	written := map[string]bool{}
	writeNode := func(v store.Value) {
		id := nodeID(v)
		if written[id] {
			return
		}
		written[id] = true
		fmt.Fprintf(&b, "  %s [label=\"%s\", fillcolor=\"%s\"];\n", id, escapeLabel(nodeLabel(v)), nodeColor(v))
	}

	sort.Slice(triples, func(i, j int) bool {
		return fmt.Sprint(triples[i]) < fmt.Sprint(triples[j])
	})

	for _, t := range triples {
		writeNode(t.S)
		writeNode(t.O)
	}
	for _, t := range triples {
		fmt.Fprintf(&b, "  %s -> %s [label=\"%s\"];\n", nodeID(t.S), nodeID(t.O), escapeLabel(nodeLabel(t.P)))
	}

	fmt.Fprintln(&b, "}")
	return b.String(), nil
}
