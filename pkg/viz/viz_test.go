package viz

import (
	"strings"
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func buildTestGraph() (graphdb.Graph, store.Node, store.Node, store.Node) {
	alice := store.NewNode()
	bob := store.NewNode()
	carol := store.NewNode()

	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(alice, store.Keyword(":person/name"), "Alice", 1)
	g = g.Add(bob, store.Keyword(":person/name"), "Bob", 1)
	g = g.Add(carol, store.Keyword(":person/name"), "Carol", 1)
	g = g.Add(alice, store.Keyword(":person/knows"), bob, 1)
	g = g.Add(bob, store.Keyword(":person/knows"), carol, 1)

	return g, alice, bob, carol
}

func TestGenerateDOTWholeGraph(t *testing.T) {
	g, _, _, _ := buildTestGraph()

	dot, err := GenerateDOT(g, VizOptions{Title: "everyone"})
	if err != nil {
		t.Fatalf("GenerateDOT() error = %v", err)
	}
	if !strings.HasPrefix(dot, "digraph triples {") {
		t.Errorf("GenerateDOT() missing digraph header, got: %s", dot)
	}
	if !strings.Contains(dot, "person/knows") {
		t.Errorf("GenerateDOT() missing knows edge label, got: %s", dot)
	}
	if !strings.Contains(dot, `label="everyone"`) {
		t.Errorf("GenerateDOT() missing title, got: %s", dot)
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Errorf("GenerateDOT() missing closing brace, got: %s", dot)
	}
}

func TestGenerateDOTRootedNeighborhood(t *testing.T) {
	g, alice, _, carol := buildTestGraph()

	dot, err := GenerateDOT(g, VizOptions{Root: alice, Depth: 1})
	if err != nil {
		t.Fatalf("GenerateDOT() error = %v", err)
	}
	if strings.Contains(dot, nodeID(carol)) {
		t.Errorf("GenerateDOT() with depth 1 should not reach carol, got: %s", dot)
	}

	dot2, err := GenerateDOT(g, VizOptions{Root: alice, Depth: 2})
	if err != nil {
		t.Fatalf("GenerateDOT() error = %v", err)
	}
	if !strings.Contains(dot2, nodeID(carol)) {
		t.Errorf("GenerateDOT() with depth 2 should reach carol, got: %s", dot2)
	}
}

func TestGenerateDOTPredicateFilter(t *testing.T) {
	g, alice, _, _ := buildTestGraph()

	dot, err := GenerateDOT(g, VizOptions{Root: alice, Depth: 2, Predicates: []string{":person/name"}})
	if err != nil {
		t.Fatalf("GenerateDOT() error = %v", err)
	}
	if strings.Contains(dot, "person/knows") {
		t.Errorf("GenerateDOT() with predicate filter should exclude knows edges, got: %s", dot)
	}
}

func TestNodeIDStable(t *testing.T) {
	alice := store.NewNode()
	if nodeID(alice) != nodeID(alice) {
		t.Error("nodeID() should be stable for the same value")
	}
}

func TestNodeLabel(t *testing.T) {
	if got := nodeLabel("hello"); got != `"hello"` {
		t.Errorf("nodeLabel(string) = %q, want quoted", got)
	}
	if got := nodeLabel(store.Keyword(":a/b")); got != ":a/b" {
		t.Errorf("nodeLabel(Keyword) = %q, want %q", got, ":a/b")
	}
}
