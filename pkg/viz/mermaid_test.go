package viz

import (
	"strings"
	"testing"
)

func TestGenerateMermaid(t *testing.T) {
	g, alice, _, _ := buildTestGraph()

	diagram, err := GenerateMermaid(g, VizOptions{Root: alice, Depth: 2}, MermaidOptions{})
	if err != nil {
		t.Fatalf("GenerateMermaid() error = %v", err)
	}
	if !strings.HasPrefix(diagram, "flowchart LR") {
		t.Errorf("GenerateMermaid() missing flowchart header, got: %s", diagram)
	}
	if !strings.Contains(diagram, "-->|") {
		t.Errorf("GenerateMermaid() missing edge arrow, got: %s", diagram)
	}
}

func TestGenerateMermaidDirection(t *testing.T) {
	g, alice, _, _ := buildTestGraph()

	diagram, err := GenerateMermaid(g, VizOptions{Root: alice, Depth: 1}, MermaidOptions{Direction: "TB"})
	if err != nil {
		t.Fatalf("GenerateMermaid() error = %v", err)
	}
	if !strings.HasPrefix(diagram, "flowchart TB") {
		t.Errorf("GenerateMermaid() direction not applied, got: %s", diagram)
	}
}

func TestGenerateMermaidMarkdown(t *testing.T) {
	g, alice, _, _ := buildTestGraph()

	md, err := GenerateMermaidMarkdown(g, VizOptions{Root: alice, Depth: 1}, MermaidOptions{Title: "Alice's neighborhood"})
	if err != nil {
		t.Fatalf("GenerateMermaidMarkdown() error = %v", err)
	}
	if !strings.HasPrefix(md, "# Alice's neighborhood") {
		t.Errorf("GenerateMermaidMarkdown() missing title heading, got: %s", md)
	}
	if !strings.Contains(md, "```mermaid") {
		t.Errorf("GenerateMermaidMarkdown() missing fenced code block, got: %s", md)
	}
}
