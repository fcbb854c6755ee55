package graphdb

import "testing"

func chain(kind Kind, edges ...[2]string) Graph {
	g := New(kind)
	for i, e := range edges {
		g = g.Add(e[0], "p", e[1], i)
	}
	return g
}

func TestTransitivePath_Plus(t *testing.T) {
	g := chain(KindSimple, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "d"})

	if !g.TransitivePath("a", "p", "d", Plus) {
		t.Error("expected a path a->d along p")
	}
	if g.TransitivePath("a", "p", "z", Plus) {
		t.Error("unexpected path to unreachable node")
	}
}

func TestTransitivePath_StarReflexive(t *testing.T) {
	g := New(KindSimple)
	if !g.TransitivePath("a", "p", "a", Star) {
		t.Error("Star closure must include the zero-hop s==o binding")
	}
	if g.TransitivePath("a", "p", "a", Plus) {
		t.Error("Plus closure must not include the zero-hop binding")
	}
}

func TestTransitiveReachable_NoDuplicatesOnCycle(t *testing.T) {
	g := chain(KindSimple, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"c", "a"})

	seen := map[string]int{}
	for row := range g.TransitiveReachable("a", "p", Plus) {
		seen[row[0].(string)]++
	}
	if len(seen) != 2 {
		t.Fatalf("reachable set = %v, want {b, c}", seen)
	}
	for node, n := range seen {
		if n != 1 {
			t.Errorf("node %s visited %d times, want 1 (cycle must not duplicate)", node, n)
		}
	}
}

func TestTransitiveReachable_StarEmitsSelfFirst(t *testing.T) {
	g := chain(KindSimple, [2]string{"a", "b"})

	var order []string
	for row := range g.TransitiveReachable("a", "p", Star) {
		order = append(order, row[0].(string))
	}
	if len(order) == 0 || order[0] != "a" {
		t.Fatalf("Star reachable order = %v, want to start with the zero-hop node", order)
	}
}

func TestTransitiveFrom_Backward(t *testing.T) {
	g := chain(KindSimple, [2]string{"a", "b"}, [2]string{"b", "c"})

	var preds []string
	for row := range g.TransitiveFrom("p", "c", Plus) {
		preds = append(preds, row[0].(string))
	}
	if len(preds) != 2 {
		t.Fatalf("TransitiveFrom(c) = %v, want [a, b] in some order", preds)
	}
}
