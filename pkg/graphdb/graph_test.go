package graphdb

import (
	"errors"
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
)

func TestAdd_SimpleIsIdempotent(t *testing.T) {
	g := New(KindSimple)
	g1 := g.Add("a", "p", "b", 0)
	g2 := g1.Add("a", "p", "b", 1)

	if g2.CountTriple("a", "p", "b") != 1 {
		t.Errorf("simple graph re-assert changed cardinality, want 1")
	}
}

func TestAdd_MultiIncrementsCount(t *testing.T) {
	g := New(KindMulti)
	g = g.Add("a", "p", "b", 0)
	g = g.Add("a", "p", "b", 1)

	if n := g.CountTriple("a", "p", "b"); n != 2 {
		t.Errorf("CountTriple = %d, want 2", n)
	}
}

func TestAdd_DoesNotMutateReceiver(t *testing.T) {
	g0 := New(KindSimple)
	g1 := g0.Add("a", "p", "b", 0)

	if g0.Contains("a", "p", "b") {
		t.Fatal("Add must not mutate the receiver")
	}
	if !g1.Contains("a", "p", "b") {
		t.Fatal("Add result should contain the new triple")
	}
}

func TestDelete_RemovesAcrossAllThreeIndexes(t *testing.T) {
	g := New(KindSimple).Add("a", "p", "b", 0)
	g = g.Delete("a", "p", "b")

	if g.Contains("a", "p", "b") {
		t.Fatal("Delete should remove the triple")
	}
	if n := g.CountTriple(store.Blank, "p", "b"); n != 0 {
		t.Errorf("POS leftover after delete, count=%d", n)
	}
	if n := g.CountTriple(store.Blank, store.Blank, "b"); n != 0 {
		t.Errorf("OSP leftover after delete, count=%d", n)
	}
}

func TestTransact_RetractionsBeforeAssertions(t *testing.T) {
	g := New(KindSimple).Add("a", "p", "b", 0)

	g2 := g.Transact(1,
		[]store.Triple{store.NewTriple("a", "p", "c")},
		[]store.Triple{store.NewTriple("a", "p", "b")})

	if g2.Contains("a", "p", "b") {
		t.Error("retracted triple should be gone")
	}
	if !g2.Contains("a", "p", "c") {
		t.Error("asserted triple should be present")
	}
}

func TestDiff_IncompatibleKinds(t *testing.T) {
	simple := New(KindSimple)
	multi := New(KindMulti)

	_, err := simple.Diff(multi)
	if !errors.Is(err, dberr.ErrIncompatibleGraphs) {
		t.Errorf("Diff across flavors = %v, want ErrIncompatibleGraphs", err)
	}
}

func TestDiff_DetectsChangedSubjects(t *testing.T) {
	base := New(KindSimple).Add("a", "p", "b", 0)
	changed := base.Add("a", "p", "c", 1)
	unrelatedAddition := base.Add("z", "p", "q", 1)

	diff, err := base.Diff(changed)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !diff["a"] {
		t.Errorf("Diff should flag subject a as changed, got %v", diff)
	}

	diff2, err := base.Diff(unrelatedAddition)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !diff2["z"] || diff2["a"] {
		t.Errorf("Diff should flag only the new subject z, got %v", diff2)
	}
}

func TestKind_String(t *testing.T) {
	if KindSimple.String() != "simple" || KindMulti.String() != "multi" {
		t.Errorf("Kind.String() mismatch: simple=%q multi=%q", KindSimple.String(), KindMulti.String())
	}
}
