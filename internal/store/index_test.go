package store

import "testing"

func TestIndex_AddLookup(t *testing.T) {
	idx := NewIndex()
	idx2 := idx.Add("s1", "p1", "o1", 0, 1)

	if _, ok := idx.Lookup("s1", "p1", "o1"); ok {
		t.Fatalf("Add must not mutate the receiver")
	}

	m, ok := idx2.Lookup("s1", "p1", "o1")
	if !ok {
		t.Fatalf("Lookup() after Add = not found, want found")
	}
	if m.Count != 1 || m.Tx != 0 || m.ID != 1 {
		t.Errorf("Lookup() = %+v, want Count=1 Tx=0 ID=1", m)
	}
}

func TestIndex_AddIncrementsCount(t *testing.T) {
	idx := NewIndex()
	idx = idx.Add("s1", "p1", "o1", 0, 1)
	idx = idx.Add("s1", "p1", "o1", 1, 2)

	m, ok := idx.Lookup("s1", "p1", "o1")
	if !ok {
		t.Fatalf("Lookup() not found")
	}
	if m.Count != 2 {
		t.Errorf("Count = %d, want 2 (re-asserting increments)", m.Count)
	}
	if m.Tx != 0 || m.ID != 1 {
		t.Errorf("Tx/ID must stick to first assertion, got Tx=%d ID=%d", m.Tx, m.ID)
	}
}

func TestIndex_DeleteDecrementsThenRemoves(t *testing.T) {
	idx := NewIndex()
	idx = idx.Add("s1", "p1", "o1", 0, 1)
	idx = idx.Add("s1", "p1", "o1", 0, 1)

	idx, changed := idx.Delete("s1", "p1", "o1")
	if !changed {
		t.Fatalf("Delete() changed = false, want true")
	}
	m, ok := idx.Lookup("s1", "p1", "o1")
	if !ok || m.Count != 1 {
		t.Fatalf("after one delete of count=2, want count=1, got %+v ok=%v", m, ok)
	}

	idx, changed = idx.Delete("s1", "p1", "o1")
	if !changed {
		t.Fatalf("Delete() changed = false, want true")
	}
	if _, ok := idx.Lookup("s1", "p1", "o1"); ok {
		t.Fatalf("triple should be gone after count reaches zero")
	}
}

func TestIndex_DeleteAbsentIsNoChange(t *testing.T) {
	idx := NewIndex()
	idx = idx.Add("s1", "p1", "o1", 0, 1)

	_, changed := idx.Delete("nope", "p1", "o1")
	if changed {
		t.Errorf("Delete() of absent triple reported changed = true, want false")
	}
}

func TestIndex_PruningIsTotal(t *testing.T) {
	idx := NewIndex()
	idx = idx.Add("s1", "p1", "o1", 0, 1)
	idx, _ = idx.Delete("s1", "p1", "o1")

	if len(idx.Roots()) != 0 {
		t.Errorf("root map should be empty after deleting the only triple, got %d entries", len(idx.Roots()))
	}
}

func TestIndex_StructuralSharing(t *testing.T) {
	base := NewIndex()
	base = base.Add("s1", "p1", "o1", 0, 1)
	base = base.Add("s2", "p2", "o2", 0, 2)

	withThird := base.Add("s3", "p3", "o3", 1, 3)

	// base must be untouched by the later Add.
	if _, ok := base.Lookup("s3", "p3", "o3"); ok {
		t.Fatalf("Add must not mutate earlier Index values")
	}
	// s1/s2 entries are shared, not recomputed, but must still resolve.
	if _, ok := withThird.Lookup("s1", "p1", "o1"); !ok {
		t.Errorf("unrelated entries must survive in the derived index")
	}
	if _, ok := withThird.Lookup("s2", "p2", "o2"); !ok {
		t.Errorf("unrelated entries must survive in the derived index")
	}
}

func TestIndex_MultipleSubjectsUnderSamePredicate(t *testing.T) {
	idx := NewIndex()
	idx = idx.Add("s1", "p1", "o1", 0, 1)
	idx = idx.Add("s2", "p1", "o1", 0, 2)

	l1, ok := idx.Level1("s1")
	if !ok || len(l1) != 1 {
		t.Fatalf("Level1(s1) = %v, ok=%v", l1, ok)
	}
	if len(idx.Roots()) != 2 {
		t.Errorf("expected two distinct subjects at root, got %d", len(idx.Roots()))
	}
}
