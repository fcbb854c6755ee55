package graphdb

import (
	"testing"

	"github.com/justin4957/graphfs/internal/store"
)

func collect(seq func(func(Row) bool)) []Row {
	var out []Row
	seq(func(r Row) bool {
		out = append(out, r)
		return true
	})
	return out
}

func TestResolve_VVV(t *testing.T) {
	g := New(KindSimple).Add("alice", "knows", "bob", 0)

	rows := collect(g.Resolve("alice", "knows", "bob"))
	if len(rows) != 1 || len(rows[0]) != 0 {
		t.Fatalf("Resolve(V,V,V) = %v, want one empty row", rows)
	}

	rows = collect(g.Resolve("alice", "knows", "carol"))
	if len(rows) != 0 {
		t.Fatalf("Resolve(V,V,V) on absent triple = %v, want none", rows)
	}
}

func TestResolve_VVQ(t *testing.T) {
	g := New(KindSimple).
		Add("alice", "knows", "bob", 0).
		Add("alice", "knows", "carol", 0)

	rows := collect(g.Resolve("alice", "knows", store.Blank))
	if len(rows) != 2 {
		t.Fatalf("Resolve(V,V,?) = %v, want 2 rows", rows)
	}
}

func TestResolve_QQQ_FullScan(t *testing.T) {
	g := New(KindSimple).
		Add("alice", "knows", "bob", 0).
		Add("bob", "knows", "carol", 0)

	rows := collect(g.Resolve(store.Blank, store.Blank, store.Blank))
	if len(rows) != 2 {
		t.Fatalf("full scan = %v, want 2 rows", rows)
	}
	for _, r := range rows {
		if len(r) != 3 {
			t.Errorf("full scan row %v should have 3 columns", r)
		}
	}
}

func TestResolve_MissingIntermediateIsEmpty(t *testing.T) {
	g := New(KindSimple)
	rows := collect(g.Resolve("nobody", store.Blank, store.Blank))
	if len(rows) != 0 {
		t.Errorf("Resolve on empty graph = %v, want none", rows)
	}
}

func TestResolve_MultiGraphYieldsDuplicates(t *testing.T) {
	g := New(KindMulti).
		Add("alice", "knows", "bob", 0).
		Add("alice", "knows", "bob", 1)

	rows := collect(g.Resolve("alice", "knows", "bob"))
	if len(rows) != 2 {
		t.Fatalf("multi graph Resolve(V,V,V) = %d rows, want 2 (Count=2)", len(rows))
	}
}

func TestResolve_SimpleGraphDeduplicates(t *testing.T) {
	g := New(KindSimple).
		Add("alice", "knows", "bob", 0).
		Add("alice", "knows", "bob", 1)

	rows := collect(g.Resolve("alice", "knows", "bob"))
	if len(rows) != 1 {
		t.Fatalf("simple graph Resolve(V,V,V) = %d rows, want 1 (idempotent)", len(rows))
	}
}

func TestResolve_EarlyStop(t *testing.T) {
	g := New(KindSimple).
		Add("alice", "p", "a", 0).
		Add("alice", "p", "b", 0).
		Add("alice", "p", "c", 0)

	count := 0
	g.Resolve("alice", "p", store.Blank)(func(Row) bool {
		count++
		return count < 1
	})
	if count != 1 {
		t.Errorf("yield returning false should stop iteration, got %d calls", count)
	}
}
