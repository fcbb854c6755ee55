package txdata

import (
	"testing"

	"github.com/justin4957/graphfs/internal/store"
)

func TestBuild_PartitionsAssertionsAndRetractions(t *testing.T) {
	alice := store.NewNode()
	stmts := []Statement{
		{Op: Add, E: alice, A: store.Keyword(":a/name"), V: "alice"},
		{Op: Retract, E: alice, A: store.Keyword(":a/age"), V: int64(29)},
	}

	assertions, retractions, _, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if len(assertions) != 1 || assertions[0].S != alice || assertions[0].O != "alice" {
		t.Errorf("assertions = %v, want one [:db/add alice :a/name \"alice\"]", assertions)
	}
	if len(retractions) != 1 || retractions[0].O != int64(29) {
		t.Errorf("retractions = %v, want one [:db/retract alice :a/age 29]", retractions)
	}
}

func TestBuild_ResolvesTempidsConsistently(t *testing.T) {
	stmts := []Statement{
		{Op: Add, E: "bob", A: store.Keyword(":a/name"), V: "bob"},
		{Op: Add, E: "bob", A: store.Keyword(":a/age"), V: int64(40)},
	}

	assertions, _, tempids, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	node, ok := tempids["bob"]
	if !ok {
		t.Fatal("tempids should contain an entry for \"bob\"")
	}
	if len(assertions) != 2 {
		t.Fatalf("assertions = %v, want 2", assertions)
	}
	for _, a := range assertions {
		if a.S != node {
			t.Errorf("assertion subject %v should resolve to the same tempid node %v", a.S, node)
		}
	}
}

func TestBuild_DistinctTempidsGetDistinctNodes(t *testing.T) {
	stmts := []Statement{
		{Op: Add, E: "x", A: store.Keyword(":a/name"), V: "x"},
		{Op: Add, E: "y", A: store.Keyword(":a/name"), V: "y"},
	}

	_, _, tempids, err := Build(stmts)
	if err != nil {
		t.Fatalf("Build error: %v", err)
	}
	if tempids["x"] == tempids["y"] {
		t.Error("distinct tempid strings should resolve to distinct nodes")
	}
}

func TestBuild_RejectsNilEntityRef(t *testing.T) {
	stmts := []Statement{
		{Op: Add, E: nil, A: store.Keyword(":a/name"), V: "x"},
	}
	if _, _, _, err := Build(stmts); err == nil {
		t.Error("Build with a nil entity ref should fail")
	}
}

func TestBuild_RejectsUnknownOp(t *testing.T) {
	alice := store.NewNode()
	stmts := []Statement{
		{Op: Op(99), E: alice, A: store.Keyword(":a/name"), V: "x"},
	}
	if _, _, _, err := Build(stmts); err == nil {
		t.Error("Build with an unknown op should fail")
	}
}
