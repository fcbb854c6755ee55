package durable

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestLoadLatestSnapshot_EmptyStoreIsBeyondEndOfFile(t *testing.T) {
	s := openTemp(t)
	_, _, err := s.LoadLatestSnapshot()
	var beof *dberr.BeyondEndOfFileError
	if !errors.As(err, &beof) {
		t.Fatalf("LoadLatestSnapshot on empty store = %v, want BeyondEndOfFileError", err)
	}
}

func TestSaveAndLoadSnapshot_RoundTrips(t *testing.T) {
	s := openTemp(t)
	node := store.NewNode()
	snap := Snapshot{
		Kind:    graphdb.KindSimple,
		Triples: []store.Triple{store.NewTriple(node, store.Keyword(":a/name"), "alice")},
	}

	if err := s.SaveSnapshot(3, snap); err != nil {
		t.Fatalf("SaveSnapshot error: %v", err)
	}

	t_, got, err := s.LoadLatestSnapshot()
	if err != nil {
		t.Fatalf("LoadLatestSnapshot error: %v", err)
	}
	if t_ != 3 {
		t.Errorf("LoadLatestSnapshot t = %d, want 3", t_)
	}
	if got.Kind != graphdb.KindSimple || len(got.Triples) != 1 {
		t.Fatalf("LoadLatestSnapshot snapshot = %+v, want one triple of kind simple", got)
	}
	if got.Triples[0].O != "alice" {
		t.Errorf("round-tripped triple object = %v, want alice", got.Triples[0].O)
	}
}

func TestSaveSnapshot_OverwritesLatestPointer(t *testing.T) {
	s := openTemp(t)
	s.SaveSnapshot(1, Snapshot{Kind: graphdb.KindSimple})
	s.SaveSnapshot(2, Snapshot{Kind: graphdb.KindMulti})

	tLatest, snap, err := s.LoadLatestSnapshot()
	if err != nil {
		t.Fatalf("LoadLatestSnapshot error: %v", err)
	}
	if tLatest != 2 || snap.Kind != graphdb.KindMulti {
		t.Errorf("LoadLatestSnapshot = t=%d kind=%v, want t=2 kind=multi", tLatest, snap.Kind)
	}
}

func TestAppendAndReadTx_RoundTrips(t *testing.T) {
	s := openTemp(t)
	node := store.NewNode()
	assertions := []store.Triple{store.NewTriple(node, store.Keyword(":a/name"), "bob")}
	retractions := []store.Triple{store.NewTriple(node, store.Keyword(":a/age"), int64(10))}

	if err := s.AppendTx(5, assertions, retractions); err != nil {
		t.Fatalf("AppendTx error: %v", err)
	}

	gotA, gotR, err := s.ReadTx(5)
	if err != nil {
		t.Fatalf("ReadTx error: %v", err)
	}
	if len(gotA) != 1 || gotA[0].O != "bob" {
		t.Errorf("ReadTx assertions = %v, want one triple with object bob", gotA)
	}
	if len(gotR) != 1 || gotR[0].O != int64(10) {
		t.Errorf("ReadTx retractions = %v, want one triple with object 10", gotR)
	}
}

func TestReadTx_UnrecordedIsBeyondEndOfFile(t *testing.T) {
	s := openTemp(t)
	_, _, err := s.ReadTx(42)
	var beof *dberr.BeyondEndOfFileError
	if !errors.As(err, &beof) {
		t.Fatalf("ReadTx(42) on empty store = %v, want BeyondEndOfFileError", err)
	}
}
