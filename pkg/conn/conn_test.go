package conn

import (
	"errors"
	"testing"
	"time"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func addUpdate(s, p, o store.Value) UpdateFunc {
	return func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
		t := store.NewTriple(s, p, o)
		return g.Add(s, p, o, tx), []store.Triple{t}, nil, nil
	}
}

func TestTransact_AppliesAndReturnsReport(t *testing.T) {
	c := New(graphdb.KindSimple)
	report, err := c.Transact(addUpdate("a", "p", "b"))
	if err != nil {
		t.Fatalf("Transact error: %v", err)
	}
	if !report.DBAfter.Graph.Contains("a", "p", "b") {
		t.Error("DBAfter should contain the asserted triple")
	}
	if report.DBBefore.Graph.Contains("a", "p", "b") {
		t.Error("DBBefore should predate the transaction")
	}
	if len(report.TxData) != 1 {
		t.Errorf("TxData = %v, want one applied triple", report.TxData)
	}
}

func TestTransact_HistoryAccumulatesPredecessors(t *testing.T) {
	c := New(graphdb.KindSimple)
	if _, err := c.Transact(addUpdate("a", "p", "1")); err != nil {
		t.Fatalf("first Transact error: %v", err)
	}
	if _, err := c.Transact(addUpdate("a", "p", "2")); err != nil {
		t.Fatalf("second Transact error: %v", err)
	}

	db, err := c.Db()
	if err != nil {
		t.Fatalf("Db error: %v", err)
	}
	if len(db.History) != 2 {
		t.Fatalf("History = %d entries, want 2 predecessors (empty db, then after tx 1)", len(db.History))
	}
	if db.History[0].Graph.Contains("a", "p", "1") {
		t.Error("oldest predecessor should precede the first transaction")
	}
	if !db.History[1].Graph.Contains("a", "p", "1") {
		t.Error("second predecessor should reflect the first transaction")
	}
}

func TestTransact_PropagatesUpdateError(t *testing.T) {
	c := New(graphdb.KindSimple)
	wantErr := errors.New("boom")
	_, err := c.Transact(func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
		return g, nil, nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Transact error = %v, want %v", err, wantErr)
	}
}

func TestTransact_OnClosedConnFails(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Release()
	_, err := c.Transact(addUpdate("a", "p", "b"))
	if !errors.Is(err, dberr.ErrDatabaseClosed) {
		t.Errorf("Transact on closed conn = %v, want ErrDatabaseClosed", err)
	}
}

func TestDb_OnClosedConnFails(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Release()
	_, err := c.Db()
	if !errors.Is(err, dberr.ErrDatabaseClosed) {
		t.Errorf("Db on closed conn = %v, want ErrDatabaseClosed", err)
	}
}

func TestAsOf_IndexLookup(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Transact(addUpdate("a", "p", "1"))
	c.Transact(addUpdate("a", "p", "2"))
	db, _ := c.Db()

	past := AsOf(db, int64(0))
	if past.Graph.Contains("a", "p", "1") {
		t.Error("AsOf(0) should predate the first transaction")
	}

	recent := AsOf(db, int64(1))
	if !recent.Graph.Contains("a", "p", "1") {
		t.Error("AsOf(1) should reflect the first transaction")
	}
	if recent.Graph.Contains("a", "p", "2") {
		t.Error("AsOf(1) should not yet reflect the second transaction")
	}
}

func TestAsOf_IndexPastHistoryReturnsCurrent(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Transact(addUpdate("a", "p", "1"))
	db, _ := c.Db()

	got := AsOf(db, int64(1000))
	if got.T != db.T {
		t.Errorf("AsOf beyond history should return the current db, got T=%d want %d", got.T, db.T)
	}
}

func TestSince_ReturnsFirstDbAfterT(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Transact(addUpdate("a", "p", "1"))
	mid := time.Now()
	time.Sleep(2 * time.Millisecond)
	c.Transact(addUpdate("a", "p", "2"))

	db, _ := c.Db()
	got, ok := Since(db, mid)
	if !ok {
		t.Fatal("Since should find a db newer than mid")
	}
	if !got.Graph.Contains("a", "p", "2") {
		t.Error("Since(mid) should be at or after the second transaction")
	}
}

func TestSince_AtOrAfterCurrentReturnsNotOk(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Transact(addUpdate("a", "p", "1"))
	db, _ := c.Db()

	_, ok := Since(db, db.Timestamp.Add(time.Hour))
	if ok {
		t.Error("Since a future timestamp should report not ok")
	}
}

func TestDiff_DelegatesToGraph(t *testing.T) {
	c := New(graphdb.KindSimple)
	c.Transact(addUpdate("a", "p", "1"))
	before, _ := c.Db()
	c.Transact(addUpdate("b", "p", "2"))
	after, _ := c.Db()

	diff, err := Diff(before, after)
	if err != nil {
		t.Fatalf("Diff error: %v", err)
	}
	if !diff["b"] {
		t.Errorf("Diff should flag the newly-added subject b, got %v", diff)
	}
}

func TestRelease_HookFiresOnce(t *testing.T) {
	c := New(graphdb.KindSimple)
	calls := 0
	c.SetReleaseHook(func() { calls++ })
	c.Release()
	c.Release()
	if calls != 1 {
		t.Errorf("release hook fired %d times, want exactly 1", calls)
	}
}
