package registry

import (
	"errors"
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func addUpdate(s, p, o store.Value) func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
	return func(g graphdb.Graph, tx int) (graphdb.Graph, []store.Triple, map[string]store.Node, error) {
		return g.Add(s, p, o, tx), []store.Triple{store.NewTriple(s, p, o)}, nil, nil
	}
}

func TestParseURI_ValidKinds(t *testing.T) {
	cases := []struct {
		uri      string
		wantKind Kind
		wantName string
	}{
		{"sys:simple-graph://main", KindSimpleGraph, "main"},
		{"sys:multi-graph://events", KindMultiGraph, "events"},
		{"sys:durable://archive", KindDurable, "archive"},
	}
	for _, c := range cases {
		kind, name, err := ParseURI(c.uri)
		if err != nil {
			t.Errorf("ParseURI(%q) error: %v", c.uri, err)
			continue
		}
		if kind != c.wantKind || name != c.wantName {
			t.Errorf("ParseURI(%q) = %q, %q; want %q, %q", c.uri, kind, name, c.wantKind, c.wantName)
		}
	}
}

func TestParseURI_UnknownScheme(t *testing.T) {
	_, _, err := ParseURI("http://main")
	if !errors.Is(err, dberr.ErrUnknownURIScheme) {
		t.Errorf("ParseURI(bad scheme) = %v, want ErrUnknownURIScheme", err)
	}
}

func TestParseURI_UnknownKind(t *testing.T) {
	_, _, err := ParseURI("sys:bogus://main")
	if !errors.Is(err, dberr.ErrUnknownURIScheme) {
		t.Errorf("ParseURI(bad kind) = %v, want ErrUnknownURIScheme", err)
	}
}

func TestParseURI_MissingSeparator(t *testing.T) {
	_, _, err := ParseURI("sys:simple-graph:main")
	if !errors.Is(err, dberr.ErrUnknownURIScheme) {
		t.Errorf("ParseURI(no ://) = %v, want ErrUnknownURIScheme", err)
	}
}

func TestRegistry_CreateThenConnectReturnsSameConn(t *testing.T) {
	r := NewRegistry()
	c1, err := r.Create("sys:simple-graph://main")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	c2, err := r.Connect("sys:simple-graph://main")
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if c1 != c2 {
		t.Error("Connect on an already-created uri should return the same connection")
	}
}

func TestRegistry_ConnectWithoutCreateMaterializesOne(t *testing.T) {
	r := NewRegistry()
	c, err := r.Connect("sys:simple-graph://auto")
	if err != nil {
		t.Fatalf("Connect error: %v", err)
	}
	if c == nil {
		t.Fatal("Connect should materialize a connection when none exists")
	}
}

func TestRegistry_ReleaseForgetsURI(t *testing.T) {
	r := NewRegistry()
	c1, _ := r.Create("sys:simple-graph://main")
	r.Release("sys:simple-graph://main")

	c2, err := r.Connect("sys:simple-graph://main")
	if err != nil {
		t.Fatalf("Connect after release error: %v", err)
	}
	if c1 == c2 {
		t.Error("Connect after Release should materialize a fresh connection")
	}
}

func TestRegistry_DeleteResetsButKeepsRegistration(t *testing.T) {
	r := NewRegistry()
	c1, _ := r.Create("sys:simple-graph://main")
	db1, _ := c1.Db()
	report, err := c1.Transact(addUpdate("a", "p", "b"))
	if err != nil {
		t.Fatalf("Transact error: %v", err)
	}
	if !report.DBAfter.Graph.Contains("a", "p", "b") {
		t.Fatal("sanity: transaction should have applied")
	}

	if err := r.Delete("sys:simple-graph://main"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	c2, err := r.Connect("sys:simple-graph://main")
	if err != nil {
		t.Fatalf("Connect after delete error: %v", err)
	}
	if c1 == c2 {
		t.Error("Delete should swap in a fresh connection under the same uri")
	}
	db2, err := c2.Db()
	if err != nil {
		t.Fatalf("Db on fresh connection error: %v", err)
	}
	if db2.Graph.Contains("a", "p", "b") {
		t.Error("Delete should reset the graph, not carry forward prior data")
	}
	if _, err := c1.Db(); err == nil {
		t.Error("the old connection should be released by Delete")
	}
	_ = db1
}

func TestRegistry_Shutdown_ReleasesEverything(t *testing.T) {
	r := NewRegistry()
	c1, _ := r.Create("sys:simple-graph://one")
	c2, _ := r.Create("sys:multi-graph://two")

	r.Shutdown()

	if _, err := c1.Db(); err == nil {
		t.Error("Shutdown should release connection one")
	}
	if _, err := c2.Db(); err == nil {
		t.Error("Shutdown should release connection two")
	}
}
