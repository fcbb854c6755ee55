package entity

import (
	"testing"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func TestMaterialize_FlatAttributes(t *testing.T) {
	alice := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(alice, store.Keyword(":a/name"), "alice", 0)
	g = g.Add(alice, store.Keyword(":a/age"), int64(30), 0)

	doc := Materialize(g, alice, Options{})
	if doc[":a/name"] != "alice" {
		t.Errorf("doc[:a/name] = %v, want alice", doc[":a/name"])
	}
	if doc[":a/age"] != int64(30) {
		t.Errorf("doc[:a/age] = %v, want 30", doc[":a/age"])
	}
}

func TestMaterialize_StripsInternalAttrs(t *testing.T) {
	alice := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(alice, store.Keyword(":a/entity"), true, 0)
	g = g.Add(alice, store.Keyword(":db/id"), alice, 0)
	g = g.Add(alice, store.Keyword(":a/name"), "alice", 0)

	doc := Materialize(g, alice, Options{})
	if _, ok := doc[":a/entity"]; ok {
		t.Error(":a/entity should be stripped from the document")
	}
	if _, ok := doc[":db/id"]; ok {
		t.Error(":db/id should be stripped from the document")
	}
	if doc[":a/name"] != "alice" {
		t.Errorf("doc[:a/name] = %v, want alice", doc[":a/name"])
	}
}

func TestMaterialize_MultiValuedAttributeBecomesSlice(t *testing.T) {
	alice := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(alice, store.Keyword(":a/tag"), "red", 0)
	g = g.Add(alice, store.Keyword(":a/tag"), "blue", 0)

	doc := Materialize(g, alice, Options{})
	tags, ok := doc[":a/tag"].([]store.Value)
	if !ok || len(tags) != 2 {
		t.Fatalf("doc[:a/tag] = %#v, want a 2-element slice", doc[":a/tag"])
	}
}

func TestMaterialize_NestedChildExpandsWhenNested(t *testing.T) {
	alice := store.NewNode()
	bob := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(bob, store.Keyword(":a/entity"), true, 0)
	g = g.Add(bob, store.Keyword(":a/name"), "bob", 0)
	g = g.Add(alice, store.Keyword(":a/friend"), bob, 0)

	doc := Materialize(g, alice, Options{Nested: true})
	friend, ok := doc[":a/friend"].(map[string]store.Value)
	if !ok {
		t.Fatalf("doc[:a/friend] = %#v, want a nested map", doc[":a/friend"])
	}
	if friend[":a/name"] != "bob" {
		t.Errorf("nested friend name = %v, want bob", friend[":a/name"])
	}
}

func TestMaterialize_NonNestedCollapsesChildEntityToPlaceholder(t *testing.T) {
	alice := store.NewNode()
	bob := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(bob, store.Keyword(":a/entity"), true, 0)
	g = g.Add(bob, store.Keyword(":a/name"), "bob", 0)
	g = g.Add(alice, store.Keyword(":a/friend"), bob, 0)

	doc := Materialize(g, alice, Options{Nested: false})
	friend, ok := doc[":a/friend"].(map[string]store.Value)
	if !ok {
		t.Fatalf("doc[:a/friend] = %#v, want a placeholder map", doc[":a/friend"])
	}
	if _, hasName := friend[":a/name"]; hasName {
		t.Error("non-nested child entity should collapse to a :db/id placeholder only")
	}
	if friend[string(attrDBID)] != bob {
		t.Errorf("placeholder :db/id = %v, want %v", friend[string(attrDBID)], bob)
	}
}

func TestMaterialize_CyclePlaceholdersInsteadOfLooping(t *testing.T) {
	a := store.NewNode()
	b := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(a, store.Keyword(":a/next"), b, 0)
	g = g.Add(b, store.Keyword(":a/next"), a, 0)

	doc := Materialize(g, a, Options{Nested: true})
	next, ok := doc[":a/next"].(map[string]store.Value)
	if !ok {
		t.Fatalf("doc[:a/next] = %#v, want a nested map", doc[":a/next"])
	}
	back, ok := next[":a/next"].(map[string]store.Value)
	if !ok {
		t.Fatalf("next[:a/next] = %#v, want a placeholder map", next[":a/next"])
	}
	if back[string(attrDBID)] != a {
		t.Errorf("cycle placeholder :db/id = %v, want %v", back[string(attrDBID)], a)
	}
}

func TestMaterialize_ConsListCollapsesToSlice(t *testing.T) {
	cell2 := store.NewNode()
	cell1 := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(cell2, store.Keyword(":a/first"), int64(2), 0)
	g = g.Add(cell1, store.Keyword(":a/first"), int64(1), 0)
	g = g.Add(cell1, attrRest, cell2, 0)

	doc := Materialize(g, cell1, Options{Nested: true})
	items, ok := doc["__list__"].([]store.Value)
	if !ok || len(items) != 2 {
		t.Fatalf("doc[__list__] = %#v, want a 2-element list", doc["__list__"])
	}
	if items[0] != int64(1) || items[1] != int64(2) {
		t.Errorf("list items = %v, want [1 2]", items)
	}
}

func TestMaterialize_SentinelsResolveToNilAndEmptyList(t *testing.T) {
	n := store.NewNode()
	g := graphdb.New(graphdb.KindSimple)
	g = g.Add(n, store.Keyword(":a/maybe"), sentinelNil, 0)
	g = g.Add(n, store.Keyword(":a/rest-only"), sentinelEL, 0)

	doc := Materialize(g, n, Options{})
	if doc[":a/maybe"] != nil {
		t.Errorf("doc[:a/maybe] = %v, want nil", doc[":a/maybe"])
	}
	empty, ok := doc[":a/rest-only"].([]store.Value)
	if !ok || len(empty) != 0 {
		t.Errorf("doc[:a/rest-only] = %#v, want an empty slice", doc[":a/rest-only"])
	}
}

func TestResolveIdent_DirectNode(t *testing.T) {
	g := graphdb.New(graphdb.KindSimple)
	n := store.NewNode()
	got, ok := ResolveIdent(g, n)
	if !ok || got != n {
		t.Fatalf("ResolveIdent(node) = %v, %v; want %v, true", got, ok, n)
	}
}

func TestResolveIdent_ByDBIdent(t *testing.T) {
	n := store.NewNode()
	g := graphdb.New(graphdb.KindSimple).Add(n, attrDBIdent, store.Keyword(":a/root"), 0)

	got, ok := ResolveIdent(g, store.Keyword(":a/root"))
	if !ok || got != n {
		t.Fatalf("ResolveIdent(:db/ident) = %v, %v; want %v, true", got, ok, n)
	}
}

func TestResolveIdent_ByIDFallback(t *testing.T) {
	n := store.NewNode()
	g := graphdb.New(graphdb.KindSimple).Add(n, identAttr, "alice-1", 0)

	got, ok := ResolveIdent(g, "alice-1")
	if !ok || got != n {
		t.Fatalf("ResolveIdent(:id) = %v, %v; want %v, true", got, ok, n)
	}
}

func TestResolveIdent_Unmatched(t *testing.T) {
	g := graphdb.New(graphdb.KindSimple)
	_, ok := ResolveIdent(g, "nobody")
	if ok {
		t.Error("ResolveIdent on an unmatched identifier should return false")
	}
}
