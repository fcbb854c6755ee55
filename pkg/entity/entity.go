/*
# Module: pkg/entity/entity.go
Entity materializer: triples to nested documents.

Walks the outgoing edges of a node and reconstructs a nested map/list
document: cons cells collapse into sequences, internal attributes are
stripped, and cycles or shared references are cut with a placeholder
once a node reappears in the expansion path.

## Linked Modules
- [../graphdb](../graphdb/graph.go) - Resolve, the data source
- [../../internal/store](../../internal/store/value.go) - Value/Node/Keyword

## Tags
entity, materializer, documents

## Exports
Materialize, ResolveIdent

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#entity.go> a code:Module ;
    code:name "pkg/entity/entity.go" ;
    code:description "Entity materializer: triples to nested documents" ;
    code:tags "entity", "materializer", "documents" .
<!-- End LinkedDoc RDF -->
*/

package entity

import (
	"regexp"
	"sort"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

const (
	attrDBID    = store.Keyword(":db/id")
	attrDBIdent = store.Keyword(":db/ident")
	attrEntity  = store.Keyword(":a/entity")
	attrOwns    = store.Keyword(":a/owns")
	attrRest    = store.Keyword(":a/rest")
	attrType    = store.Keyword(":a/type")
	attrList    = store.Keyword(":a/list")
	sentinelNil = store.Keyword(":a/nil")
	sentinelEL  = store.Keyword(":a/empty-list")
	identAttr   = store.Keyword(":id")
)

var firstAttrPattern = regexp.MustCompile(`^:a/first[0-9]*$`)

var internalAttrs = map[store.Keyword]bool{
	attrDBID:    true,
	attrDBIdent: true,
	attrEntity:  true,
	attrOwns:    true,
}

// Options controls materialization mode.
type Options struct {
	// Nested controls whether child entities (:a/entity true) are
	// expanded inline or collapsed to a {:db/id v} placeholder even on
	// first encounter.
	Nested bool
}

// Materialize builds the nested document rooted at e.
func Materialize(g graphdb.Graph, e store.Node, opts Options) map[string]store.Value {
	return materialize(g, e, opts, map[store.Node]bool{})
}

func materialize(g graphdb.Graph, e store.Node, opts Options, seen map[store.Node]bool) map[string]store.Value {
	props := map[store.Keyword][]store.Value{}
	var order []store.Keyword
	for binding := range g.Resolve(e, store.Blank, store.Blank) {
		attr, ok := binding[0].(store.Keyword)
		if !ok || internalAttrs[attr] {
			continue
		}
		if _, seenAttr := props[attr]; !seenAttr {
			order = append(order, attr)
		}
		props[attr] = append(props[attr], binding[1])
	}

	for _, attr := range order {
		if firstAttrPattern.MatchString(string(attr)) {
			return materializeCons(g, e, props, order, opts, seen)
		}
	}
	if vals, ok := props[attrType]; ok && len(vals) == 1 && vals[0] == attrList {
		return map[string]store.Value{"__list__": []store.Value{}}
	}

	seen = withSeen(seen, e)
	doc := map[string]store.Value{}
	for _, attr := range order {
		vals := props[attr]
		resolved := make([]store.Value, len(vals))
		for i, v := range vals {
			resolved[i] = resolveValue(g, v, opts, seen)
		}
		if len(resolved) == 1 {
			doc[string(attr)] = resolved[0]
		} else {
			doc[string(attr)] = resolved
		}
	}
	return doc
}

func materializeCons(g graphdb.Graph, e store.Node, props map[store.Keyword][]store.Value, order []store.Keyword, opts Options, seen map[store.Node]bool) map[string]store.Value {
	seen = withSeen(seen, e)
	var firstAttr store.Keyword
	for _, attr := range order {
		if firstAttrPattern.MatchString(string(attr)) {
			firstAttr = attr
			break
		}
	}
	head := resolveValue(g, props[firstAttr][0], opts, seen)
	var rest []store.Value
	if restVals, ok := props[attrRest]; ok && len(restVals) > 0 {
		if n, ok := restVals[0].(store.Node); ok {
			if tail := materialize(g, n, opts, seen); len(tail) > 0 {
				if lst, ok := tail["__list__"]; ok {
					if items, ok2 := lst.([]store.Value); ok2 {
						rest = items
					}
				}
			}
		}
	}
	return map[string]store.Value{"__list__": append([]store.Value{head}, rest...)}
}

func resolveValue(g graphdb.Graph, v store.Value, opts Options, seen map[store.Node]bool) store.Value {
	if store.IsKeyword(v, sentinelNil) {
		return nil
	}
	if store.IsKeyword(v, sentinelEL) {
		return []store.Value{}
	}
	n, ok := v.(store.Node)
	if !ok {
		return v
	}
	if seen[n] {
		return placeholder(n)
	}
	if !opts.Nested && isEntity(g, n) {
		return placeholder(n)
	}
	child := materialize(g, n, opts, seen)
	if items, ok := child["__list__"]; ok {
		return items
	}
	return child
}

func isEntity(g graphdb.Graph, n store.Node) bool {
	return g.CountTriple(n, attrEntity, store.Blank) > 0
}

func placeholder(n store.Node) map[string]store.Value {
	return map[string]store.Value{string(attrDBID): n}
}

func withSeen(seen map[store.Node]bool, e store.Node) map[store.Node]bool {
	out := make(map[store.Node]bool, len(seen)+1)
	for k := range seen {
		out[k] = true
	}
	out[e] = true
	return out
}

// ResolveIdent accepts either a Node directly, or a user-facing
// identifier matched against :db/ident then :id, in that order.
// Returns the zero Node and false if none match.
func ResolveIdent(g graphdb.Graph, ident store.Value) (store.Node, bool) {
	if n, ok := ident.(store.Node); ok {
		return n, true
	}
	if n, ok := reverseLookup(g, attrDBIdent, ident); ok {
		return n, true
	}
	if n, ok := reverseLookup(g, identAttr, ident); ok {
		return n, true
	}
	return store.Node{}, false
}

func reverseLookup(g graphdb.Graph, attr store.Keyword, val store.Value) (store.Node, bool) {
	var candidates []store.Node
	for binding := range g.Resolve(store.Blank, attr, val) {
		if n, ok := binding[0].(store.Node); ok {
			candidates = append(candidates, n)
		}
	}
	if len(candidates) == 0 {
		return store.Node{}, false
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].ID() < candidates[j].ID() })
	return candidates[0], true
}
