/*
# Module: internal/store/index.go
Persistent, structurally-shared triple index.

Implements one rotation of a 3-level trie (a -> b -> c -> Meta) used by
Graph to maintain SPO, POS, and OSP simultaneously. Every Add/Delete
returns a new Index; unmodified subtrees are shared with the previous
value, and empty interior maps are pruned on delete so presence can
always be tested with a simple three-level lookup.

A copy-on-write map keyed by any comparable Value, rather than a
mutable map keyed by string, with per-leaf multi-edge metadata instead
of a bare boolean.

## Linked Modules
- [value](./value.go) - Value/Node/Keyword key types
- [triple](./triple.go) - Triple and Meta

## Tags
store, index, persistent, trie

## Exports
Index, NewIndex, Meta

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#index.go> a code:Module ;
    code:name "internal/store/index.go" ;
    code:description "Persistent, structurally-shared triple index" ;
    code:language "go" ;
    code:layer "storage" ;
    code:linksTo <./value.go>, <./triple.go> ;
    code:exports <#Index>, <#NewIndex>, <#Meta> ;
    code:tags "store", "index", "persistent", "trie" .
<!-- End LinkedDoc RDF -->
*/

package store

// Meta carries the multi-edge metadata for one leaf of an index:
// how many times the triple was asserted, which transaction created
// the leaf, and the per-graph statement id assigned at first assertion.
type Meta struct {
	Count int
	Tx    int
	ID    uint64
}

// Level2 maps the third trie key to its leaf metadata. It is a type
// alias, not a defined type, so callers outside this package can name
// and pass it around without conversions.
type Level2 = map[Value]Meta

// Level1 maps the second trie key to a Level2 map.
type Level1 = map[Value]Level2

// Index is one rotation of the 3-level trie: a -> b -> c -> Meta. It is
// immutable; Add and Delete return a new Index value that shares every
// untouched subtree with its predecessor.
type Index struct {
	root map[Value]Level1
}

// NewIndex returns an empty Index.
func NewIndex() Index {
	return Index{root: map[Value]Level1{}}
}

// Lookup returns the Meta stored at (a, b, c) and whether it exists.
func (idx Index) Lookup(a, b, c Value) (Meta, bool) {
	l1, ok := idx.root[a]
	if !ok {
		return Meta{}, false
	}
	l2, ok := l1[b]
	if !ok {
		return Meta{}, false
	}
	m, ok := l2[c]
	return m, ok
}

// Level1 returns the level1 map rooted at a, or nil if absent. Callers
// must treat the result as read-only: it is shared structure.
func (idx Index) Level1(a Value) (Level1, bool) {
	l1, ok := idx.root[a]
	return l1, ok
}

// Level2 returns the level2 map rooted at (a, b), or nil if absent.
func (idx Index) Level2(a, b Value) (Level2, bool) {
	l1, ok := idx.root[a]
	if !ok {
		return nil, false
	}
	l2, ok := l1[b]
	return l2, ok
}

// Roots exposes the top-level keys, for full-scan resolution shapes.
func (idx Index) Roots() map[Value]Level1 {
	return idx.root
}

// Add inserts (a, b, c) into the index. If the leaf already exists its
// Count is incremented; otherwise a fresh leaf is created with
// Count=1, Tx=tx, ID=id. The three maps along the modified path are
// copied; every other subtree is shared with idx.
func (idx Index) Add(a, b, c Value, tx int, id uint64) Index {
	newRoot := shallowCopyRoot(idx.root)

	oldL1 := idx.root[a]
	newL1 := shallowCopyL1(oldL1)

	oldL2 := oldL1[b]
	newL2 := shallowCopyL2(oldL2)

	if m, ok := newL2[c]; ok {
		m.Count++
		newL2[c] = m
	} else {
		newL2[c] = Meta{Count: 1, Tx: tx, ID: id}
	}

	newL1[b] = newL2
	newRoot[a] = newL1
	return Index{root: newRoot}
}

// deleteResult distinguishes "no change" (triple absent) from an actual
// mutation: a missing leaf must propagate as "no change" rather than
// silently returning the same index by coincidence.
type deleteResult struct {
	idx     Index
	changed bool
}

// Delete removes one assertion of (a, b, c). If the leaf is absent, it
// reports changed=false and returns the receiver unmodified. If
// Count>1 it decrements Count; if Count==1 it removes the leaf and
// prunes any interior map left empty, all the way up to the root.
func (idx Index) Delete(a, b, c Value) (Index, bool) {
	res := idx.delete(a, b, c)
	return res.idx, res.changed
}

func (idx Index) delete(a, b, c Value) deleteResult {
	oldL1, ok := idx.root[a]
	if !ok {
		return deleteResult{idx, false}
	}
	oldL2, ok := oldL1[b]
	if !ok {
		return deleteResult{idx, false}
	}
	m, ok := oldL2[c]
	if !ok {
		return deleteResult{idx, false}
	}

	newL2 := shallowCopyL2(oldL2)
	if m.Count > 1 {
		m.Count--
		newL2[c] = m
	} else {
		delete(newL2, c)
	}

	newL1 := shallowCopyL1(oldL1)
	if len(newL2) == 0 {
		delete(newL1, b)
	} else {
		newL1[b] = newL2
	}

	newRoot := shallowCopyRoot(idx.root)
	if len(newL1) == 0 {
		delete(newRoot, a)
	} else {
		newRoot[a] = newL1
	}

	return deleteResult{Index{root: newRoot}, true}
}

func shallowCopyRoot(m map[Value]Level1) map[Value]Level1 {
	out := make(map[Value]Level1, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func shallowCopyL1(m Level1) Level1 {
	out := make(Level1, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}

func shallowCopyL2(m Level2) Level2 {
	out := make(Level2, len(m)+1)
	for k, v := range m {
		out[k] = v
	}
	return out
}
