/*
# Module: pkg/txdata/txdata.go
Transaction payload builder.

Turns a transact-data payload into assertions and retractions a
conn.UpdateFunc can apply to a graphdb.Graph. Accepts raw triple
literals (`[:db/add e a v]` / `[:db/retract e a v]`) directly, and
assigns fresh store.Node identities to any tempid string encountered in
an e-slot, consistently within one payload. Map-shaped entity
documents are not expanded into triples here, and cmd/graphfs's
transact command does not expand them either: it feeds one Statement
per parsed line. This package only speaks triples and tempids.

## Linked Modules
- [../graphdb](../graphdb/graph.go) - Graph.Transact consumer
- [../conn](../conn/conn.go) - UpdateFunc built around Build's output

## Tags
txdata, transaction, tempids

## Exports
Op, Statement, Build

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#txdata.go> a code:Module ;
    code:name "pkg/txdata/txdata.go" ;
    code:description "Transaction payload builder" ;
    code:tags "txdata", "transaction", "tempids" .
<!-- End LinkedDoc RDF -->
*/

package txdata

import (
	"fmt"

	"github.com/justin4957/graphfs/internal/store"
)

// Op names a transact-data statement's verb.
type Op int

const (
	Add Op = iota
	Retract
)

// Statement is one line of a transact-data payload. E may be a
// store.Node, a literal Value, or a tempid string (anything else);
// tempid strings are resolved to fresh Nodes by Build, consistently
// across the whole payload.
type Statement struct {
	Op      Op
	E, A, V store.Value
}

// Build resolves tempids and partitions statements into assertions and
// retractions ready for Graph.Transact.
func Build(stmts []Statement) (assertions, retractions []store.Triple, tempids map[string]store.Node, err error) {
	tempids = map[string]store.Node{}
	resolve := func(v store.Value) store.Value {
		s, ok := v.(string)
		if !ok {
			return v
		}
		if n, ok := tempids[s]; ok {
			return n
		}
		n := store.NewNode()
		tempids[s] = n
		return n
	}

	for _, st := range stmts {
		e, ok := asEntityRef(st.E, resolve)
		if !ok {
			return nil, nil, nil, fmt.Errorf("txdata: invalid entity ref %v", st.E)
		}
		t := store.NewTriple(e, st.A, st.V)
		switch st.Op {
		case Add:
			assertions = append(assertions, t)
		case Retract:
			retractions = append(retractions, t)
		default:
			return nil, nil, nil, fmt.Errorf("txdata: unknown op %v", st.Op)
		}
	}
	return assertions, retractions, tempids, nil
}

func asEntityRef(v store.Value, resolve func(store.Value) store.Value) (store.Value, bool) {
	if v == nil {
		return nil, false
	}
	return resolve(v), true
}
