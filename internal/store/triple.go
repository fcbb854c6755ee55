/*
# Module: internal/store/triple.go
Triple data structure for the versioned graph database.

Represents a Subject-Predicate-Object assertion. Any Value may occupy
any position: predicates are ordinary values, not a distinguished type.

## Linked Modules
- [value](./value.go) - Value/Node/Keyword key types
- [index](./index.go) - Triple indexes

## Tags
store, triple, data-structure

## Exports
Triple

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#triple.go> a code:Module ;
    code:name "internal/store/triple.go" ;
    code:description "Triple data structure for the versioned graph database" ;
    code:language "go" ;
    code:layer "storage" ;
    code:linksTo <./value.go>, <./index.go> ;
    code:exports <#Triple> ;
    code:tags "store", "triple", "data-structure" ;
    code:isLeaf true .
<!-- End LinkedDoc RDF -->
*/

package store

import "fmt"

// Triple is an (s, p, o) assertion.
type Triple struct {
	S, P, O Value
}

// NewTriple creates a new triple.
func NewTriple(s, p, o Value) Triple {
	return Triple{S: s, P: p, O: o}
}

// Equals checks if two triples are equal.
func (t Triple) Equals(other Triple) bool {
	return t.S == other.S && t.P == other.P && t.O == other.O
}

// String returns a debug representation of the triple.
func (t Triple) String() string {
	return fmt.Sprintf("(%v %v %v)", t.S, t.P, t.O)
}
