/*
# Module: pkg/dberr/dberr.go
Error taxonomy for the versioned graph database.

Centralizes the sentinel and structured errors every layer (indexes,
query engine, durable store, connection registry) needs, so failures
can be matched with errors.Is/As and wrapped consistently with
fmt.Errorf("...: %w", err) throughout internal/store and pkg/query.

## Linked Modules
None (shared leaf package)

## Tags
errors, taxonomy

## Exports
MissingClause, UnknownClauses, IllegalAggregate, UnsupportedOperation,
ErrIncompatibleGraphs, BeyondEndOfFile, ErrCorruptedTransactionFile,
ErrTransactionTimeout, ErrDatabaseClosed, ErrUnknownURIScheme

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#dberr.go> a code:Module ;
    code:name "pkg/dberr/dberr.go" ;
    code:description "Error taxonomy for the versioned graph database" ;
    code:tags "errors", "taxonomy" .
<!-- End LinkedDoc RDF -->
*/

package dberr

import (
	"errors"
	"fmt"
)

// Sentinel errors matched with errors.Is.
var (
	ErrIncompatibleGraphs       = errors.New("dberr: incompatible graph flavors")
	ErrCorruptedTransactionFile = errors.New("dberr: corrupted transaction file")
	ErrTransactionTimeout       = errors.New("dberr: transaction timed out")
	ErrDatabaseClosed           = errors.New("dberr: operation on a released connection")
	ErrUnknownURIScheme         = errors.New("dberr: unknown uri scheme")
)

// MissingClauseError reports a query map missing a required top-level
// clause ("find" or "where").
type MissingClauseError struct{ Name string }

func (e *MissingClauseError) Error() string {
	return fmt.Sprintf("dberr: missing clause %q", e.Name)
}

// MissingClause constructs a MissingClauseError.
func MissingClause(name string) error { return &MissingClauseError{Name: name} }

// UnknownClausesError reports unrecognized top-level keys in a query map.
type UnknownClausesError struct{ Names []string }

func (e *UnknownClausesError) Error() string {
	return fmt.Sprintf("dberr: unknown clauses %v", e.Names)
}

// UnknownClauses constructs an UnknownClausesError.
func UnknownClauses(names []string) error { return &UnknownClausesError{Names: names} }

// IllegalAggregateError reports a malformed or forbidden aggregation,
// e.g. (sum *).
type IllegalAggregateError struct{ Reason string }

func (e *IllegalAggregateError) Error() string {
	return fmt.Sprintf("dberr: illegal aggregate: %s", e.Reason)
}

// IllegalAggregate constructs an IllegalAggregateError.
func IllegalAggregate(reason string) error { return &IllegalAggregateError{Reason: reason} }

// UnsupportedOperationError reports a Bind/Filter expression referencing
// a symbol outside the sandbox safelist and the ambient environment.
type UnsupportedOperationError struct{ Name string }

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("dberr: unsupported operation %q", e.Name)
}

// UnsupportedOperation constructs an UnsupportedOperationError.
func UnsupportedOperation(name string) error { return &UnsupportedOperationError{Name: name} }

// BeyondEndOfFileError reports a durable-store read past a region's
// committed length.
type BeyondEndOfFileError struct {
	Region string
	Offset int64
}

func (e *BeyondEndOfFileError) Error() string {
	return fmt.Sprintf("dberr: read beyond end of %s at offset %d", e.Region, e.Offset)
}

// BeyondEndOfFile constructs a BeyondEndOfFileError.
func BeyondEndOfFile(region string, offset int64) error {
	return &BeyondEndOfFileError{Region: region, Offset: offset}
}
