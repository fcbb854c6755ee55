/*
# Module: pkg/conn/conn.go
Versioned connection: CAS transactions and time travel.

A Conn holds an atomic pointer to the current DB, whose History field
carries every predecessor oldest to newest. Transact runs a
compare-and-swap retry loop: capture state, run the caller's update
function, then atomically swap the cell, retrying if another
transaction raced ahead. AsOf/Since binary-search that history by
timestamp.

## Linked Modules
- [../graphdb](../graphdb/graph.go) - Graph being versioned
- [../dberr](../dberr/dberr.go) - ErrTransactionTimeout/ErrDatabaseClosed

## Tags
conn, transaction, versioning, cas

## Exports
DB, TxReport, UpdateFunc, Conn, New, Conn.Transact, Conn.Db, AsOf, Since,
Diff, Conn.Release, Conn.SetReleaseHook

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#conn.go> a code:Module ;
    code:name "pkg/conn/conn.go" ;
    code:description "Versioned connection: CAS transactions and time travel" ;
    code:tags "conn", "transaction", "versioning", "cas" .
<!-- End LinkedDoc RDF -->
*/

package conn

import (
	"os"
	"sort"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

// DB is one immutable database value. History holds every predecessor,
// oldest to newest, not including this value itself.
type DB struct {
	Graph     graphdb.Graph
	History   []DB
	Timestamp time.Time
	T         int
}

// TxReport is the return value of a successful transaction.
type TxReport struct {
	DBBefore DB
	DBAfter  DB
	TxData   []store.Triple
	Tempids  map[string]store.Node
}

// UpdateFunc computes the next graph from the predecessor graph and
// the transaction id assigned to it, returning the triples actually
// applied (for TxReport.TxData) and any tempid resolutions.
type UpdateFunc func(g graphdb.Graph, tx int) (next graphdb.Graph, applied []store.Triple, tempids map[string]store.Node, err error)

// Conn is a versioned, CAS-guarded connection cell.
type Conn struct {
	cell    atomic.Pointer[DB]
	closed  atomic.Bool
	release func()
}

// New returns a connection seeded with an empty graph of the given kind.
func New(kind graphdb.Kind) *Conn {
	db := &DB{Graph: graphdb.New(kind)}
	c := &Conn{}
	c.cell.Store(db)
	return c
}

// Restore returns a connection seeded directly at db, rather than at
// the empty-graph T=0 state New gives every fresh connection. Used by
// a durable session resuming from a replayed snapshot, so the
// transaction numbers it assigns going forward continue from where
// the backing store left off instead of restarting at 1.
func Restore(db DB) *Conn {
	cp := db
	c := &Conn{}
	c.cell.Store(&cp)
	return c
}

// Db returns the current database value.
func (c *Conn) Db() (DB, error) {
	if c.closed.Load() {
		return DB{}, dberr.ErrDatabaseClosed
	}
	return *c.cell.Load(), nil
}

// txTimeout reads TX_TIMEOUT_MSEC, defaulting to 100000ms.
func txTimeout() time.Duration {
	ms := 100000
	if v := os.Getenv("TX_TIMEOUT_MSEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			ms = n
		}
	}
	return time.Duration(ms) * time.Millisecond
}

// Transact captures the current DB, invokes update with (graph, next_tx),
// then atomically swaps the cell. If the cell moved since the snapshot
// was taken, it retries from scratch. Gives up with
// ErrTransactionTimeout once the configured timeout elapses.
func (c *Conn) Transact(update UpdateFunc) (TxReport, error) {
	if c.closed.Load() {
		return TxReport{}, dberr.ErrDatabaseClosed
	}

	deadline := time.Now().Add(txTimeout())
	for {
		if time.Now().After(deadline) {
			return TxReport{}, dberr.ErrTransactionTimeout
		}

		before := c.cell.Load()
		nextTx := len(before.History)
		nextGraph, applied, tempids, err := update(before.Graph, nextTx)
		if err != nil {
			return TxReport{}, err
		}

		after := &DB{
			Graph:     nextGraph,
			History:   append(append([]DB{}, before.History...), *before),
			Timestamp: time.Now(),
			T:         before.T + 1,
		}

		if c.cell.CompareAndSwap(before, after) {
			return TxReport{DBBefore: *before, DBAfter: *after, TxData: applied, Tempids: tempids}, nil
		}
		// Lost the race: another transactor moved the cell; retry.
	}
}

// AsOf returns the historical database as of t, which is either an
// integer index (clamped) or a time.Time (binary search by timestamp).
func AsOf(db DB, t store.Value) DB {
	switch v := t.(type) {
	case int:
		return asOfIndex(db, v)
	case int64:
		return asOfIndex(db, int(v))
	case time.Time:
		return asOfTime(db, v)
	default:
		return db
	}
}

func asOfIndex(db DB, idx int) DB {
	if idx < 0 {
		idx = 0
	}
	if idx >= len(db.History) {
		return db
	}
	return db.History[idx]
}

func asOfTime(db DB, t time.Time) DB {
	if !t.Before(db.Timestamp) {
		return db
	}
	i := sort.Search(len(db.History), func(i int) bool {
		return db.History[i].Timestamp.After(t)
	})
	if i == 0 {
		return db.History[0]
	}
	return db.History[i-1]
}

// Since returns the first database strictly newer than t. ok is false
// if t is at or after db's own timestamp.
func Since(db DB, t time.Time) (result DB, ok bool) {
	if !t.Before(db.Timestamp) {
		return DB{}, false
	}
	i := sort.Search(len(db.History), func(i int) bool {
		return db.History[i].Timestamp.After(t)
	})
	if i >= len(db.History) {
		return db, true
	}
	return db.History[i], true
}

// Diff returns the subjects whose p->o sub-map differs between a and b.
func Diff(a, b DB) (map[store.Value]bool, error) {
	return a.Graph.Diff(b.Graph)
}

// Release marks the connection closed and invokes its cleanup hook, if
// one was registered by the registry that created it.
func (c *Conn) Release() {
	if c.closed.CompareAndSwap(false, true) && c.release != nil {
		c.release()
	}
}

// SetReleaseHook wires a cleanup callback invoked exactly once, on the
// first Release call. Used by the registry to unregister the URI.
func (c *Conn) SetReleaseHook(f func()) { c.release = f }
