/*
# Module: cmd/graphfs/session.go
Connection lifecycle for CLI commands.

Every command that touches the database opens a session through
openSession: it parses the --db URI, routes simple-graph/multi-graph
URIs through the in-process registry, and for durable URIs also opens
a pkg/durable store, replaying its latest snapshot into a fresh
connection and persisting every subsequent transact back to disk.

## Linked Modules
- [../../pkg/conn](../../pkg/conn/conn.go) - Conn, Transact
- [../../pkg/registry](../../pkg/registry/registry.go) - ParseURI, Registry
- [../../pkg/durable](../../pkg/durable/durable.go) - Store, Snapshot

## Tags
cli, session, durable

## Exports
session, openSession

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#session.go> a code:Module ;
    code:name "cmd/graphfs/session.go" ;
    code:description "Connection lifecycle for CLI commands" ;
    code:tags "cli", "session", "durable" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/durable"
	"github.com/justin4957/graphfs/pkg/graphdb"
	"github.com/justin4957/graphfs/pkg/registry"
)

// parseAsOf interprets a --as-of value as a transaction number or an
// RFC3339 timestamp, the only forms conn.AsOf resolves to a
// historical value.
func parseAsOf(s string) (store.Value, error) {
	if idx, err := strconv.Atoi(s); err == nil {
		return idx, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("--as-of must be a transaction number or RFC3339 timestamp: %w", err)
	}
	return t, nil
}

var sharedRegistry = registry.NewRegistry()

// session bundles a live connection with the optional durable store
// backing it. Transact must be used in place of conn.Conn.Transact so
// writes reach disk for durable sessions.
type session struct {
	conn    *conn.Conn
	store   *durable.Store
	every   int
	sinceT  int
}

// openSession opens uri, replaying a durable store's latest snapshot
// when uri's scheme is sys:durable. storePath names the bbolt file
// backing a durable session; it is ignored for other schemes.
func openSession(uri, storePath string, snapshotEvery int) (*session, error) {
	kind, _, err := registry.ParseURI(uri)
	if err != nil {
		return nil, err
	}

	if kind != registry.KindDurable {
		c, err := sharedRegistry.Connect(uri)
		if err != nil {
			return nil, err
		}
		return &session{conn: c, every: snapshotEvery}, nil
	}

	st, err := durable.Open(storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open durable store: %w", err)
	}

	t, snap, err := st.LoadLatestSnapshot()
	if err != nil {
		// Fresh store, nothing saved yet: start at genesis.
		return &session{conn: conn.New(graphdb.KindSimple), store: st, every: snapshotEvery}, nil
	}

	db := conn.DB{
		Graph:     graphdb.New(snap.Kind).Transact(t, snap.Triples, nil),
		Timestamp: time.Now(),
		T:         t,
	}

	// Catch up on any transactions the tx log recorded after the last
	// snapshot, so a crash between AppendTx and the next periodic
	// SaveSnapshot doesn't silently lose writes on restart. History
	// entries before the snapshot are not reconstructed: doing so
	// would mean replaying the entire tx log from genesis on every
	// restart, defeating the snapshot's purpose of a fast cold start.
	for next := t + 1; ; next++ {
		assertions, retractions, readErr := st.ReadTx(next)
		if readErr != nil {
			break
		}
		db = conn.DB{
			Graph:     db.Graph.Transact(next, assertions, retractions),
			History:   append(append([]conn.DB{}, db.History...), db),
			Timestamp: time.Now(),
			T:         next,
		}
	}

	return &session{conn: conn.Restore(db), store: st, every: snapshotEvery}, nil
}

// transact commits update through the session's connection and, for a
// durable session, appends the write set to the backing store,
// snapshotting the full graph every `every` transactions.
func (s *session) transact(update conn.UpdateFunc, assertions, retractions []store.Triple) (conn.TxReport, error) {
	report, err := s.conn.Transact(update)
	if err != nil {
		return report, err
	}
	if s.store == nil {
		return report, nil
	}

	if err := s.store.AppendTx(report.DBAfter.T, assertions, retractions); err != nil {
		return report, fmt.Errorf("failed to persist transaction: %w", err)
	}

	s.sinceT++
	every := s.every
	if every <= 0 {
		every = 50
	}
	if s.sinceT >= every {
		s.sinceT = 0
		if err := s.snapshot(report.DBAfter); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (s *session) snapshot(db conn.DB) error {
	if s.store == nil {
		return nil
	}
	var triples []store.Triple
	for row := range db.Graph.Resolve(store.Blank, store.Blank, store.Blank) {
		triples = append(triples, store.NewTriple(row[0], row[1], row[2]))
	}
	return s.store.SaveSnapshot(db.T, durable.Snapshot{Kind: db.Graph.Kind(), Triples: triples})
}

// Close flushes a final snapshot (for durable sessions) and releases
// the backing store file handle.
func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	db, err := s.conn.Db()
	if err == nil {
		_ = s.snapshot(db)
	}
	return s.store.Close()
}
