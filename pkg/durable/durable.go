/*
# Module: pkg/durable/durable.go
bbolt-backed persistence for the durable connection kind.

Three named bucket regions: "flat" holds the single latest full-graph
snapshot for fast cold start, "records" keeps every saved snapshot
keyed by the transaction it was taken at (t -> gob-encoded Snapshot), and
"tx" holds the append-only log of assertions/retractions applied at
each t. Reads past a region's committed length map to
dberr.BeyondEndOfFile; a short or malformed record maps to
dberr.ErrCorruptedTransactionFile.

## Linked Modules
- [../graphdb](../graphdb/graph.go) - Graph snapshot contents
- [../conn](../conn/conn.go) - the durable-backed Conn this serves
- [../dberr](../dberr/dberr.go) - BeyondEndOfFile/ErrCorruptedTransactionFile

## Tags
durable, persistence, bbolt

## Exports
Snapshot, Store, Open, Store.Close, Store.SaveSnapshot,
Store.LoadLatestSnapshot, Store.AppendTx, Store.ReadTx

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#durable.go> a code:Module ;
    code:name "pkg/durable/durable.go" ;
    code:description "bbolt-backed persistence for the durable connection kind" ;
    code:tags "durable", "persistence", "bbolt" .
<!-- End LinkedDoc RDF -->
*/

package durable

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

func init() {
	gob.Register(store.Node{})
	gob.Register(store.Keyword(""))
	gob.Register(time.Time{})
}

var (
	bucketFlat    = []byte("flat")
	bucketRecords = []byte("records")
	bucketTx      = []byte("tx")
)

// Snapshot is the serializable form of a Graph: its flavor and the
// flattened triple set, since store.Index's trie structure is rebuilt
// on load via graphdb.Graph.Transact rather than serialized directly.
type Snapshot struct {
	Kind    graphdb.Kind
	Triples []store.Triple
}

// TxRecord is the serializable form of one committed transaction's
// write set.
type TxRecord struct {
	Assertions  []store.Triple
	Retractions []store.Triple
}

// Store wraps a bbolt database with the three regions durable
// connections need.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if absent) the bbolt file at path and ensures
// all three regions exist.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("durable: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketFlat, bucketRecords, bucketTx} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("durable: init buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying bbolt file handle.
func (s *Store) Close() error { return s.db.Close() }

func txKey(t int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(t))
	return b
}

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveSnapshot stores the full graph state as of transaction t in both
// the "flat" region (latest pointer) and "records" (history by t).
func (s *Store) SaveSnapshot(t int, snap Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return fmt.Errorf("durable: encode snapshot: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRecords).Put(txKey(t), data); err != nil {
			return err
		}
		flat := tx.Bucket(bucketFlat)
		if err := flat.Put([]byte("latest_t"), txKey(t)); err != nil {
			return err
		}
		return flat.Put([]byte("latest"), data)
	})
}

// LoadLatestSnapshot returns the most recently saved snapshot and its
// transaction id. BeyondEndOfFile if no snapshot has ever been saved.
func (s *Store) LoadLatestSnapshot() (int, Snapshot, error) {
	var snap Snapshot
	var t int
	err := s.db.View(func(tx *bolt.Tx) error {
		flat := tx.Bucket(bucketFlat)
		data := flat.Get([]byte("latest"))
		if data == nil {
			return dberr.BeyondEndOfFile("flat", 0)
		}
		tBytes := flat.Get([]byte("latest_t"))
		if len(tBytes) == 8 {
			t = int(binary.BigEndian.Uint64(tBytes))
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
			return fmt.Errorf("%w: %v", dberr.ErrCorruptedTransactionFile, err)
		}
		return nil
	})
	return t, snap, err
}

// AppendTx records the write set applied at transaction t.
func (s *Store) AppendTx(t int, assertions, retractions []store.Triple) error {
	data, err := encode(TxRecord{Assertions: assertions, Retractions: retractions})
	if err != nil {
		return fmt.Errorf("durable: encode tx record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketTx).Put(txKey(t), data)
	})
}

// ReadTx returns the write set applied at transaction t.
// dberr.BeyondEndOfFile if t was never recorded,
// dberr.ErrCorruptedTransactionFile if the record can't be decoded.
func (s *Store) ReadTx(t int) (assertions, retractions []store.Triple, err error) {
	var rec TxRecord
	readErr := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketTx).Get(txKey(t))
		if data == nil {
			return dberr.BeyondEndOfFile("tx", int64(t))
		}
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
			return fmt.Errorf("%w: %v", dberr.ErrCorruptedTransactionFile, err)
		}
		return nil
	})
	if readErr != nil {
		return nil, nil, readErr
	}
	return rec.Assertions, rec.Retractions, nil
}
