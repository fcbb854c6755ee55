/*
# Module: pkg/cache/manager.go
Persistent query-result cache.

Caches an executed query's result keyed by its source text and the
transaction number the result was computed against. The graph is
immutable per transaction, so a hit on (queryText, t) is always valid;
no content hashing or mtime tracking is needed the way a file cache
would need it.

## Linked Modules
- [cache](./cache.go) - In-memory LRU cache used by the HTTP middleware
- [../query](../query/query.go) - QueryResult shape being cached

## Tags
cache, persistence, query

## Exports
Manager, NewManager, CacheStats

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#manager.go> a code:Module ;
    code:name "pkg/cache/manager.go" ;
    code:description "Persistent query-result cache" ;
    code:language "go" ;
    code:layer "cache" ;
    code:linksTo <./cache.go>, <../query/query.go> ;
    code:exports <#Manager>, <#NewManager>, <#CacheStats> ;
    code:tags "cache", "persistence", "query" .
<!-- End LinkedDoc RDF -->
*/

package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/justin4957/graphfs/internal/store"
	"github.com/justin4957/graphfs/pkg/query"
)

func init() {
	gob.Register(store.Node{})
	gob.Register(store.Keyword(""))
	gob.Register(time.Time{})
}

const (
	cacheVersion    = "v1"
	metadataBucket  = "metadata"
	resultsBucket   = "results"
	defaultCacheDir = ".graphfs/cache"
)

// CacheStats reports cumulative hit/miss counters for a Manager.
type CacheStats struct {
	EntryCount  int
	CacheHits   int64
	CacheMisses int64
	CacheSize   int64
	HitRate     float64
	LastUpdated time.Time
}

// cachedResult wraps a query.QueryResult with the transaction it was
// computed against.
type cachedResult struct {
	T      int
	Result query.QueryResult
}

// Manager persists query results across process restarts, backed by
// a bbolt file under root/.graphfs/cache.
type Manager struct {
	db       *bolt.DB
	root     string
	cacheDir string
	hits     int64
	misses   int64
}

// NewManager opens (creating if absent) the query-result cache rooted at root.
func NewManager(root string) (*Manager, error) {
	cacheDir := filepath.Join(root, defaultCacheDir)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, "queries.db")
	db, err := bolt.Open(dbPath, 0644, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists([]byte(metadataBucket)); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists([]byte(resultsBucket))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache buckets: %w", err)
	}

	manager := &Manager{db: db, root: root, cacheDir: cacheDir}
	if err := manager.setMetadata("version", cacheVersion); err != nil {
		db.Close()
		return nil, err
	}
	return manager, nil
}

func queryKey(queryText string) []byte {
	sum := sha256.Sum256([]byte(queryText))
	return []byte(hex.EncodeToString(sum[:]))
}

// Get returns the cached result for queryText if it was computed at
// transaction t. A result cached against a different t is a miss,
// since the underlying graph has since moved on.
func (m *Manager) Get(queryText string, t int) (query.QueryResult, bool) {
	var cached cachedResult
	err := m.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket([]byte(resultsBucket)).Get(queryKey(queryText))
		if data == nil {
			return fmt.Errorf("not found")
		}
		return gob.NewDecoder(bytes.NewReader(data)).Decode(&cached)
	})
	if err != nil || cached.T != t {
		m.misses++
		return query.QueryResult{}, false
	}
	m.hits++
	return cached.Result, true
}

// Set stores result under queryText, tagged with the transaction it
// was computed against.
func (m *Manager) Set(queryText string, t int, result query.QueryResult) error {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cachedResult{T: t, Result: result}); err != nil {
		return fmt.Errorf("failed to encode query result: %w", err)
	}
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(resultsBucket)).Put(queryKey(queryText), buf.Bytes())
	})
}

// Invalidate removes a single cached query.
func (m *Manager) Invalidate(queryText string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(resultsBucket)).Delete(queryKey(queryText))
	})
}

// Clear removes every cached query result, e.g. after a transaction
// that invalidates the whole working set.
func (m *Manager) Clear() error {
	return m.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(resultsBucket)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		_, err := tx.CreateBucket([]byte(resultsBucket))
		return err
	})
}

// Stats returns cache statistics.
func (m *Manager) Stats() (CacheStats, error) {
	stats := CacheStats{CacheHits: m.hits, CacheMisses: m.misses}
	total := m.hits + m.misses
	if total > 0 {
		stats.HitRate = float64(m.hits) / float64(total)
	}

	err := m.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(resultsBucket))
		stats.EntryCount = bucket.Stats().KeyN
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil; k, v = cursor.Next() {
			stats.CacheSize += int64(len(v))
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	stats.LastUpdated = time.Now()
	return stats, nil
}

// Close closes the cache database.
func (m *Manager) Close() error {
	if m.db != nil {
		return m.db.Close()
	}
	return nil
}

func (m *Manager) setMetadata(key, value string) error {
	return m.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(metadataBucket)).Put([]byte(key), []byte(value))
	})
}

// IsEnabled reports whether the cache database is open.
func (m *Manager) IsEnabled() bool {
	return m.db != nil
}
