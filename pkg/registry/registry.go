/*
# Module: pkg/registry/registry.go
Connection registry and URL router.

Maps `sys:kind://name` URIs to live conn.Conn values.
create/connect/release/delete mirror a connection pool's lifecycle; a
process-wide shutdown hook releases everything still registered at
exit.

## Linked Modules
- [../conn](../conn/conn.go) - Conn values being registered
- [../graphdb](../graphdb/graph.go) - Kind for simple-graph/multi-graph
- [../dberr](../dberr/dberr.go) - ErrUnknownURIScheme

## Tags
registry, uri-routing, lifecycle

## Exports
Kind, ParseURI, Registry, NewRegistry, Registry.Create, Registry.Connect,
Registry.Release, Registry.Delete, Registry.Shutdown

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
<#registry.go> a code:Module ;
    code:name "pkg/registry/registry.go" ;
    code:description "Connection registry and URL router" ;
    code:tags "registry", "uri-routing", "lifecycle" .
<!-- End LinkedDoc RDF -->
*/

package registry

import (
	"strings"
	"sync"

	"github.com/justin4957/graphfs/pkg/conn"
	"github.com/justin4957/graphfs/pkg/dberr"
	"github.com/justin4957/graphfs/pkg/graphdb"
)

// Kind names the three URI-routed connection flavors.
type Kind string

const (
	KindSimpleGraph Kind = "simple-graph"
	KindMultiGraph  Kind = "multi-graph"
	KindDurable     Kind = "durable"
)

// ParseURI splits "sys:kind://name" into its kind and name, failing
// with ErrUnknownURIScheme if the scheme or kind is not recognized.
func ParseURI(uri string) (Kind, string, error) {
	const prefix = "sys:"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", dberr.ErrUnknownURIScheme
	}
	rest := uri[len(prefix):]
	kindStr, name, found := strings.Cut(rest, "://")
	if !found {
		return "", "", dberr.ErrUnknownURIScheme
	}
	switch Kind(kindStr) {
	case KindSimpleGraph, KindMultiGraph, KindDurable:
		return Kind(kindStr), name, nil
	default:
		return "", "", dberr.ErrUnknownURIScheme
	}
}

// Registry maps registered URIs to live connections.
type Registry struct {
	mu    sync.Mutex
	conns map[string]*conn.Conn
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: map[string]*conn.Conn{}}
}

// Create inserts a fresh, empty connection of the kind named by uri.
// Re-creating an already-registered uri replaces it.
func (r *Registry) Create(uri string) (*conn.Conn, error) {
	kind, _, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}

	var c *conn.Conn
	switch kind {
	case KindMultiGraph:
		c = conn.New(graphdb.KindMulti)
	default: // simple-graph and durable both start as an in-memory simple graph
		c = conn.New(graphdb.KindSimple)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[uri] = c
	c.SetReleaseHook(func() { r.forget(uri) })
	return c, nil
}

// Connect returns the existing connection for uri, or creates a
// simple-graph one if none is registered.
func (r *Registry) Connect(uri string) (*conn.Conn, error) {
	r.mu.Lock()
	c, ok := r.conns[uri]
	r.mu.Unlock()
	if ok {
		return c, nil
	}
	return r.Create(uri)
}

// Release removes uri from the registry and runs the connection's
// cleanup hook.
func (r *Registry) Release(uri string) {
	r.mu.Lock()
	c, ok := r.conns[uri]
	r.mu.Unlock()
	if ok {
		c.Release()
	}
}

func (r *Registry) forget(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, uri)
}

// Delete empties the connection's history and resets it to a fresh
// graph of the same kind, without unregistering the uri.
func (r *Registry) Delete(uri string) error {
	kind, _, err := ParseURI(uri)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conns[uri]
	if !ok {
		return nil
	}

	var graphKind graphdb.Kind
	if kind == KindMultiGraph {
		graphKind = graphdb.KindMulti
	}
	fresh := conn.New(graphKind)
	fresh.SetReleaseHook(func() { r.forget(uri) })
	r.conns[uri] = fresh
	// Detach the old hook first: it would re-lock r.mu and drop the
	// fresh entry just stored under uri.
	c.SetReleaseHook(nil)
	c.Release()
	return nil
}

// Shutdown releases every registered connection. The graphfs CLI calls
// it once its command has returned.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	conns := make([]*conn.Conn, 0, len(r.conns))
	for _, c := range r.conns {
		conns = append(conns, c)
	}
	r.mu.Unlock()
	for _, c := range conns {
		c.Release()
	}
}
