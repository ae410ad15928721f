// Package graph turns vertex and edge documents into identity-stable graph
// objects.
//
// A Graph owns an identity cache per collection, mapping each document id to
// the last Vertex or Edge built for it. Every lookup re-validates the cached
// revision against the store, so writes made by other graphs or direct
// store clients are observed without locking. Vertex and Edge values are
// only ever built by the cache.
//
// A Graph also carries a predecessor memo table for traversal algorithms.
//
// A Graph is not safe for concurrent use; give each session its own. The
// underlying collections may be shared freely.
package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/ritzau/docgraph/pkg/logging"
)

// LabelKey is the reserved property key under which an edge label may be
// passed to AddEdge. It is never stored as a property.
const LabelKey = "$label"

// Graph is the facade over a vertex collection and an edge collection.
type Graph struct {
	name     string
	vertices docstore.Collection
	edges    docstore.Collection

	vertexCache  *identityCache[*Vertex]
	edgeCache    *identityCache[*Edge]
	predecessors *Predecessors
}

// Stats reports the identity cache counters of a graph.
type Stats struct {
	Vertices       CacheStats
	Edges          CacheStats
	CachedVertices int
	CachedEdges    int
	Predecessors   int
}

// New creates a graph over the given collections.
func New(name string, vertices, edges docstore.Collection) (*Graph, error) {
	if vertices.Kind() != docstore.KindVertex {
		return nil, fmt.Errorf("collection %s is not a vertex collection", vertices.Name())
	}
	if edges.Kind() != docstore.KindEdge {
		return nil, fmt.Errorf("collection %s is not an edge collection", edges.Name())
	}

	g := &Graph{
		name:         name,
		vertices:     vertices,
		edges:        edges,
		predecessors: NewPredecessors(),
	}
	g.vertexCache = newIdentityCache(vertices, func(doc *docstore.Document) *Vertex {
		return newVertex(g, doc)
	})
	g.edgeCache = newIdentityCache(edges, func(doc *docstore.Document) *Edge {
		return newEdge(g, doc)
	})
	return g, nil
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

func (g *Graph) String() string {
	return fmt.Sprintf("Graph(%q)", g.name)
}

// Order returns the number of vertices currently stored.
func (g *Graph) Order(ctx context.Context) (int, error) {
	return g.vertices.Count(ctx)
}

// Size returns the number of edges currently stored.
func (g *Graph) Size(ctx context.Context) (int, error) {
	return g.edges.Count(ctx)
}

// Stats returns a snapshot of the cache counters.
func (g *Graph) Stats() Stats {
	return Stats{
		Vertices:       g.vertexCache.stats,
		Edges:          g.edgeCache.stats,
		CachedVertices: g.vertexCache.len(),
		CachedEdges:    g.edgeCache.len(),
		Predecessors:   g.predecessors.Len(),
	}
}

// qualify turns a bare key into an id in coll. Ids that already carry a
// collection prefix are returned unchanged.
func qualify(coll docstore.Collection, id string) string {
	if _, _, ok := docstore.SplitID(id); ok {
		return id
	}
	return docstore.DocumentID(coll.Name(), id)
}

// Vertex returns the vertex for id (or key). A missing document yields a
// *NotFoundError.
func (g *Graph) Vertex(ctx context.Context, id string) (*Vertex, error) {
	return g.vertexCache.lookup(ctx, qualify(g.vertices, id))
}

// Edge returns the edge for id (or key). A missing document yields a
// *NotFoundError.
func (g *Graph) Edge(ctx context.Context, id string) (*Edge, error) {
	return g.edgeCache.lookup(ctx, qualify(g.edges, id))
}

// VertexOrAdd returns the vertex for id, creating it with no properties if
// it does not exist.
func (g *Graph) VertexOrAdd(ctx context.Context, id string) (*Vertex, error) {
	v, err := g.Vertex(ctx, id)
	if err == nil || !errors.Is(err, ErrNotFound) {
		return v, err
	}

	coll, key, _ := docstore.SplitID(qualify(g.vertices, id))
	if coll != g.vertices.Name() {
		return nil, fmt.Errorf("%w: %q does not belong to collection %s", docstore.ErrInvalidDocument, id, g.vertices.Name())
	}
	logging.Debug("adding missing vertex", "graph", g.name, "key", key)
	return g.AddVertex(ctx, key, nil)
}

// AddVertex stores a new vertex. An empty key lets the store choose one.
// props is copied; nil means no properties. Store errors such as
// docstore.ErrConflict are returned as is.
func (g *Graph) AddVertex(ctx context.Context, key string, props map[string]any) (*Vertex, error) {
	doc, err := g.vertices.Insert(ctx, &docstore.Document{
		Key:        key,
		Properties: docstore.CopyProperties(props),
	})
	if err != nil {
		return nil, err
	}
	return g.vertexCache.prime(doc), nil
}

// AddEdge stores a new edge from one vertex to another. The endpoints are
// not checked here; a dangling endpoint surfaces when it is resolved.
//
// An empty label falls back to a string stored under LabelKey in props.
// LabelKey is stripped from the stored properties either way.
func (g *Graph) AddEdge(ctx context.Context, from, to VertexRef, key, label string, props map[string]any) (*Edge, error) {
	label, stored := prepareEdgeData(label, props)
	doc, err := g.edges.Insert(ctx, &docstore.Document{
		Key:        key,
		From:       qualify(g.vertices, from.id),
		To:         qualify(g.vertices, to.id),
		Label:      label,
		Properties: stored,
	})
	if err != nil {
		return nil, err
	}
	return g.edgeCache.prime(doc), nil
}

func prepareEdgeData(label string, props map[string]any) (string, map[string]any) {
	stored := docstore.CopyProperties(props)
	if embedded, ok := stored[LabelKey].(string); ok && label == "" {
		label = embedded
	}
	delete(stored, LabelKey)
	return label, stored
}

// ReplaceVertex overwrites the properties of a vertex and returns the new
// revision. The cache entry is refreshed from the store's answer.
func (g *Graph) ReplaceVertex(ctx context.Context, id string, props map[string]any) (*Vertex, error) {
	id = qualify(g.vertices, id)
	doc, err := g.vertices.Replace(ctx, id, docstore.CopyProperties(props))
	if err != nil {
		g.vertexCache.invalidate(id)
		return nil, err
	}
	return g.vertexCache.prime(doc), nil
}

// ReplaceEdge overwrites the properties of an edge and returns the new
// revision. Endpoints and label are unchanged; LabelKey is ignored.
func (g *Graph) ReplaceEdge(ctx context.Context, id string, props map[string]any) (*Edge, error) {
	id = qualify(g.edges, id)
	_, stored := prepareEdgeData("", props)
	doc, err := g.edges.Replace(ctx, id, stored)
	if err != nil {
		g.edgeCache.invalidate(id)
		return nil, err
	}
	return g.edgeCache.prime(doc), nil
}

// RemoveEdge deletes an edge. e and any cached view of it render as
// deleted afterwards.
func (g *Graph) RemoveEdge(ctx context.Context, e *Edge) error {
	id := e.ID()
	if id == "" {
		return &NotFoundError{Kind: docstore.KindEdge, ID: e.Key()}
	}
	if err := g.edges.Remove(ctx, id); err != nil {
		g.edgeCache.invalidate(id)
		return err
	}
	if cached, ok := g.edgeCache.peek(id); ok && cached != e {
		cached.markDeleted()
	}
	g.edgeCache.invalidate(id)
	e.markDeleted()
	return nil
}

// RemoveVertex deletes a vertex together with its incident edges, when the
// edge collection can find them. v and any cached view of it render as
// deleted afterwards.
func (g *Graph) RemoveVertex(ctx context.Context, v *Vertex) error {
	id := v.ID()
	if id == "" {
		return &NotFoundError{Kind: docstore.KindVertex, ID: v.Key()}
	}

	if _, ok := g.edges.(docstore.EdgeIndex); ok {
		incident, err := g.incidentEdges(ctx, id, docstore.DirectionAny, nil)
		if err != nil {
			return fmt.Errorf("collecting edges of %s: %w", id, err)
		}
		for _, e := range incident {
			if err := g.RemoveEdge(ctx, e); err != nil && !errors.Is(err, ErrNotFound) {
				return fmt.Errorf("removing edge %s of %s: %w", e.Key(), id, err)
			}
		}
	}

	if err := g.vertices.Remove(ctx, id); err != nil {
		g.vertexCache.invalidate(id)
		return err
	}
	if cached, ok := g.vertexCache.peek(id); ok && cached != v {
		cached.markDeleted()
	}
	g.vertexCache.invalidate(id)
	v.markDeleted()
	return nil
}

// Vertices returns a lazy sequence over all vertices.
func (g *Graph) Vertices(ctx context.Context) (*Iterator[*Vertex], error) {
	scanner, ok := g.vertices.(docstore.Scanner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", g.vertices.Name(), ErrNotScannable)
	}
	cursor, err := scanner.All(ctx)
	if err != nil {
		return nil, err
	}
	return newIterator(cursor, g.vertexCache.resolve, "[vertex iterator]"), nil
}

// Edges returns a lazy sequence over all edges.
func (g *Graph) Edges(ctx context.Context) (*Iterator[*Edge], error) {
	scanner, ok := g.edges.(docstore.Scanner)
	if !ok {
		return nil, fmt.Errorf("%s: %w", g.edges.Name(), ErrNotScannable)
	}
	cursor, err := scanner.All(ctx)
	if err != nil {
		return nil, err
	}
	return newIterator(cursor, g.edgeCache.resolve, "[edge iterator]"), nil
}

func (g *Graph) incidentEdges(ctx context.Context, vertexID string, dir docstore.Direction, labels []string) ([]*Edge, error) {
	index, ok := g.edges.(docstore.EdgeIndex)
	if !ok {
		return nil, fmt.Errorf("%s: %w", g.edges.Name(), ErrNoEdgeIndex)
	}
	cursor, err := index.Edges(ctx, vertexID, dir)
	if err != nil {
		return nil, err
	}

	it := newIterator(cursor, g.edgeCache.resolve, "[incident edge iterator]")
	var edges []*Edge
	for {
		e, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return edges, nil
		}
		if matchesLabel(e, labels) {
			edges = append(edges, e)
		}
	}
}

func matchesLabel(e *Edge, labels []string) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels {
		if e.Label() == l {
			return true
		}
	}
	return false
}

// endpoint resolves one end of e through the vertex cache.
func (g *Graph) endpoint(ctx context.Context, e *Edge, which, vertexID string) (*Vertex, error) {
	v, err := g.vertexCache.lookup(ctx, vertexID)
	if errors.Is(err, ErrNotFound) {
		return nil, &InvalidReferenceError{EdgeID: e.ID(), Endpoint: which, VertexID: vertexID, Err: err}
	}
	return v, err
}

// ClearPredecessors empties the predecessor memo table.
func (g *Graph) ClearPredecessors() {
	g.predecessors.Clear()
}

// Predecessor returns the value memoised for the (target, source) pair.
func (g *Graph) Predecessor(target, source *Vertex) (any, bool) {
	return g.predecessors.Get(target.ID(), source.ID())
}

// SetPredecessor memoises value for the (target, source) pair.
func (g *Graph) SetPredecessor(target, source *Vertex, value any) {
	g.predecessors.Set(target.ID(), source.ID(), value)
}
