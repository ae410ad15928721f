package graph

import (
	"context"
	"fmt"
	"sort"

	"github.com/ritzau/docgraph/pkg/docstore"
)

// Vertex is a read-only view of one revision of a vertex document. Fetch
// the vertex again through its Graph to observe later writes.
type Vertex struct {
	graph *Graph
	doc   *docstore.Document
}

func newVertex(g *Graph, doc *docstore.Document) *Vertex {
	return &Vertex{graph: g, doc: doc}
}

// ID returns the document id, or "" once the vertex was removed.
func (v *Vertex) ID() string { return v.doc.ID }

// Key returns the document key.
func (v *Vertex) Key() string { return v.doc.Key }

// Revision returns the revision this view was built from.
func (v *Vertex) Revision() docstore.Revision { return v.doc.Rev }

// Ref returns an endpoint reference for AddEdge.
func (v *Vertex) Ref() VertexRef { return VertexRef{id: v.doc.ID} }

// Property returns a single property value.
func (v *Vertex) Property(name string) (any, bool) {
	val, ok := v.doc.Properties[name]
	return val, ok
}

// PropertyKeys returns the property names in sorted order.
func (v *Vertex) PropertyKeys() []string {
	return propertyKeys(v.doc.Properties)
}

// Properties returns a shallow copy of the property map.
func (v *Vertex) Properties() map[string]any {
	return docstore.CopyProperties(v.doc.Properties)
}

func (v *Vertex) String() string {
	return describe("Vertex", v.doc)
}

// SetProperty writes one property on top of the vertex's current stored
// properties and returns the new revision.
func (v *Vertex) SetProperty(ctx context.Context, name string, value any) (*Vertex, error) {
	current, err := v.graph.Vertex(ctx, v.doc.ID)
	if err != nil {
		return nil, err
	}
	props := current.Properties()
	props[name] = value
	return v.graph.ReplaceVertex(ctx, current.ID(), props)
}

// Edges returns all edges incident to the vertex, optionally restricted to
// the given labels.
func (v *Vertex) Edges(ctx context.Context, labels ...string) ([]*Edge, error) {
	return v.graph.incidentEdges(ctx, v.doc.ID, docstore.DirectionAny, labels)
}

// InEdges returns the edges pointing at the vertex.
func (v *Vertex) InEdges(ctx context.Context, labels ...string) ([]*Edge, error) {
	return v.graph.incidentEdges(ctx, v.doc.ID, docstore.DirectionIn, labels)
}

// OutEdges returns the edges leaving the vertex.
func (v *Vertex) OutEdges(ctx context.Context, labels ...string) ([]*Edge, error) {
	return v.graph.incidentEdges(ctx, v.doc.ID, docstore.DirectionOut, labels)
}

// Degree returns the number of incident edges.
func (v *Vertex) Degree(ctx context.Context) (int, error) {
	edges, err := v.Edges(ctx)
	return len(edges), err
}

// InDegree returns the number of edges pointing at the vertex.
func (v *Vertex) InDegree(ctx context.Context) (int, error) {
	edges, err := v.InEdges(ctx)
	return len(edges), err
}

// OutDegree returns the number of edges leaving the vertex.
func (v *Vertex) OutDegree(ctx context.Context) (int, error) {
	edges, err := v.OutEdges(ctx)
	return len(edges), err
}

// AddInEdge adds an edge from `from` to this vertex.
func (v *Vertex) AddInEdge(ctx context.Context, from VertexRef, key, label string, props map[string]any) (*Edge, error) {
	return v.graph.AddEdge(ctx, from, v.Ref(), key, label, props)
}

// AddOutEdge adds an edge from this vertex to `to`.
func (v *Vertex) AddOutEdge(ctx context.Context, to VertexRef, key, label string, props map[string]any) (*Edge, error) {
	return v.graph.AddEdge(ctx, v.Ref(), to, key, label, props)
}

// markDeleted detaches the view from its document id.
func (v *Vertex) markDeleted() {
	doc := v.doc.Clone()
	doc.ID = ""
	v.doc = doc
}

func propertyKeys(props map[string]any) []string {
	keys := make([]string, 0, len(props))
	for k := range props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func describe(kind string, doc *docstore.Document) string {
	if doc.ID == "" {
		return "[deleted " + kind + "]"
	}
	return fmt.Sprintf("%s(%q)", kind, doc.Key)
}
