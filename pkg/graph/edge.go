package graph

import (
	"context"

	"github.com/ritzau/docgraph/pkg/docstore"
)

// VertexRef names an edge endpoint. Build one with ByID or Vertex.Ref.
type VertexRef struct {
	id string
}

// ByID references a vertex by id or by key within the graph's vertex
// collection.
func ByID(id string) VertexRef {
	return VertexRef{id: id}
}

// ID returns the referenced id as given.
func (r VertexRef) ID() string { return r.id }

// Edge is a read-only view of one revision of an edge document. Endpoints
// are resolved through the owning graph each time they are requested.
type Edge struct {
	graph *Graph
	doc   *docstore.Document
}

func newEdge(g *Graph, doc *docstore.Document) *Edge {
	return &Edge{graph: g, doc: doc}
}

// ID returns the document id, or "" once the edge was removed.
func (e *Edge) ID() string { return e.doc.ID }

// Key returns the document key.
func (e *Edge) Key() string { return e.doc.Key }

// Revision returns the revision this view was built from.
func (e *Edge) Revision() docstore.Revision { return e.doc.Rev }

// Label returns the edge label, "" if none was given.
func (e *Edge) Label() string { return e.doc.Label }

// FromID returns the id of the vertex the edge leaves.
func (e *Edge) FromID() string { return e.doc.From }

// ToID returns the id of the vertex the edge points at.
func (e *Edge) ToID() string { return e.doc.To }

// Property returns a single property value.
func (e *Edge) Property(name string) (any, bool) {
	val, ok := e.doc.Properties[name]
	return val, ok
}

// PropertyKeys returns the property names in sorted order.
func (e *Edge) PropertyKeys() []string {
	return propertyKeys(e.doc.Properties)
}

// Properties returns a shallow copy of the property map.
func (e *Edge) Properties() map[string]any {
	return docstore.CopyProperties(e.doc.Properties)
}

func (e *Edge) String() string {
	return describe("Edge", e.doc)
}

// OutVertex resolves the vertex the edge leaves.
func (e *Edge) OutVertex(ctx context.Context) (*Vertex, error) {
	return e.graph.endpoint(ctx, e, "from", e.doc.From)
}

// InVertex resolves the vertex the edge points at.
func (e *Edge) InVertex(ctx context.Context) (*Vertex, error) {
	return e.graph.endpoint(ctx, e, "to", e.doc.To)
}

// Peer returns the endpoint opposite v. ok is false, with a nil error, when
// v is not an endpoint of the edge.
func (e *Edge) Peer(ctx context.Context, v *Vertex) (peer *Vertex, ok bool, err error) {
	switch v.ID() {
	case "":
		return nil, false, nil
	case e.doc.To:
		peer, err = e.OutVertex(ctx)
	case e.doc.From:
		peer, err = e.InVertex(ctx)
	default:
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return peer, true, nil
}

// SetProperty writes one property on top of the edge's current stored
// properties and returns the new revision.
func (e *Edge) SetProperty(ctx context.Context, name string, value any) (*Edge, error) {
	current, err := e.graph.Edge(ctx, e.doc.ID)
	if err != nil {
		return nil, err
	}
	props := current.Properties()
	props[name] = value
	return e.graph.ReplaceEdge(ctx, current.ID(), props)
}

func (e *Edge) markDeleted() {
	doc := e.doc.Clone()
	doc.ID = ""
	e.doc = doc
}
