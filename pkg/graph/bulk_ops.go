package graph

import (
	"context"

	"github.com/ritzau/docgraph/pkg/bulk"
)

// Object is the behaviour shared by vertices and edges.
type Object interface {
	ID() string
	Property(name string) (any, bool)
	Properties() map[string]any
}

// The functions below apply one per-element method to a whole bulk.Array.
// Each keeps the input's index set; indices only disappear where the
// element legitimately has no result, never to hide a failure.

// InVertices resolves the target vertex of every edge.
func InVertices(ctx context.Context, edges *bulk.Array[*Edge]) (*bulk.Array[*Vertex], error) {
	return bulk.Broadcast(edges, func(e *Edge) (*Vertex, error) {
		return e.InVertex(ctx)
	})
}

// OutVertices resolves the source vertex of every edge.
func OutVertices(ctx context.Context, edges *bulk.Array[*Edge]) (*bulk.Array[*Vertex], error) {
	return bulk.Broadcast(edges, func(e *Edge) (*Vertex, error) {
		return e.OutVertex(ctx)
	})
}

// PeerVertices resolves the endpoint opposite v for every edge. Edges that
// do not touch v leave their index absent.
func PeerVertices(ctx context.Context, edges *bulk.Array[*Edge], v *Vertex) (*bulk.Array[*Vertex], error) {
	return bulk.Broadcast(edges, func(e *Edge) (*Vertex, error) {
		peer, ok, err := e.Peer(ctx, v)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, bulk.ErrSkip
		}
		return peer, nil
	})
}

// EdgesOf returns the incident edges of every vertex.
func EdgesOf(ctx context.Context, vertices *bulk.Array[*Vertex], labels ...string) (*bulk.Array[[]*Edge], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) ([]*Edge, error) {
		return v.Edges(ctx, labels...)
	})
}

// InEdgesOf returns the inbound edges of every vertex.
func InEdgesOf(ctx context.Context, vertices *bulk.Array[*Vertex], labels ...string) (*bulk.Array[[]*Edge], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) ([]*Edge, error) {
		return v.InEdges(ctx, labels...)
	})
}

// OutEdgesOf returns the outbound edges of every vertex.
func OutEdgesOf(ctx context.Context, vertices *bulk.Array[*Vertex], labels ...string) (*bulk.Array[[]*Edge], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) ([]*Edge, error) {
		return v.OutEdges(ctx, labels...)
	})
}

// Degrees returns the degree of every vertex.
func Degrees(ctx context.Context, vertices *bulk.Array[*Vertex]) (*bulk.Array[int], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) (int, error) {
		return v.Degree(ctx)
	})
}

// InDegrees returns the in-degree of every vertex.
func InDegrees(ctx context.Context, vertices *bulk.Array[*Vertex]) (*bulk.Array[int], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) (int, error) {
		return v.InDegree(ctx)
	})
}

// OutDegrees returns the out-degree of every vertex.
func OutDegrees(ctx context.Context, vertices *bulk.Array[*Vertex]) (*bulk.Array[int], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) (int, error) {
		return v.OutDegree(ctx)
	})
}

// PropertiesOf returns a copy of every element's properties.
func PropertiesOf[T Object](objs *bulk.Array[T]) *bulk.Array[map[string]any] {
	// Properties cannot fail, so neither can the broadcast.
	out, _ := bulk.Broadcast(objs, func(o T) (map[string]any, error) {
		return o.Properties(), nil
	})
	return out
}

// PropertyOf returns one property of every element. Elements without the
// property leave their index absent.
func PropertyOf[T Object](objs *bulk.Array[T], name string) *bulk.Array[any] {
	out, _ := bulk.Broadcast(objs, func(o T) (any, error) {
		v, ok := o.Property(name)
		if !ok {
			return nil, bulk.ErrSkip
		}
		return v, nil
	})
	return out
}

// SetVertexProperty writes one property on every vertex and returns the new
// revisions.
func SetVertexProperty(ctx context.Context, vertices *bulk.Array[*Vertex], name string, value any) (*bulk.Array[*Vertex], error) {
	return bulk.Broadcast(vertices, func(v *Vertex) (*Vertex, error) {
		return v.SetProperty(ctx, name, value)
	})
}

// SetEdgeProperty writes one property on every edge and returns the new
// revisions.
func SetEdgeProperty(ctx context.Context, edges *bulk.Array[*Edge], name string, value any) (*bulk.Array[*Edge], error) {
	return bulk.Broadcast(edges, func(e *Edge) (*Edge, error) {
		return e.SetProperty(ctx, name, value)
	})
}

// ResolveVertices looks up every id, best effort. Ids without a document
// leave their index absent and are reported in the failure map.
func ResolveVertices(ctx context.Context, g *Graph, ids *bulk.Array[string]) (*bulk.Array[*Vertex], map[int]error) {
	return bulk.BroadcastBestEffort(ids, func(id string) (*Vertex, error) {
		return g.Vertex(ctx, id)
	})
}
