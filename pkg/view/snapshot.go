// Package view materialises a read-only gonum snapshot of a graph for
// whole-graph algorithms.
package view

import (
	"context"
	"fmt"
	"sort"

	"github.com/ritzau/docgraph/pkg/graph"
	"github.com/ritzau/docgraph/pkg/logging"
	"gonum.org/v1/gonum/graph/simple"
)

// Snapshot is a directed graph of vertex ids taken at one point in time.
// Parallel edges collapse into one and self loops are dropped.
type Snapshot struct {
	graph  *simple.DirectedGraph
	ids    map[string]int64 // vertex id -> node id
	names  map[int64]string // node id -> vertex id
	nextID int64
	loops  int
}

// NewSnapshot returns an empty snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		graph: simple.NewDirectedGraph(),
		ids:   make(map[string]int64),
		names: make(map[int64]string),
	}
}

// Build walks every vertex and edge of g into a new snapshot. Edges whose
// endpoints were not seen as vertices still contribute their endpoints.
func Build(ctx context.Context, g *graph.Graph) (*Snapshot, error) {
	s := NewSnapshot()

	vertices, err := g.Vertices(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing vertices of %s: %w", g.Name(), err)
	}
	for {
		v, ok, err := vertices.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading vertices of %s: %w", g.Name(), err)
		}
		if !ok {
			break
		}
		s.AddVertex(v.ID())
	}

	edges, err := g.Edges(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing edges of %s: %w", g.Name(), err)
	}
	for {
		e, ok, err := edges.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("reading edges of %s: %w", g.Name(), err)
		}
		if !ok {
			break
		}
		s.AddEdge(e.FromID(), e.ToID())
	}

	logging.DebugContext(ctx, "built snapshot", "graph", g.Name(), "vertices", s.Order(), "edges", s.Size(), "loops", s.loops)
	return s, nil
}

// AddVertex adds a vertex id to the snapshot. Adding it twice is a no-op.
func (s *Snapshot) AddVertex(id string) {
	if _, exists := s.ids[id]; exists {
		return
	}
	s.ids[id] = s.nextID
	s.names[s.nextID] = id
	s.graph.AddNode(simple.Node(s.nextID))
	s.nextID++
}

// AddEdge adds a directed edge, adding missing endpoints first.
func (s *Snapshot) AddEdge(from, to string) {
	s.AddVertex(from)
	s.AddVertex(to)

	// simple.DirectedGraph panics on self edges.
	if from == to {
		s.loops++
		return
	}

	fid, tid := s.ids[from], s.ids[to]
	if !s.graph.HasEdgeFromTo(fid, tid) {
		s.graph.SetEdge(s.graph.NewEdge(s.graph.Node(fid), s.graph.Node(tid)))
	}
}

// Graph returns the underlying directed graph.
func (s *Snapshot) Graph() *simple.DirectedGraph {
	return s.graph
}

// VertexID returns the vertex id of a gonum node id.
func (s *Snapshot) VertexID(node int64) (string, bool) {
	id, ok := s.names[node]
	return id, ok
}

// NodeID returns the gonum node id of a vertex id.
func (s *Snapshot) NodeID(vertex string) (int64, bool) {
	id, ok := s.ids[vertex]
	return id, ok
}

// Order returns the number of vertices.
func (s *Snapshot) Order() int {
	return len(s.ids)
}

// Size returns the number of distinct non-loop edges.
func (s *Snapshot) Size() int {
	return s.graph.Edges().Len()
}

// Loops returns the number of self loops that were dropped.
func (s *Snapshot) Loops() int {
	return s.loops
}

// Vertices returns all vertex ids, sorted.
func (s *Snapshot) Vertices() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Successors returns the ids the given vertex has edges to, sorted.
func (s *Snapshot) Successors(vertex string) []string {
	nid, ok := s.ids[vertex]
	if !ok {
		return nil
	}
	var out []string
	it := s.graph.From(nid)
	for it.Next() {
		out = append(out, s.names[it.Node().ID()])
	}
	sort.Strings(out)
	return out
}
