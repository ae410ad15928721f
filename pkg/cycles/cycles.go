// Package cycles reports circular paths between vertices of a graph
// snapshot.
package cycles

import (
	"sort"

	"github.com/ritzau/docgraph/pkg/view"
)

// Cycle is a strongly connected set of vertices.
type Cycle struct {
	Vertices []string // vertex ids, sorted
}

// Find returns every cycle in the snapshot, ordered by their first vertex.
func Find(s *view.Snapshot) []Cycle {
	sccs := NewTarjanSCC(s.Graph()).FindSCCs()

	cycles := make([]Cycle, 0, len(sccs))
	for _, scc := range sccs {
		ids := make([]string, 0, len(scc))
		for _, node := range scc {
			if id, ok := s.VertexID(node); ok {
				ids = append(ids, id)
			}
		}
		sort.Strings(ids)
		cycles = append(cycles, Cycle{Vertices: ids})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Vertices[0] < cycles[j].Vertices[0]
	})
	return cycles
}
