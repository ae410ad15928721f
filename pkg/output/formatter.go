// Package output renders graph objects for the console.
package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/ritzau/docgraph/pkg/cycles"
	"github.com/ritzau/docgraph/pkg/graph"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

// Neighbor pairs an outgoing edge with the vertex it points at.
type Neighbor struct {
	Edge   *graph.Edge
	Vertex *graph.Vertex // nil when the target is missing
}

// PrintStats prints the size of the graph and the cache counters.
func PrintStats(w io.Writer, g *graph.Graph, order, size int) {
	bold.Fprintf(w, "%s\n", g)
	fmt.Fprintf(w, "Vertices: %d\n", order)
	fmt.Fprintf(w, "Edges: %d\n", size)

	st := g.Stats()
	cyan.Fprintf(w, "Vertex cache: %d hits, %d misses, %d rebuilds\n",
		st.Vertices.Hits, st.Vertices.Misses, st.Vertices.Rebuilds)
	cyan.Fprintf(w, "Edge cache: %d hits, %d misses, %d rebuilds\n",
		st.Edges.Hits, st.Edges.Misses, st.Edges.Rebuilds)
}

// PrintVertex prints a vertex and its properties.
func PrintVertex(w io.Writer, v *graph.Vertex) {
	bold.Fprintf(w, "%s\n", v)
	fmt.Fprintf(w, "  id: %s\n", v.ID())
	fmt.Fprintf(w, "  rev: %s\n", v.Revision())
	printProperties(w, v.PropertyKeys(), v.Property)
}

// PrintEdge prints an edge, its endpoints and its properties.
func PrintEdge(w io.Writer, e *graph.Edge) {
	bold.Fprintf(w, "%s\n", e)
	fmt.Fprintf(w, "  id: %s\n", e.ID())
	fmt.Fprintf(w, "  rev: %s\n", e.Revision())
	fmt.Fprintf(w, "  %s -> %s\n", e.FromID(), e.ToID())
	if e.Label() != "" {
		cyan.Fprintf(w, "  label: %s\n", e.Label())
	}
	printProperties(w, e.PropertyKeys(), e.Property)
}

func printProperties(w io.Writer, keys []string, get func(string) (any, bool)) {
	for _, k := range keys {
		v, _ := get(k)
		yellow.Fprintf(w, "  %s", k)
		fmt.Fprintf(w, " = %s\n", formatValue(v))
	}
}

func formatValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

// PrintNeighbors prints the outgoing edges of v with their targets.
func PrintNeighbors(w io.Writer, v *graph.Vertex, neighbors []Neighbor) {
	bold.Fprintf(w, "%s: %d outgoing\n", v, len(neighbors))
	for _, n := range neighbors {
		label := n.Edge.Label()
		if label == "" {
			label = "-"
		}
		if n.Vertex == nil {
			red.Fprintf(w, "  [%s] %s -> %s (missing)\n", label, n.Edge.Key(), n.Edge.ToID())
			continue
		}
		fmt.Fprintf(w, "  [%s] %s -> %s\n", label, n.Edge.Key(), n.Vertex.ID())
	}
}

// PrintCycles prints every cycle, or a success line when there are none.
func PrintCycles(w io.Writer, found []cycles.Cycle) {
	if len(found) == 0 {
		green.Fprintln(w, "✓ No cycles found")
		return
	}
	red.Fprintf(w, "CYCLES: %d\n", len(found))
	for i, c := range found {
		yellow.Fprintf(w, "  #%d (%d vertices)\n", i+1, len(c.Vertices))
		for _, id := range c.Vertices {
			fmt.Fprintf(w, "    %s\n", id)
		}
	}
}
