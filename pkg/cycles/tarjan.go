package cycles

import (
	"slices"

	"gonum.org/v1/gonum/graph"
)

// TarjanSCC finds strongly connected components with more than one node
// using Tarjan's algorithm. Nodes and successors are visited in ascending id
// order so results are deterministic.
type TarjanSCC struct {
	graph   graph.Directed
	index   int
	stack   []int64
	onStack map[int64]bool
	indices map[int64]int
	lowLink map[int64]int
	sccs    [][]int64
}

// NewTarjanSCC creates a new Tarjan SCC finder
func NewTarjanSCC(g graph.Directed) *TarjanSCC {
	return &TarjanSCC{
		graph:   g,
		onStack: make(map[int64]bool),
		indices: make(map[int64]int),
		lowLink: make(map[int64]int),
	}
}

// frame is one level of the explicit depth-first stack.
type frame struct {
	node  int64
	succs []int64
	next  int
}

// FindSCCs finds all strongly connected components in the graph
func (t *TarjanSCC) FindSCCs() [][]int64 {
	for _, id := range sortedIDs(t.graph.Nodes()) {
		if _, visited := t.indices[id]; !visited {
			t.strongConnect(id)
		}
	}
	return t.sccs
}

// strongConnect runs Tarjan's algorithm from root without recursion, so
// long chains in large stores cannot exhaust the goroutine stack.
func (t *TarjanSCC) strongConnect(root int64) {
	work := []*frame{t.visit(root)}

	for len(work) > 0 {
		f := work[len(work)-1]

		if f.next < len(f.succs) {
			succ := f.succs[f.next]
			f.next++
			if _, visited := t.indices[succ]; !visited {
				work = append(work, t.visit(succ))
			} else if t.onStack[succ] {
				t.lowLink[f.node] = min(t.lowLink[f.node], t.indices[succ])
			}
			continue
		}

		work = work[:len(work)-1]
		if len(work) > 0 {
			parent := work[len(work)-1].node
			t.lowLink[parent] = min(t.lowLink[parent], t.lowLink[f.node])
		}

		if t.lowLink[f.node] == t.indices[f.node] {
			t.pop(f.node)
		}
	}
}

func (t *TarjanSCC) visit(id int64) *frame {
	t.indices[id] = t.index
	t.lowLink[id] = t.index
	t.index++
	t.stack = append(t.stack, id)
	t.onStack[id] = true
	return &frame{node: id, succs: sortedIDs(t.graph.From(id))}
}

// pop removes the component rooted at root from the stack.
func (t *TarjanSCC) pop(root int64) {
	var scc []int64
	for {
		w := t.stack[len(t.stack)-1]
		t.stack = t.stack[:len(t.stack)-1]
		t.onStack[w] = false
		scc = append(scc, w)
		if w == root {
			break
		}
	}
	// Single nodes are not cycles; self loops never reach a snapshot.
	if len(scc) > 1 {
		slices.Reverse(scc)
		t.sccs = append(t.sccs, scc)
	}
}

func sortedIDs(nodes graph.Nodes) []int64 {
	var ids []int64
	for nodes.Next() {
		ids = append(ids, nodes.Node().ID())
	}
	slices.Sort(ids)
	return ids
}
