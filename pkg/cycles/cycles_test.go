package cycles

import (
	"reflect"
	"strconv"
	"testing"

	"github.com/ritzau/docgraph/pkg/view"
)

func snapshot(edges ...[2]string) *view.Snapshot {
	s := view.NewSnapshot()
	for _, e := range edges {
		s.AddEdge(e[0], e[1])
	}
	return s
}

func TestFind(t *testing.T) {
	tests := []struct {
		name  string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "no cycles",
			edges: [][2]string{{"v/a", "v/b"}, {"v/b", "v/c"}},
			want:  nil,
		},
		{
			name:  "simple cycle",
			edges: [][2]string{{"v/a", "v/b"}, {"v/b", "v/a"}},
			want:  [][]string{{"v/a", "v/b"}},
		},
		{
			name:  "three node cycle",
			edges: [][2]string{{"v/a", "v/b"}, {"v/b", "v/c"}, {"v/c", "v/a"}},
			want:  [][]string{{"v/a", "v/b", "v/c"}},
		},
		{
			name: "multiple cycles",
			edges: [][2]string{
				{"v/d", "v/e"}, {"v/e", "v/f"}, {"v/f", "v/d"},
				{"v/a", "v/b"}, {"v/b", "v/a"},
			},
			want: [][]string{{"v/a", "v/b"}, {"v/d", "v/e", "v/f"}},
		},
		{
			name: "cycle with acyclic parts",
			edges: [][2]string{
				{"v/a", "v/b"}, {"v/b", "v/c"},
				{"v/c", "v/d"}, {"v/d", "v/e"}, {"v/e", "v/d"},
			},
			want: [][]string{{"v/d", "v/e"}},
		},
		{
			name:  "self loop is not a cycle",
			edges: [][2]string{{"v/a", "v/a"}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cycles := Find(snapshot(tt.edges...))

			var got [][]string
			for _, c := range cycles {
				got = append(got, c.Vertices)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Find() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindLongChain(t *testing.T) {
	const n = 10000
	s := view.NewSnapshot()
	name := func(i int) string { return "v/" + strconv.Itoa(i) }
	for i := 0; i < n; i++ {
		s.AddEdge(name(i), name((i+1)%n))
	}

	cycles := Find(s)
	if len(cycles) != 1 {
		t.Fatalf("Expected 1 cycle, got %d", len(cycles))
	}
	if len(cycles[0].Vertices) != n {
		t.Errorf("Expected cycle of length %d, got %d", n, len(cycles[0].Vertices))
	}
}
