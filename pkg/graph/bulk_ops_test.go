package graph

import (
	"context"
	"testing"

	"github.com/ritzau/docgraph/pkg/bulk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// star builds hub -> {x, y, z} and returns the vertices keyed by name.
func star(t *testing.T, f *fixture) map[string]*Vertex {
	t.Helper()
	ctx := context.Background()
	vs := make(map[string]*Vertex)
	for _, k := range []string{"hub", "x", "y", "z"} {
		v, err := f.g.AddVertex(ctx, k, map[string]any{"name": k})
		require.NoError(t, err)
		vs[k] = v
	}
	for _, k := range []string{"x", "y", "z"} {
		_, err := vs["hub"].AddOutEdge(ctx, vs[k].Ref(), "hub-"+k, "spoke", nil)
		require.NoError(t, err)
	}
	return vs
}

func TestBulkEndpoints(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	out, err := vs["hub"].OutEdges(ctx)
	require.NoError(t, err)

	edges := bulk.New[*Edge](0)
	edges.Set(0, out[0])
	edges.Set(4, out[2])

	targets, err := InVertices(ctx, edges)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4}, targets.Indices())
	first, _ := targets.Get(0)
	assert.Same(t, vs["x"], first)
	last, _ := targets.Get(4)
	assert.Same(t, vs["z"], last)

	sources, err := OutVertices(ctx, edges)
	require.NoError(t, err)
	for _, v := range sources.Values() {
		assert.Same(t, vs["hub"], v)
	}
}

func TestBulkPeersAreSparse(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	hubEdges, err := vs["hub"].OutEdges(ctx)
	require.NoError(t, err)

	// Only hub-x touches x; the other slots have no peer.
	peers, err := PeerVertices(ctx, bulk.FromSlice(hubEdges), vs["x"])
	require.NoError(t, err)
	assert.Equal(t, 3, peers.Len())
	assert.Equal(t, []int{0}, peers.Indices())
	p, _ := peers.Get(0)
	assert.Same(t, vs["hub"], p)
}

func TestBulkDegrees(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	arr := bulk.New[*Vertex](0)
	arr.Set(0, vs["hub"])
	arr.Set(2, vs["x"])
	arr.Set(5, vs["y"])

	deg, err := Degrees(ctx, arr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5}, deg.Indices())
	assert.Equal(t, []int{3, 1, 1}, deg.Values())

	in, err := InDegrees(ctx, arr)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 1}, in.Values())

	out, err := OutDegrees(ctx, arr)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 0, 0}, out.Values())

	edges, err := OutEdgesOf(ctx, arr, "spoke")
	require.NoError(t, err)
	hubOut, _ := edges.Get(0)
	assert.Len(t, hubOut, 3)

	inEdges, err := InEdgesOf(ctx, arr)
	require.NoError(t, err)
	xIn, _ := inEdges.Get(2)
	assert.Len(t, xIn, 1)

	all, err := EdgesOf(ctx, arr, "other")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2, 5}, all.Indices())
	none, _ := all.Get(0)
	assert.Empty(t, none)
}

func TestBulkProperties(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	arr := bulk.New[*Vertex](0)
	arr.Set(1, vs["x"])
	arr.Set(3, vs["y"])

	updated, err := SetVertexProperty(ctx, arr, "seen", true)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, updated.Indices())

	props := PropertiesOf(updated)
	p, _ := props.Get(3)
	assert.Equal(t, map[string]any{"name": "y", "seen": true}, p)

	fresh, err := f.g.Vertex(ctx, "x")
	require.NoError(t, err)
	seen, _ := fresh.Property("seen")
	assert.Equal(t, true, seen)

	// Properties missing on an element leave its index absent.
	mixed := bulk.New[*Vertex](0)
	mixed.Set(0, fresh)
	mixed.Set(1, vs["z"])
	values := PropertyOf(mixed, "seen")
	assert.Equal(t, []int{0}, values.Indices())
}

func TestBulkEdgeProperty(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	out, err := vs["hub"].OutEdges(ctx)
	require.NoError(t, err)

	updated, err := SetEdgeProperty(ctx, bulk.FromSlice(out), "weight", 2)
	require.NoError(t, err)
	weights := PropertyOf(updated, "weight")
	assert.Equal(t, []any{2, 2, 2}, weights.Values())
}

func TestBulkFailurePropagates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	vs := star(t, f)

	dangling, err := vs["hub"].AddOutEdge(ctx, ByID("ghost"), "hub-ghost", "", nil)
	require.NoError(t, err)

	edges := bulk.New[*Edge](0)
	edges.Set(2, dangling)
	_, err = InVertices(ctx, edges)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidReference)

	var elemErr *bulk.ElementError
	require.ErrorAs(t, err, &elemErr)
	assert.Equal(t, 2, elemErr.Index)
}

func TestResolveVerticesBestEffort(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	star(t, f)

	ids := bulk.FromSlice([]string{"x", "missing", "people/y"})
	resolved, failures := ResolveVertices(ctx, f.g, ids)

	assert.Equal(t, []int{0, 2}, resolved.Indices())
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[1], ErrNotFound)
}
