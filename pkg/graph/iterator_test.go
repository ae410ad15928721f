package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIteratorExhaustion(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, k := range []string{"a", "b", "c"} {
		_, err := f.g.AddVertex(ctx, k, nil)
		require.NoError(t, err)
	}

	it, err := f.g.Vertices(ctx)
	require.NoError(t, err)
	assert.Equal(t, "[vertex iterator]", it.String())

	var keys []string
	for i := 0; i < 3; i++ {
		v, ok, err := it.Next(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		keys = append(keys, v.Key())
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	for i := 0; i < 3; i++ {
		v, ok, err := it.Next(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, v)
		assert.False(t, it.HasNext())
	}
}

func TestIteratorSharesCacheEntries(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	a, err := f.g.AddVertex(ctx, "a", nil)
	require.NoError(t, err)

	it, err := f.g.Vertices(ctx)
	require.NoError(t, err)
	v, ok, err := it.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, a, v)
}

func TestIteratorPrefersNewerCacheEntry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.g.AddVertex(ctx, "a", map[string]any{"v": 1})
	require.NoError(t, err)

	// The scan snapshot predates the replace below.
	it, err := f.g.Vertices(ctx)
	require.NoError(t, err)

	updated, err := f.g.ReplaceVertex(ctx, "a", map[string]any{"v": 2})
	require.NoError(t, err)

	v, ok, err := it.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Same(t, updated, v)
}

func TestIteratorUncachedDocumentsArePrimed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.vertices.Insert(ctx, &docstore.Document{Key: "direct"})
	require.NoError(t, err)

	it, err := f.g.Edges(ctx)
	require.NoError(t, err)
	assert.False(t, it.HasNext())

	vit, err := f.g.Vertices(ctx)
	require.NoError(t, err)
	v, ok, err := vit.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	again, err := f.g.Vertex(ctx, "direct")
	require.NoError(t, err)
	assert.Same(t, v, again)
	assert.Equal(t, 0, f.vertices.fetches)
}

type failingCursor struct{ served bool }

func (c *failingCursor) HasNext() bool { return !c.served }

func (c *failingCursor) Next() (*docstore.Document, error) {
	c.served = true
	return nil, errors.New("connection reset")
}

func TestIteratorPropagatesCursorErrors(t *testing.T) {
	it := newIterator(&failingCursor{}, func(context.Context, *docstore.Document) (*Vertex, error) {
		t.Fatal("resolve should not be called")
		return nil, nil
	}, "[test]")

	_, ok, err := it.Next(context.Background())
	assert.False(t, ok)
	assert.EqualError(t, err, "connection reset")

	_, ok, err = it.Next(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}
