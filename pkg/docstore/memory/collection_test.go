package memory

import (
	"context"
	"testing"

	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertAssignsIDAndRevision(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)

	doc, err := c.Insert(ctx, &docstore.Document{Key: "alice", Properties: map[string]any{"age": 30}})
	require.NoError(t, err)
	assert.Equal(t, "people/alice", doc.ID)
	assert.NotEmpty(t, doc.Rev)

	rev, err := c.Revision(ctx, "people/alice")
	require.NoError(t, err)
	assert.Equal(t, doc.Rev, rev)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestInsertGeneratesKey(t *testing.T) {
	c := NewCollection("people", docstore.KindVertex)

	doc, err := c.Insert(context.Background(), &docstore.Document{})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Key)
	assert.Equal(t, "people/"+doc.Key, doc.ID)
}

func TestInsertDuplicateKey(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)

	_, err := c.Insert(ctx, &docstore.Document{Key: "alice"})
	require.NoError(t, err)

	_, err = c.Insert(ctx, &docstore.Document{Key: "alice"})
	assert.ErrorIs(t, err, docstore.ErrConflict)
}

func TestInsertValidatesKind(t *testing.T) {
	ctx := context.Background()

	edges := NewCollection("knows", docstore.KindEdge)
	_, err := edges.Insert(ctx, &docstore.Document{Key: "e1"})
	assert.ErrorIs(t, err, docstore.ErrInvalidDocument)

	vertices := NewCollection("people", docstore.KindVertex)
	_, err = vertices.Insert(ctx, &docstore.Document{Key: "v", From: "people/a", To: "people/b"})
	assert.ErrorIs(t, err, docstore.ErrInvalidDocument)
}

func TestReplaceChangesRevision(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)

	first, err := c.Insert(ctx, &docstore.Document{Key: "alice", Properties: map[string]any{"age": 30}})
	require.NoError(t, err)

	second, err := c.Replace(ctx, first.ID, map[string]any{"age": 31})
	require.NoError(t, err)
	assert.NotEqual(t, first.Rev, second.Rev)
	assert.Equal(t, 31, second.Properties["age"])

	// The earlier snapshot is untouched.
	assert.Equal(t, 30, first.Properties["age"])

	_, err = c.Replace(ctx, "people/nobody", nil)
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestDocumentReturnsCopy(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)
	_, err := c.Insert(ctx, &docstore.Document{Key: "alice", Properties: map[string]any{"age": 30}})
	require.NoError(t, err)

	doc, err := c.Document(ctx, "people/alice")
	require.NoError(t, err)
	doc.Properties["age"] = 99

	again, err := c.Document(ctx, "people/alice")
	require.NoError(t, err)
	assert.Equal(t, 30, again.Properties["age"])
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)
	_, err := c.Insert(ctx, &docstore.Document{Key: "alice"})
	require.NoError(t, err)

	require.NoError(t, c.Remove(ctx, "people/alice"))
	_, err = c.Document(ctx, "people/alice")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	_, err = c.Revision(ctx, "people/alice")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
	assert.ErrorIs(t, c.Remove(ctx, "people/alice"), docstore.ErrNotFound)
}

func TestEdgesByDirection(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("knows", docstore.KindEdge)
	for _, e := range []docstore.Document{
		{Key: "ab", From: "people/a", To: "people/b"},
		{Key: "ca", From: "people/c", To: "people/a"},
		{Key: "bc", From: "people/b", To: "people/c"},
	} {
		_, err := c.Insert(ctx, &e)
		require.NoError(t, err)
	}

	collect := func(dir docstore.Direction) []string {
		cur, err := c.Edges(ctx, "people/a", dir)
		require.NoError(t, err)
		var keys []string
		for cur.HasNext() {
			d, err := cur.Next()
			require.NoError(t, err)
			keys = append(keys, d.Key)
		}
		return keys
	}

	assert.Equal(t, []string{"ab", "ca"}, collect(docstore.DirectionAny))
	assert.Equal(t, []string{"ca"}, collect(docstore.DirectionIn))
	assert.Equal(t, []string{"ab"}, collect(docstore.DirectionOut))
}

func TestAllIsOrderedSnapshot(t *testing.T) {
	ctx := context.Background()
	c := NewCollection("people", docstore.KindVertex)
	for _, k := range []string{"c", "a", "b"} {
		_, err := c.Insert(ctx, &docstore.Document{Key: k})
		require.NoError(t, err)
	}

	cur, err := c.All(ctx)
	require.NoError(t, err)

	// Writes after the scan started do not show up in it.
	_, err = c.Insert(ctx, &docstore.Document{Key: "d"})
	require.NoError(t, err)

	var ids []string
	for cur.HasNext() {
		d, err := cur.Next()
		require.NoError(t, err)
		ids = append(ids, d.ID)
	}
	assert.Equal(t, []string{"people/a", "people/b", "people/c"}, ids)

	_, err = cur.Next()
	assert.Error(t, err)
}
