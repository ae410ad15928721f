package graph

import (
	"context"
	"errors"

	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/ritzau/docgraph/pkg/logging"
)

// CacheStats counts identity cache outcomes.
type CacheStats struct {
	Hits     int // cached wrapper returned after revision check
	Misses   int // no entry; document fetched
	Rebuilds int // entry was stale; document fetched and wrapper replaced
}

type cacheEntry[T any] struct {
	rev docstore.Revision
	obj T
}

// identityCache maps document ids to the last wrapper materialised for
// them. An entry is only returned after the store confirms its revision is
// still current.
type identityCache[T any] struct {
	kind    docstore.Kind
	coll    docstore.Collection
	build   func(*docstore.Document) T
	entries map[string]cacheEntry[T]
	stats   CacheStats
}

func newIdentityCache[T any](coll docstore.Collection, build func(*docstore.Document) T) *identityCache[T] {
	return &identityCache[T]{
		kind:    coll.Kind(),
		coll:    coll,
		build:   build,
		entries: make(map[string]cacheEntry[T]),
	}
}

// lookup returns the wrapper for id, rebuilding it if the store holds a
// newer revision than the cached one.
func (c *identityCache[T]) lookup(ctx context.Context, id string) (T, error) {
	entry, cached := c.entries[id]
	if !cached {
		c.stats.Misses++
		return c.load(ctx, id)
	}

	prober, ok := c.coll.(docstore.RevisionProber)
	if !ok {
		// No cheap probe: the full fetch doubles as validation.
		doc, err := c.coll.Document(ctx, id)
		if err != nil {
			return c.fail(ctx, id, err)
		}
		if doc.Rev == entry.rev {
			c.stats.Hits++
			return entry.obj, nil
		}
		c.stats.Rebuilds++
		logging.DebugContext(ctx, "stale cache entry", "kind", c.kind, "id", id, "cached", entry.rev, "current", doc.Rev)
		return c.prime(doc), nil
	}

	rev, err := prober.Revision(ctx, id)
	if err != nil {
		return c.fail(ctx, id, err)
	}
	if rev == entry.rev {
		c.stats.Hits++
		logging.TraceContext(ctx, "cache hit", "kind", c.kind, "id", id)
		return entry.obj, nil
	}

	c.stats.Rebuilds++
	logging.DebugContext(ctx, "stale cache entry", "kind", c.kind, "id", id, "cached", entry.rev, "current", rev)
	return c.load(ctx, id)
}

// resolve returns the wrapper for a document produced by a cursor. A cached
// wrapper of the same revision is reused. Otherwise the cursor's copy is
// only trusted when nothing is cached, since an existing entry may be newer
// than the cursor's snapshot.
func (c *identityCache[T]) resolve(ctx context.Context, doc *docstore.Document) (T, error) {
	entry, cached := c.entries[doc.ID]
	switch {
	case cached && entry.rev == doc.Rev:
		c.stats.Hits++
		return entry.obj, nil
	case cached:
		return c.lookup(ctx, doc.ID)
	default:
		c.stats.Misses++
		return c.prime(doc), nil
	}
}

func (c *identityCache[T]) load(ctx context.Context, id string) (T, error) {
	doc, err := c.coll.Document(ctx, id)
	if err != nil {
		return c.fail(ctx, id, err)
	}
	logging.TraceContext(ctx, "materialised", "kind", c.kind, "id", id, "rev", doc.Rev)
	return c.prime(doc), nil
}

// fail drops any entry for id and translates a missing document into a
// NotFoundError. Misses are never cached so a later insert is observed.
func (c *identityCache[T]) fail(ctx context.Context, id string, err error) (T, error) {
	var zero T
	if errors.Is(err, docstore.ErrNotFound) {
		delete(c.entries, id)
		logging.DebugContext(ctx, "lookup of missing document", "kind", c.kind, "id", id)
		return zero, &NotFoundError{Kind: c.kind, ID: id, Err: err}
	}
	return zero, err
}

// prime stores a wrapper for a document the store has just returned.
func (c *identityCache[T]) prime(doc *docstore.Document) T {
	obj := c.build(doc)
	c.entries[doc.ID] = cacheEntry[T]{rev: doc.Rev, obj: obj}
	return obj
}

// peek returns the cached wrapper for id without validating it.
func (c *identityCache[T]) peek(id string) (T, bool) {
	entry, ok := c.entries[id]
	return entry.obj, ok
}

func (c *identityCache[T]) invalidate(id string) {
	delete(c.entries, id)
}

func (c *identityCache[T]) len() int {
	return len(c.entries)
}
