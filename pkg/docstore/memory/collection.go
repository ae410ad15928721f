// Package memory provides an in-memory, thread-safe implementation of
// docstore.Collection. It is suitable for tests and for sessions whose
// graph does not need to outlive the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/ritzau/docgraph/pkg/docstore"
)

// Collection stores documents in a map guarded by an RWMutex. Several graph
// facades may share one collection; each sees the others' writes through
// revision changes.
type Collection struct {
	name string
	kind docstore.Kind

	mu   sync.RWMutex
	docs map[string]*docstore.Document
	seq  uint64
}

// NewCollection creates an empty collection.
func NewCollection(name string, kind docstore.Kind) *Collection {
	return &Collection{
		name: name,
		kind: kind,
		docs: make(map[string]*docstore.Document),
	}
}

func (c *Collection) Name() string       { return c.name }
func (c *Collection) Kind() docstore.Kind { return c.kind }

// nextRev must be called with mu held for writing.
func (c *Collection) nextRev() docstore.Revision {
	c.seq++
	return docstore.Revision("_" + strconv.FormatUint(c.seq, 36))
}

func (c *Collection) Document(ctx context.Context, id string) (*docstore.Document, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", c.name, id, docstore.ErrNotFound)
	}
	return doc.Clone(), nil
}

// Revision reports the current revision of id without copying the document.
func (c *Collection) Revision(ctx context.Context, id string) (docstore.Revision, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[id]
	if !ok {
		return "", fmt.Errorf("%s %q: %w", c.name, id, docstore.ErrNotFound)
	}
	return doc.Rev, nil
}

func (c *Collection) Insert(ctx context.Context, doc *docstore.Document) (*docstore.Document, error) {
	if err := docstore.ValidateInsert(c.kind, doc); err != nil {
		return nil, err
	}

	stored := doc.Clone()
	if stored.Key == "" {
		stored.Key = uuid.NewString()
	}
	stored.ID = docstore.DocumentID(c.name, stored.Key)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[stored.ID]; exists {
		return nil, fmt.Errorf("%s %q: %w", c.name, stored.ID, docstore.ErrConflict)
	}
	stored.Rev = c.nextRev()
	c.docs[stored.ID] = stored
	return stored.Clone(), nil
}

func (c *Collection) Replace(ctx context.Context, id string, props map[string]any) (*docstore.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	old, ok := c.docs[id]
	if !ok {
		return nil, fmt.Errorf("%s %q: %w", c.name, id, docstore.ErrNotFound)
	}
	// Documents are never mutated in place; readers may hold clones of old.
	updated := *old
	updated.Properties = docstore.CopyProperties(props)
	updated.Rev = c.nextRev()
	c.docs[id] = &updated
	return updated.Clone(), nil
}

func (c *Collection) Remove(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return fmt.Errorf("%s %q: %w", c.name, id, docstore.ErrNotFound)
	}
	delete(c.docs, id)
	return nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs), nil
}

// All returns a cursor over a snapshot of the collection ordered by id.
func (c *Collection) All(ctx context.Context) (docstore.Cursor, error) {
	return c.snapshot(func(*docstore.Document) bool { return true }), nil
}

// Edges returns the edges incident to vertexID in the given direction.
func (c *Collection) Edges(ctx context.Context, vertexID string, dir docstore.Direction) (docstore.Cursor, error) {
	if c.kind != docstore.KindEdge {
		return nil, fmt.Errorf("%s is not an edge collection", c.name)
	}
	return c.snapshot(func(d *docstore.Document) bool {
		switch dir {
		case docstore.DirectionIn:
			return d.To == vertexID
		case docstore.DirectionOut:
			return d.From == vertexID
		default:
			return d.From == vertexID || d.To == vertexID
		}
	}), nil
}

func (c *Collection) snapshot(match func(*docstore.Document) bool) docstore.Cursor {
	c.mu.RLock()
	docs := make([]*docstore.Document, 0, len(c.docs))
	for _, d := range c.docs {
		if match(d) {
			docs = append(docs, d.Clone())
		}
	}
	c.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docstore.NewSliceCursor(docs)
}
