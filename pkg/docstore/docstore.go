// Package docstore defines the document store contract the graph layer is
// built on. A store holds collections of revisioned, id-keyed documents;
// vertex collections hold plain documents and edge collections hold
// documents that additionally reference two vertex ids.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no document exists for an id.
	ErrNotFound = errors.New("document not found")

	// ErrConflict is returned when inserting a document whose key is taken.
	ErrConflict = errors.New("unique constraint violated")

	// ErrInvalidDocument is returned for documents a collection cannot hold,
	// e.g. an edge without endpoints.
	ErrInvalidDocument = errors.New("invalid document")
)

// Kind distinguishes vertex collections from edge collections.
type Kind string

const (
	KindVertex Kind = "vertex"
	KindEdge   Kind = "edge"
)

// Direction selects which incident edges of a vertex to return.
type Direction int

const (
	DirectionAny Direction = iota
	DirectionIn            // edges whose To is the vertex
	DirectionOut           // edges whose From is the vertex
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "inbound"
	case DirectionOut:
		return "outbound"
	default:
		return "any"
	}
}

// Revision is an opaque token that changes whenever a document is written.
// Revisions are only ever compared for equality.
type Revision string

// Document is a stored vertex or edge.
type Document struct {
	ID         string         `json:"_id"`
	Key        string         `json:"_key"`
	Rev        Revision       `json:"_rev"`
	From       string         `json:"_from,omitempty"`
	To         string         `json:"_to,omitempty"`
	Label      string         `json:"$label,omitempty"`
	Properties map[string]any `json:"properties"`
}

// Clone returns a copy of the document with a shallow-copied property map.
func (d *Document) Clone() *Document {
	c := *d
	c.Properties = CopyProperties(d.Properties)
	return &c
}

// IsEdge reports whether the document references two endpoints.
func (d *Document) IsEdge() bool {
	return d.From != "" || d.To != ""
}

// CopyProperties returns a shallow copy of props. A nil map yields an empty
// map so callers never have to nil-check.
func CopyProperties(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

// Collection is the set of store operations the graph layer consumes.
type Collection interface {
	Name() string
	Kind() Kind

	// Document fetches the current document for id or returns ErrNotFound.
	Document(ctx context.Context, id string) (*Document, error)

	// Insert stores doc, assigning its id, key (if empty) and revision.
	Insert(ctx context.Context, doc *Document) (*Document, error)

	// Replace overwrites the properties of id and assigns a new revision.
	Replace(ctx context.Context, id string, props map[string]any) (*Document, error)

	// Remove deletes the document for id.
	Remove(ctx context.Context, id string) error

	// Count returns the number of documents in the collection.
	Count(ctx context.Context) (int, error)
}

// RevisionProber is implemented by collections that can report the current
// revision of a document without fetching it.
type RevisionProber interface {
	Revision(ctx context.Context, id string) (Revision, error)
}

// Scanner is implemented by collections that can iterate all documents.
type Scanner interface {
	All(ctx context.Context) (Cursor, error)
}

// EdgeIndex is implemented by edge collections that can look up the edges
// incident to a vertex.
type EdgeIndex interface {
	Edges(ctx context.Context, vertexID string, dir Direction) (Cursor, error)
}

// Cursor is a forward-only result set.
type Cursor interface {
	HasNext() bool
	Next() (*Document, error)
}

// DocumentID joins a collection name and key into a document id.
func DocumentID(collection, key string) string {
	return collection + "/" + key
}

// SplitID splits a document id into collection name and key.
func SplitID(id string) (collection, key string, ok bool) {
	collection, key, ok = strings.Cut(id, "/")
	if !ok || collection == "" || key == "" {
		return "", "", false
	}
	return collection, key, true
}

// ValidateInsert checks that doc may be inserted into a collection of kind.
func ValidateInsert(kind Kind, doc *Document) error {
	if doc == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidDocument)
	}
	if strings.Contains(doc.Key, "/") {
		return fmt.Errorf("%w: key %q contains '/'", ErrInvalidDocument, doc.Key)
	}
	switch kind {
	case KindEdge:
		if doc.From == "" || doc.To == "" {
			return fmt.Errorf("%w: edge requires both endpoints", ErrInvalidDocument)
		}
	case KindVertex:
		if doc.IsEdge() {
			return fmt.Errorf("%w: vertex cannot reference endpoints", ErrInvalidDocument)
		}
	}
	return nil
}

// SliceCursor is a Cursor over documents already held in memory.
type SliceCursor struct {
	docs []*Document
	pos  int
}

// NewSliceCursor returns a cursor yielding docs in order.
func NewSliceCursor(docs []*Document) *SliceCursor {
	return &SliceCursor{docs: docs}
}

func (c *SliceCursor) HasNext() bool {
	return c.pos < len(c.docs)
}

func (c *SliceCursor) Next() (*Document, error) {
	if c.pos >= len(c.docs) {
		return nil, fmt.Errorf("cursor exhausted")
	}
	d := c.docs[c.pos]
	c.docs[c.pos] = nil
	c.pos++
	return d, nil
}
