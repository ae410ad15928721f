package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ritzau/docgraph/pkg/docstore"
)

// Collection is one named collection inside a DB.
type Collection struct {
	db   *sql.DB
	name string
	kind docstore.Kind
}

func (c *Collection) Name() string       { return c.name }
func (c *Collection) Kind() docstore.Kind { return c.kind }

func (c *Collection) notFound(id string) error {
	return fmt.Errorf("%s %q: %w", c.name, id, docstore.ErrNotFound)
}

func (c *Collection) Document(ctx context.Context, id string) (*docstore.Document, error) {
	row := c.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM documents WHERE collection = ? AND id = ?", c.name, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, c.notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", id, err)
	}
	return doc, nil
}

// Revision reads only the rev column through the primary key.
func (c *Collection) Revision(ctx context.Context, id string) (docstore.Revision, error) {
	var rev string
	err := c.db.QueryRowContext(ctx,
		"SELECT rev FROM documents WHERE collection = ? AND id = ?", c.name, id).Scan(&rev)
	if errors.Is(err, sql.ErrNoRows) {
		return "", c.notFound(id)
	}
	if err != nil {
		return "", fmt.Errorf("probing revision of %s: %w", id, err)
	}
	return docstore.Revision(rev), nil
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
	stored.Rev = docstore.Revision(uuid.NewString())

	props, err := encodeProperties(stored.Properties)
	if err != nil {
		return nil, err
	}

	res, err := c.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (collection, id, key, rev, from_id, to_id, label, properties)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		c.name, stored.ID, stored.Key, string(stored.Rev), stored.From, stored.To, stored.Label, props)
	if err != nil {
		return nil, fmt.Errorf("inserting %s: %w", stored.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("inserting %s: %w", stored.ID, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("%s %q: %w", c.name, stored.ID, docstore.ErrConflict)
	}
	return c.Document(ctx, stored.ID)
}

func (c *Collection) Replace(ctx context.Context, id string, props map[string]any) (*docstore.Document, error) {
	encoded, err := encodeProperties(props)
	if err != nil {
		return nil, err
	}
	rev := uuid.NewString()

	res, err := c.db.ExecContext(ctx,
		"UPDATE documents SET rev = ?, properties = ? WHERE collection = ? AND id = ?",
		rev, encoded, c.name, id)
	if err != nil {
		return nil, fmt.Errorf("replacing %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("replacing %s: %w", id, err)
	} else if n == 0 {
		return nil, c.notFound(id)
	}

	// Read back so the caller gets exactly what is stored, including the
	// JSON-normalised property values.
	return c.Document(ctx, id)
}

func (c *Collection) Remove(ctx context.Context, id string) error {
	res, err := c.db.ExecContext(ctx,
		"DELETE FROM documents WHERE collection = ? AND id = ?", c.name, id)
	if err != nil {
		return fmt.Errorf("removing %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing %s: %w", id, err)
	}
	if n == 0 {
		return c.notFound(id)
	}
	return nil
}

func (c *Collection) Count(ctx context.Context) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE collection = ?", c.name).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting %s: %w", c.name, err)
	}
	return n, nil
}

func (c *Collection) All(ctx context.Context) (docstore.Cursor, error) {
	rows, err := c.db.QueryContext(ctx,
		"SELECT "+selectColumns+" FROM documents WHERE collection = ? ORDER BY id", c.name)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", c.name, err)
	}
	return &rowsCursor{rows: rows}, nil
}

func (c *Collection) Edges(ctx context.Context, vertexID string, dir docstore.Direction) (docstore.Cursor, error) {
	if c.kind != docstore.KindEdge {
		return nil, fmt.Errorf("%s is not an edge collection", c.name)
	}

	var (
		rows *sql.Rows
		err  error
	)
	base := "SELECT " + selectColumns + " FROM documents WHERE collection = ? AND "
	switch dir {
	case docstore.DirectionIn:
		rows, err = c.db.QueryContext(ctx, base+"to_id = ? ORDER BY id", c.name, vertexID)
	case docstore.DirectionOut:
		rows, err = c.db.QueryContext(ctx, base+"from_id = ? ORDER BY id", c.name, vertexID)
	default:
		rows, err = c.db.QueryContext(ctx, base+"(from_id = ? OR to_id = ?) ORDER BY id", c.name, vertexID, vertexID)
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s edges of %s: %w", dir, vertexID, err)
	}
	return &rowsCursor{rows: rows}, nil
}

// rowsCursor adapts sql.Rows to docstore.Cursor by reading one row ahead.
type rowsCursor struct {
	rows    *sql.Rows
	pending *docstore.Document
	err     error
	done    bool
}

func (c *rowsCursor) advance() {
	if c.done || c.pending != nil || c.err != nil {
		return
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		c.done = true
		c.rows.Close()
		return
	}
	doc, err := scanDocument(c.rows)
	if err != nil {
		c.err = err
		c.done = true
		c.rows.Close()
		return
	}
	c.pending = doc
}

func (c *rowsCursor) HasNext() bool {
	c.advance()
	return c.pending != nil || c.err != nil
}

func (c *rowsCursor) Next() (*docstore.Document, error) {
	c.advance()
	if c.pending != nil {
		doc := c.pending
		c.pending = nil
		return doc, nil
	}
	if c.err != nil {
		err := c.err
		c.err = nil
		return nil, err
	}
	return nil, fmt.Errorf("cursor exhausted")
}
