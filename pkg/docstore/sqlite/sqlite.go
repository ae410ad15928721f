// Package sqlite stores graph documents in a SQLite database. All
// collections of a database share one table keyed by (collection, id).
// Several DB handles may be opened on the same file; writes through one are
// visible to the others on their next read.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ritzau/docgraph/pkg/docstore"
	"github.com/ritzau/docgraph/pkg/logging"

	_ "modernc.org/sqlite"
)

// DB is an open document database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	d := &DB{db: db, path: path}
	if err := d.init(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logging.Debug("opened document database", "path", path)
	return d, nil
}

func (d *DB) init(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := d.db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("pragma failed: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id         TEXT NOT NULL,
			key        TEXT NOT NULL,
			rev        TEXT NOT NULL,
			from_id    TEXT NOT NULL DEFAULT '',
			to_id      TEXT NOT NULL DEFAULT '',
			label      TEXT NOT NULL DEFAULT '',
			properties TEXT NOT NULL,
			PRIMARY KEY (collection, id)
		);
		CREATE INDEX IF NOT EXISTS documents_from ON documents (collection, from_id);
		CREATE INDEX IF NOT EXISTS documents_to ON documents (collection, to_id);
	`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	return nil
}

// Path returns the file the database was opened from.
func (d *DB) Path() string {
	return d.path
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Collection returns a handle to the named collection. Collections need no
// creation step; an unused name is simply empty.
func (d *DB) Collection(name string, kind docstore.Kind) *Collection {
	return &Collection{db: d.db, name: name, kind: kind}
}

const selectColumns = "id, key, rev, from_id, to_id, label, properties"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*docstore.Document, error) {
	var (
		doc   docstore.Document
		rev   string
		props string
	)
	if err := r.Scan(&doc.ID, &doc.Key, &rev, &doc.From, &doc.To, &doc.Label, &props); err != nil {
		return nil, err
	}
	doc.Rev = docstore.Revision(rev)
	if err := json.Unmarshal([]byte(props), &doc.Properties); err != nil {
		return nil, fmt.Errorf("decoding properties of %s: %w", doc.ID, err)
	}
	if doc.Properties == nil {
		doc.Properties = make(map[string]any)
	}
	return &doc, nil
}

func encodeProperties(props map[string]any) (string, error) {
	if props == nil {
		props = map[string]any{}
	}
	b, err := json.Marshal(props)
	if err != nil {
		return "", fmt.Errorf("encoding properties: %w", err)
	}
	return string(b), nil
}
