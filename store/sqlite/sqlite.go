/*
Package sqlite provides a SQLite-backed source for the policy document and
the employee roster.

PURPOSE:
  Lets an administrator import the policy text and the roster export once
  (loanbot import) and serve from the database afterwards. The store keeps
  the raw material only. Column resolution and rule extraction still run at
  load time, so a stored roster goes through exactly the same normalizer as
  a spreadsheet.

INTERFACES IMPLEMENTED:
  knowledge.Sources: PolicyText, RosterTable

KEY TABLES:
  documents:      Named text documents (versioned on overwrite)
  roster_headers: Header row of the last imported roster, by position
  roster_cells:   Data cells of the last imported roster (row, position)
  imports:        Audit of every import

REPLACEMENT SEMANTICS:
  ImportTable replaces the whole roster inside one transaction. A reader
  never sees half of an old roster and half of a new one.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. ":memory:" databases are limited to
  one connection, since every connection would otherwise get its own empty
  database.

USAGE:
  store, err := sqlite.New("./loanbot.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  snap := knowledge.Load(ctx, store, log)

SEE ALSO:
  - knowledge/sources.go: the Sources interface
  - cmd/loanbot/import.go: populates the store
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/loan-assistant/generic"
)

// PolicyDocument is the name under which the loan policy text is stored.
const PolicyDocument = "loan_policy"

// ErrNotImported is returned when a source was never imported.
var ErrNotImported = errors.New("nothing imported")

// Store persists documents and the roster in SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if strings.HasPrefix(dbPath, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		content TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS roster_headers (
		position INTEGER PRIMARY KEY,
		header TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS roster_cells (
		row_index INTEGER NOT NULL,
		position INTEGER NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (row_index, position)
	);

	CREATE TABLE IF NOT EXISTS imports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		kind TEXT NOT NULL,
		source TEXT,
		items INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_imports_kind
		ON imports(kind, created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// DOCUMENT STORE
// =============================================================================

// Document is a stored text document.
type Document struct {
	Name      string
	Content   string
	Version   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaveDocument stores a document, bumping its version when it exists.
func (s *Store) SaveDocument(ctx context.Context, name, content, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO documents (name, content, version, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			content = excluded.content,
			version = documents.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, query, name, content, now, now); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	if err := recordImport(ctx, tx, "document:"+name, source, len(content), now); err != nil {
		return err
	}
	return tx.Commit()
}

// GetDocument retrieves a document by name. Returns nil when absent.
func (s *Store) GetDocument(ctx context.Context, name string) (*Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var d Document
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx,
		"SELECT name, content, version, created_at, updated_at FROM documents WHERE name = ?",
		name,
	).Scan(&d.Name, &d.Content, &d.Version, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	d.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	d.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &d, nil
}

// =============================================================================
// ROSTER STORE
// =============================================================================

// ImportTable replaces the stored roster with t.
func (s *Store) ImportTable(ctx context.Context, t generic.Table, source string) error {
	if t.IsEmpty() {
		return errors.New("roster table has no header row")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"roster_cells", "roster_headers"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	headerStmt, err := tx.PrepareContext(ctx, "INSERT INTO roster_headers (position, header) VALUES (?, ?)")
	if err != nil {
		return err
	}
	defer headerStmt.Close()
	for pos, h := range t.Columns {
		if _, err := headerStmt.ExecContext(ctx, pos, h); err != nil {
			return fmt.Errorf("failed to insert header %q: %w", h, err)
		}
	}

	cellStmt, err := tx.PrepareContext(ctx, "INSERT INTO roster_cells (row_index, position, value) VALUES (?, ?, ?)")
	if err != nil {
		return err
	}
	defer cellStmt.Close()
	for i, row := range t.Rows {
		for pos, v := range row {
			if v == "" {
				continue
			}
			if _, err := cellStmt.ExecContext(ctx, i, pos, v); err != nil {
				return fmt.Errorf("failed to insert row %d: %w", i, err)
			}
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := recordImport(ctx, tx, "roster", source, len(t.Rows), now); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadTable returns the stored roster. Rows keep their original order and
// width; cells that were empty come back as "".
func (s *Store) LoadTable(ctx context.Context) (generic.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var t generic.Table
	headers, err := s.db.QueryContext(ctx, "SELECT header FROM roster_headers ORDER BY position")
	if err != nil {
		return t, fmt.Errorf("failed to query headers: %w", err)
	}
	defer headers.Close()
	for headers.Next() {
		var h string
		if err := headers.Scan(&h); err != nil {
			return t, err
		}
		t.Columns = append(t.Columns, h)
	}
	if err := headers.Err(); err != nil {
		return t, err
	}
	if t.IsEmpty() {
		return t, fmt.Errorf("roster: %w", ErrNotImported)
	}

	var rowCount int
	err = s.db.QueryRowContext(ctx,
		"SELECT items FROM imports WHERE kind = 'roster' ORDER BY id DESC LIMIT 1",
	).Scan(&rowCount)
	if err != nil {
		return t, fmt.Errorf("failed to read roster size: %w", err)
	}
	t.Rows = make([][]string, rowCount)
	for i := range t.Rows {
		t.Rows[i] = make([]string, len(t.Columns))
	}

	cells, err := s.db.QueryContext(ctx, "SELECT row_index, position, value FROM roster_cells")
	if err != nil {
		return t, fmt.Errorf("failed to query cells: %w", err)
	}
	defer cells.Close()
	for cells.Next() {
		var row, pos int
		var v string
		if err := cells.Scan(&row, &pos, &v); err != nil {
			return t, err
		}
		if row >= len(t.Rows) {
			continue
		}
		for len(t.Rows[row]) <= pos {
			t.Rows[row] = append(t.Rows[row], "")
		}
		t.Rows[row][pos] = v
	}
	return t, cells.Err()
}

// =============================================================================
// SOURCES (knowledge.Sources interface)
// =============================================================================

// PolicyText returns the stored loan policy.
func (s *Store) PolicyText(ctx context.Context) (string, error) {
	doc, err := s.GetDocument(ctx, PolicyDocument)
	if err != nil {
		return "", fmt.Errorf("%w: %v", generic.ErrDocumentUnavailable, err)
	}
	if doc == nil {
		return "", fmt.Errorf("%w: %v", generic.ErrDocumentUnavailable, ErrNotImported)
	}
	return doc.Content, nil
}

// RosterTable returns the stored roster.
func (s *Store) RosterTable(ctx context.Context) (generic.Table, error) {
	return s.LoadTable(ctx)
}

// =============================================================================
// IMPORT AUDIT
// =============================================================================

// ImportRecord is one entry of the import log.
type ImportRecord struct {
	ID        int64
	Kind      string
	Source    string
	Items     int
	CreatedAt time.Time
}

func recordImport(ctx context.Context, tx *sql.Tx, kind, source string, items int, at string) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO imports (kind, source, items, created_at) VALUES (?, ?, ?, ?)",
		kind, nullString(source), items, at,
	)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// ListImports returns the import log, newest first.
func (s *Store) ListImports(ctx context.Context) ([]ImportRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, kind, source, items, created_at FROM imports ORDER BY id DESC",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportRecord
	for rows.Next() {
		var r ImportRecord
		var source sql.NullString
		var createdAt string
		if err := rows.Scan(&r.ID, &r.Kind, &source, &r.Items, &createdAt); err != nil {
			return nil, err
		}
		r.Source = source.String
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"roster_cells", "roster_headers", "documents", "imports"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
