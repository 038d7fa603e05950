// Package stub is a small Confluence-compatible content store for local
// development and integration tests. It speaks the same wire contract as the
// real store, including the optimistic version check on writes.
package stub

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/moamenhredeen/el-confluence/internal/confluence"
)

// ErrNotFound reports a page ID the store has never seen.
var ErrNotFound = errors.New("stub: page not found")

// ConflictError reports a write whose declared version lost the optimistic
// concurrency check.
type ConflictError struct {
	Expected int
	Declared int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("version mismatch: expected %d, got %d", e.Expected, e.Declared)
}

// PageStore persists pages in SQLite.
type PageStore struct {
	db *sql.DB
}

// OpenStore creates or opens the page database at dbPath.
func OpenStore(dbPath string) (*PageStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite handles one writer at a time

	schema := `
CREATE TABLE IF NOT EXISTS pages (
  id TEXT PRIMARY KEY,
  space_key TEXT NOT NULL,
  title TEXT NOT NULL,
  body TEXT NOT NULL,
  version INTEGER NOT NULL,
  updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_pages_space ON pages(space_key);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &PageStore{db: db}, nil
}

// Close releases the database handle.
func (s *PageStore) Close() error {
	return s.db.Close()
}

// Get returns the page by ID, or ErrNotFound.
func (s *PageStore) Get(id string) (*confluence.Page, error) {
	var page confluence.Page
	err := s.db.QueryRow(`
		SELECT id, space_key, title, body, version FROM pages WHERE id = ?
	`, id).Scan(&page.ID, &page.Space.Key, &page.Title, &page.Body.Storage.Value, &page.Version.Number)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	page.Type = "page"
	page.Body.Storage.Representation = "storage"
	return &page, nil
}

// Put inserts or replaces a page without a version check. Used for seeding.
func (s *PageStore) Put(page *confluence.Page, updatedAt int64) error {
	_, err := s.db.Exec(`
		INSERT INTO pages (id, space_key, title, body, version, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			space_key = excluded.space_key,
			title = excluded.title,
			body = excluded.body,
			version = excluded.version,
			updated_at = excluded.updated_at
	`, page.ID, page.Space.Key, page.Title, page.Body.Storage.Value, page.Version.Number, updatedAt)
	if err != nil {
		return fmt.Errorf("put page: %w", err)
	}
	return nil
}

// Update applies a full page representation. The declared version must be
// exactly one ahead of the stored version; otherwise a ConflictError is
// returned and nothing changes.
func (s *PageStore) Update(upd *confluence.PageUpdate, updatedAt int64) (*confluence.Page, error) {
	current, err := s.Get(upd.ID)
	if err != nil {
		return nil, err
	}

	if upd.Version.Number != current.Version.Number+1 {
		return nil, &ConflictError{Expected: current.Version.Number + 1, Declared: upd.Version.Number}
	}

	spaceKey := upd.Space.Key
	if spaceKey == "" {
		spaceKey = current.Space.Key
	}

	_, err = s.db.Exec(`
		UPDATE pages SET space_key = ?, title = ?, body = ?, version = ?, updated_at = ?
		WHERE id = ?
	`, spaceKey, upd.Title, upd.Body.Storage.Value, upd.Version.Number, updatedAt, upd.ID)
	if err != nil {
		return nil, fmt.Errorf("update page: %w", err)
	}

	return s.Get(upd.ID)
}

// Count returns the number of stored pages.
func (s *PageStore) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM pages`).Scan(&n)
	return n, err
}
