// Package drafts keeps local autosave snapshots of open documents so an edit
// survives a crash or a declined push. Drafts are recovery material only;
// nothing here is ever pushed automatically.
package drafts

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Draft is one saved snapshot of an open document.
type Draft struct {
	ID       string
	PageID   string
	Title    string
	SpaceKey string
	Version  int
	Content  string
	SavedAt  int64
}

// Store persists drafts in SQLite.
type Store struct {
	db *sql.DB
}

// Open creates or opens the drafts database at dbPath.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create drafts directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
CREATE TABLE IF NOT EXISTS drafts (
  id TEXT PRIMARY KEY,
  page_id TEXT NOT NULL,
  title TEXT NOT NULL,
  space_key TEXT NOT NULL,
  version INTEGER NOT NULL,
  content TEXT NOT NULL,
  saved_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drafts_page ON drafts(page_id, saved_at);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores a new snapshot and returns it.
func (s *Store) Save(pageID, title, spaceKey string, version int, content string) (*Draft, error) {
	d := &Draft{
		ID:       uuid.New().String(),
		PageID:   pageID,
		Title:    title,
		SpaceKey: spaceKey,
		Version:  version,
		Content:  content,
		SavedAt:  time.Now().Unix(),
	}
	_, err := s.db.Exec(`
		INSERT INTO drafts (id, page_id, title, space_key, version, content, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.PageID, d.Title, d.SpaceKey, d.Version, d.Content, d.SavedAt)
	if err != nil {
		return nil, fmt.Errorf("insert draft: %w", err)
	}
	return d, nil
}

// Latest returns the most recent draft for a page, or nil when none exists.
func (s *Store) Latest(pageID string) (*Draft, error) {
	var d Draft
	err := s.db.QueryRow(`
		SELECT id, page_id, title, space_key, version, content, saved_at
		FROM drafts WHERE page_id = ?
		ORDER BY saved_at DESC, rowid DESC LIMIT 1
	`, pageID).Scan(&d.ID, &d.PageID, &d.Title, &d.SpaceKey, &d.Version, &d.Content, &d.SavedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest draft: %w", err)
	}
	return &d, nil
}

// List returns recent drafts for a page, newest first.
func (s *Store) List(pageID string, limit int) ([]*Draft, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, page_id, title, space_key, version, content, saved_at
		FROM drafts WHERE page_id = ?
		ORDER BY saved_at DESC, rowid DESC LIMIT ?
	`, pageID, limit)
	if err != nil {
		return nil, fmt.Errorf("list drafts: %w", err)
	}
	defer rows.Close()

	var drafts []*Draft
	for rows.Next() {
		var d Draft
		if err := rows.Scan(&d.ID, &d.PageID, &d.Title, &d.SpaceKey, &d.Version, &d.Content, &d.SavedAt); err != nil {
			return nil, fmt.Errorf("scan draft: %w", err)
		}
		drafts = append(drafts, &d)
	}
	return drafts, rows.Err()
}

// Purge deletes every draft for a page, typically after a successful push.
func (s *Store) Purge(pageID string) error {
	_, err := s.db.Exec(`DELETE FROM drafts WHERE page_id = ?`, pageID)
	return err
}
