// Package snapshot persists the last-known journal entry list in SQLite so
// history and statistics stay readable while the analysis service is down.
//
// The snapshot is a fallback, not a source of truth: it is replaced wholesale
// after every successful remote refresh, and a remote refresh can resurrect
// entries deleted locally — that asymmetry is inherent to the service
// contract and deliberately not masked here.
package snapshot

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS entries (
	id              TEXT PRIMARY KEY,
	author_id       TEXT NOT NULL DEFAULT '',
	content         TEXT NOT NULL,
	emotion         TEXT NOT NULL DEFAULT '',
	metadata        TEXT NOT NULL DEFAULT '',
	reflection      TEXT NOT NULL DEFAULT '',
	reflection_meta TEXT NOT NULL DEFAULT '',
	created_at      TEXT NOT NULL DEFAULT '',
	is_voice        INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_entries_created_at ON entries(created_at);
`

// EntryRow is one persisted entry. Metadata and ReflectionMeta hold canonical
// JSON as produced at ingestion; empty means unclassified.
type EntryRow struct {
	ID             string
	AuthorID       string
	Content        string
	Emotion        string
	Metadata       []byte
	Reflection     string
	ReflectionMeta []byte
	CreatedAt      time.Time
	IsVoice        bool
}

// Store wraps a sql.DB with snapshot operations.
type Store struct {
	conn *sql.DB
}

// Open opens (or creates) the snapshot database and applies the schema.
func Open(dsn string) (*Store, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("snapshot: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("snapshot: apply schema: %w", err)
	}
	return &Store{conn: conn}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}

// Replace swaps the whole snapshot for rows inside one transaction.
func (s *Store) Replace(rows []EntryRow) error {
	tx, err := s.conn.Begin()
	if err != nil {
		return fmt.Errorf("snapshot: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM entries`); err != nil {
		return fmt.Errorf("snapshot: clear: %w", err)
	}
	stmt, err := tx.Prepare(`
		INSERT INTO entries (id, author_id, content, emotion, metadata, reflection, reflection_meta, created_at, is_voice)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("snapshot: prepare insert: %w", err)
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.ID, r.AuthorID, r.Content, r.Emotion, string(r.Metadata),
			r.Reflection, string(r.ReflectionMeta), formatTime(r.CreatedAt), boolInt(r.IsVoice)); err != nil {
			return fmt.Errorf("snapshot: insert entry: %w", err)
		}
	}
	return tx.Commit()
}

// Upsert inserts or replaces one entry.
func (s *Store) Upsert(r EntryRow) error {
	_, err := s.conn.Exec(`
		INSERT INTO entries (id, author_id, content, emotion, metadata, reflection, reflection_meta, created_at, is_voice)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			author_id       = excluded.author_id,
			content         = excluded.content,
			emotion         = excluded.emotion,
			metadata        = excluded.metadata,
			reflection      = excluded.reflection,
			reflection_meta = excluded.reflection_meta,
			created_at      = excluded.created_at,
			is_voice        = excluded.is_voice
	`, r.ID, r.AuthorID, r.Content, r.Emotion, string(r.Metadata),
		r.Reflection, string(r.ReflectionMeta), formatTime(r.CreatedAt), boolInt(r.IsVoice))
	if err != nil {
		return fmt.Errorf("snapshot: upsert entry: %w", err)
	}
	return nil
}

// Delete removes one entry by id.
func (s *Store) Delete(id string) error {
	if _, err := s.conn.Exec(`DELETE FROM entries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("snapshot: delete entry: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. limit <= 0 means all.
func (s *Store) List(limit int) ([]EntryRow, error) {
	q := `SELECT id, author_id, content, emotion, metadata, reflection, reflection_meta, created_at, is_voice
		FROM entries ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.conn.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("snapshot: list: %w", err)
	}
	defer rows.Close()

	var out []EntryRow
	for rows.Next() {
		var r EntryRow
		var meta, refMeta, createdAt string
		var voice int
		if err := rows.Scan(&r.ID, &r.AuthorID, &r.Content, &r.Emotion, &meta,
			&r.Reflection, &refMeta, &createdAt, &voice); err != nil {
			return nil, err
		}
		if meta != "" {
			r.Metadata = []byte(meta)
		}
		if refMeta != "" {
			r.ReflectionMeta = []byte(refMeta)
		}
		r.CreatedAt = parseTime(createdAt)
		r.IsVoice = voice != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime returns the zero time for anything unparseable; downstream
// date logic drops zero timestamps instead of failing.
func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
