// Package bm25store indexes chunk text in a SQLite FTS5 virtual table
// and ranks matches with SQLite's built-in bm25() weighting function,
// giving the hybrid searcher a lexical-match counterpart to the vector
// store's cosine KNN.
package bm25store

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// Document is one chunk entered into the full-text index.
type Document struct {
	ID       string
	Filepath string
	Content  string
}

// Match is one FTS5 search result. Score is SQLite's bm25() value,
// negative and lower-is-better per SQLite convention; callers that want
// higher-is-better should negate it before combining with other scores.
type Match struct {
	ID       string
	Filepath string
	Content  string
	Score    float64
}

// Store wraps a SQLite database holding a single FTS5 table, chunks.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the full-text index database at path.
// Use ":memory:" for an ephemeral, test-only store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bm25 store: %w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	_, err := s.db.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS chunks USING fts5(
			id UNINDEXED,
			filepath UNINDEXED,
			content
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create fts5 table: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Upsert indexes or re-indexes one document. FTS5 has no native
// upsert, so a stale row is deleted by id before the new one is
// inserted.
func (s *Store) Upsert(d Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM chunks WHERE id = ?`, d.ID); err != nil {
		tx.Rollback()
		return err
	}
	if _, err := tx.Exec(`INSERT INTO chunks (id, filepath, content) VALUES (?, ?, ?)`, d.ID, d.Filepath, d.Content); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// UpsertBatch indexes every document in a single transaction.
func (s *Store) UpsertBatch(docs []Document) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	del, err := tx.Prepare(`DELETE FROM chunks WHERE id = ?`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer del.Close()
	ins, err := tx.Prepare(`INSERT INTO chunks (id, filepath, content) VALUES (?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer ins.Close()

	for _, d := range docs {
		if _, err := del.Exec(d.ID); err != nil {
			tx.Rollback()
			return err
		}
		if _, err := ins.Exec(d.ID, d.Filepath, d.Content); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// sanitizeQuery escapes FTS5 query-syntax characters a user's raw
// search text is likely to contain, falling back to a plain phrase
// match rather than letting SQLite reject the query as malformed.
func sanitizeQuery(q string) string {
	q = strings.TrimSpace(q)
	if q == "" {
		return q
	}
	q = strings.ReplaceAll(q, `"`, `""`)
	return `"` + q + `"`
}

// Search runs an FTS5 MATCH query and returns the topK results ordered
// by bm25 score (best match first).
func (s *Store) Search(query string, topK int) ([]Match, error) {
	q := sanitizeQuery(query)
	if q == "" {
		return nil, nil
	}
	rows, err := s.db.Query(
		`SELECT id, filepath, content, bm25(chunks) AS score FROM chunks WHERE chunks MATCH ? ORDER BY score LIMIT ?`,
		q, topK,
	)
	if err != nil {
		return nil, fmt.Errorf("bm25 search failed: %w", err)
	}
	defer rows.Close()

	var out []Match
	for rows.Next() {
		var m Match
		if err := rows.Scan(&m.ID, &m.Filepath, &m.Content, &m.Score); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteByFilepath removes every indexed chunk for filepath.
func (s *Store) DeleteByFilepath(filepath string) error {
	_, err := s.db.Exec(`DELETE FROM chunks WHERE filepath = ?`, filepath)
	return err
}

// Delete removes a single chunk by id.
func (s *Store) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM chunks WHERE id = ?`, id)
	return err
}

// Count returns the total number of indexed chunks.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM chunks`).Scan(&n)
	return n, err
}
