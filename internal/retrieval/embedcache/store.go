// Package embedcache persists chunk embeddings keyed by
// (artifact_id, filepath, content_hash) in a pure-Go SQLite database,
// so re-indexing an unchanged file never re-calls the embedding
// provider.
package embedcache

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	_ "modernc.org/sqlite"
)

// Entry is one cached embedding row.
type Entry struct {
	ArtifactID  string
	Filepath    string
	ContentHash string
	Embedding   []float32
}

// Store wraps a SQLite-backed embeddings table.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the embeddings database at path. Use
// ":memory:" for an ephemeral, test-only store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
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
		CREATE TABLE IF NOT EXISTS embeddings (
			artifact_id  TEXT NOT NULL,
			filepath     TEXT NOT NULL,
			content_hash TEXT NOT NULL,
			embedding    BLOB NOT NULL,
			PRIMARY KEY (artifact_id, filepath, content_hash)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create embeddings table: %w", err)
	}
	_, err = s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_embeddings_filepath ON embeddings(filepath)`)
	return err
}

func (s *Store) Close() error { return s.db.Close() }

func encodeEmbedding(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeEmbedding(buf []byte) []float32 {
	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return out
}

// Put inserts or replaces one entry.
func (s *Store) Put(e Entry) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO embeddings (artifact_id, filepath, content_hash, embedding) VALUES (?, ?, ?, ?)`,
		e.ArtifactID, e.Filepath, e.ContentHash, encodeEmbedding(e.Embedding),
	)
	return err
}

// Get looks up a single entry by its full key; found is false on miss.
func (s *Store) Get(artifactID, filepath, contentHash string) (entry Entry, found bool, err error) {
	row := s.db.QueryRow(
		`SELECT embedding FROM embeddings WHERE artifact_id = ? AND filepath = ? AND content_hash = ?`,
		artifactID, filepath, contentHash,
	)
	var buf []byte
	if err := row.Scan(&buf); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, false, nil
		}
		return Entry{}, false, err
	}
	return Entry{ArtifactID: artifactID, Filepath: filepath, ContentHash: contentHash, Embedding: decodeEmbedding(buf)}, true, nil
}

// PutBatch inserts or replaces every entry in one transaction.
func (s *Store) PutBatch(entries []Entry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO embeddings (artifact_id, filepath, content_hash, embedding) VALUES (?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, e := range entries {
		if _, err := stmt.Exec(e.ArtifactID, e.Filepath, e.ContentHash, encodeEmbedding(e.Embedding)); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Key identifies one cache lookup.
type Key struct {
	ArtifactID  string
	Filepath    string
	ContentHash string
}

// GetBatch looks up each key individually. Missing keys are simply
// absent from the result map.
func (s *Store) GetBatch(keys []Key) (map[Key]Entry, error) {
	out := make(map[Key]Entry, len(keys))
	for _, k := range keys {
		e, found, err := s.Get(k.ArtifactID, k.Filepath, k.ContentHash)
		if err != nil {
			return nil, err
		}
		if found {
			out[k] = e
		}
	}
	return out, nil
}

// GetBatchBulk performs the same lookup as GetBatch but as a single
// WHERE-IN query scoped to one artifact_id, trading per-key precision
// (a content_hash collision across filepaths is resolved by filepath)
// for one round trip.
func (s *Store) GetBatchBulk(artifactID string, filepaths []string) (map[string]Entry, error) {
	if len(filepaths) == 0 {
		return map[string]Entry{}, nil
	}
	placeholders := make([]string, len(filepaths))
	args := make([]any, 0, len(filepaths)+1)
	args = append(args, artifactID)
	for i, fp := range filepaths {
		placeholders[i] = "?"
		args = append(args, fp)
	}
	query := fmt.Sprintf(
		`SELECT filepath, content_hash, embedding FROM embeddings WHERE artifact_id = ? AND filepath IN (%s)`,
		strings.Join(placeholders, ","),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]Entry)
	for rows.Next() {
		var fp, hash string
		var buf []byte
		if err := rows.Scan(&fp, &hash, &buf); err != nil {
			return nil, err
		}
		out[fp] = Entry{ArtifactID: artifactID, Filepath: fp, ContentHash: hash, Embedding: decodeEmbedding(buf)}
	}
	return out, rows.Err()
}

// GetBatchDeduplicated collapses lookups that share a content_hash
// (e.g. an identical chunk appearing in two files after a rename) into
// a single query per unique hash, then fans the result back out to
// every filepath that requested it.
func (s *Store) GetBatchDeduplicated(artifactID string, keys []Key) (map[Key]Entry, error) {
	byHash := make(map[string][]Key)
	for _, k := range keys {
		byHash[k.ContentHash] = append(byHash[k.ContentHash], k)
	}

	hashes := make([]string, 0, len(byHash))
	for h := range byHash {
		hashes = append(hashes, h)
	}
	if len(hashes) == 0 {
		return map[Key]Entry{}, nil
	}
	placeholders := make([]string, len(hashes))
	args := make([]any, 0, len(hashes)+1)
	args = append(args, artifactID)
	for i, h := range hashes {
		placeholders[i] = "?"
		args = append(args, h)
	}
	query := fmt.Sprintf(
		`SELECT content_hash, embedding FROM embeddings WHERE artifact_id = ? AND content_hash IN (%s)`,
		strings.Join(placeholders, ","),
	)
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[Key]Entry)
	for rows.Next() {
		var hash string
		var buf []byte
		if err := rows.Scan(&hash, &buf); err != nil {
			return nil, err
		}
		embedding := decodeEmbedding(buf)
		for _, k := range byHash[hash] {
			out[k] = Entry{ArtifactID: artifactID, Filepath: k.Filepath, ContentHash: hash, Embedding: embedding}
		}
	}
	return out, rows.Err()
}

// DeleteByFilepath removes every row for filepath, leaving rows with
// the same content_hash under a different filepath untouched.
func (s *Store) DeleteByFilepath(filepath string) error {
	_, err := s.db.Exec(`DELETE FROM embeddings WHERE filepath = ?`, filepath)
	return err
}

// PruneStale deletes every row whose artifact_id is not currentArtifactID,
// returning the number of rows removed.
func (s *Store) PruneStale(currentArtifactID string) (int64, error) {
	res, err := s.db.Exec(`DELETE FROM embeddings WHERE artifact_id != ?`, currentArtifactID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Count returns the total number of cached rows.
func (s *Store) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM embeddings`).Scan(&n)
	return n, err
}
