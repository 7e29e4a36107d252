// Package vectorstore persists chunk embeddings in an embedded
// chromem-go database and runs cosine-similarity KNN search over them.
package vectorstore

import (
	"context"
	"fmt"
	"os"
	"sync"

	chromem "github.com/philippgille/chromem-go"
)

// Match is one KNN result.
type Match struct {
	ID       string
	Score    float32
	Content  string
	Metadata map[string]string
}

// Store wraps a chromem-go collection per workspace/collection name.
type Store struct {
	db          *chromem.DB
	persistPath string
	mu          sync.RWMutex
	collections map[string]*chromem.Collection
}

// identityEmbed is used because Store always receives pre-computed
// vectors from the indexer; chromem's own embedding call path is never
// exercised here.
func identityEmbed(ctx context.Context, text string) ([]float32, error) {
	return nil, fmt.Errorf("vectorstore: embeddings must be pre-computed, got a call for raw text")
}

// Open opens a chromem-go database. If persistPath is non-empty, the
// database is loaded from (and later persisted to) that directory.
func Open(persistPath string) (*Store, error) {
	var db *chromem.DB
	if persistPath != "" {
		if err := os.MkdirAll(persistPath, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create vector store directory: %w", err)
		}
		dbPath := persistPath + "/vectors.gob"
		if _, err := os.Stat(dbPath); err == nil {
			loaded, err := chromem.NewPersistentDB(dbPath, false)
			if err != nil {
				return nil, fmt.Errorf("failed to load vector store: %w", err)
			}
			db = loaded
		} else {
			db = chromem.NewDB()
		}
	} else {
		db = chromem.NewDB()
	}

	return &Store{db: db, persistPath: persistPath, collections: make(map[string]*chromem.Collection)}, nil
}

func (s *Store) collection(name string) (*chromem.Collection, error) {
	s.mu.RLock()
	if c, ok := s.collections[name]; ok {
		s.mu.RUnlock()
		return c, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.collections[name]; ok {
		return c, nil
	}
	c, err := s.db.GetOrCreateCollection(name, nil, identityEmbed)
	if err != nil {
		return nil, err
	}
	s.collections[name] = c
	return c, nil
}

// Upsert stores or replaces one chunk's vector and content.
func (s *Store) Upsert(ctx context.Context, collection, id string, embedding []float32, content string, metadata map[string]string) error {
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	doc := chromem.Document{ID: id, Content: content, Metadata: metadata, Embedding: embedding}
	if err := c.AddDocuments(ctx, []chromem.Document{doc}, 1); err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return s.persist()
}

// Search returns the topK nearest neighbors to query in collection.
func (s *Store) Search(ctx context.Context, collection string, query []float32, topK int) ([]Match, error) {
	c, err := s.collection(collection)
	if err != nil {
		return nil, err
	}
	if topK > c.Count() {
		topK = c.Count()
	}
	if topK == 0 {
		return nil, nil
	}
	results, err := c.QueryEmbedding(ctx, query, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	out := make([]Match, 0, len(results))
	for _, r := range results {
		out = append(out, Match{ID: r.ID, Score: r.Similarity, Content: r.Content, Metadata: r.Metadata})
	}
	return out, nil
}

// Delete removes one document by ID.
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, nil, nil, id); err != nil {
		return fmt.Errorf("failed to delete vector: %w", err)
	}
	return s.persist()
}

// DeleteByFilepath removes every document whose metadata filepath
// field matches path.
func (s *Store) DeleteByFilepath(ctx context.Context, collection, path string) error {
	c, err := s.collection(collection)
	if err != nil {
		return err
	}
	if err := c.Delete(ctx, map[string]string{"filepath": path}, nil); err != nil {
		return fmt.Errorf("failed to delete by filepath: %w", err)
	}
	return s.persist()
}

func (s *Store) persist() error {
	if s.persistPath == "" {
		return nil
	}
	//nolint:staticcheck // Export is the documented file-persistence API.
	if err := s.db.Export(s.persistPath+"/vectors.gob", false, ""); err != nil {
		return fmt.Errorf("failed to persist vector store: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.persist() }
