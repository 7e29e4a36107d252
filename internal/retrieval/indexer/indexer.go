package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kadirpekel/cocode/internal/retrieval"
	"github.com/kadirpekel/cocode/internal/retrieval/bm25store"
	"github.com/kadirpekel/cocode/internal/retrieval/chunker"
	"github.com/kadirpekel/cocode/internal/retrieval/embedcache"
	"github.com/kadirpekel/cocode/internal/retrieval/embedding"
	"github.com/kadirpekel/cocode/internal/retrieval/vectorstore"
)

// Catalog tracks the content hash an indexed file was last processed
// at, so an unchanged file is skipped on re-index.
type Catalog interface {
	Get(filepath string) (contentHash string, ok bool)
	Set(filepath, contentHash string) error
	Delete(filepath string) error
}

// MemoryCatalog is an in-process Catalog, the default for a
// single-session index run.
type MemoryCatalog struct {
	hashes map[string]string
}

func NewMemoryCatalog() *MemoryCatalog { return &MemoryCatalog{hashes: make(map[string]string)} }

func (c *MemoryCatalog) Get(path string) (string, bool) { h, ok := c.hashes[path]; return h, ok }
func (c *MemoryCatalog) Set(path, hash string) error    { c.hashes[path] = hash; return nil }
func (c *MemoryCatalog) Delete(path string) error       { delete(c.hashes, path); return nil }

// Config controls one Indexer's behavior.
type Config struct {
	Workspace string
	Chunker   chunker.Config
	MaxChunks int
}

// Indexer runs the per-file chunk/embed/store pipeline.
type Indexer struct {
	cfg        Config
	catalog    Catalog
	cache      *embedcache.Store
	queue      *EmbeddingQueue
	provider   embedding.Provider
	vectors    *vectorstore.Store
	fulltext   *bm25store.Store
	collection string

	chunkCount int
}

func New(cfg Config, catalog Catalog, cache *embedcache.Store, provider embedding.Provider, queue *EmbeddingQueue, vectors *vectorstore.Store, fulltext *bm25store.Store) *Indexer {
	return &Indexer{
		cfg:        cfg,
		catalog:    catalog,
		cache:      cache,
		provider:   provider,
		queue:      queue,
		vectors:    vectors,
		fulltext:   fulltext,
		collection: cfg.Workspace,
	}
}

func hashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// IndexFile runs the full pipeline for one file: skip if unchanged,
// otherwise chunk, resolve embeddings (cache first, provider queue on
// miss), write to both stores, and update the catalog.
func (ix *Indexer) IndexFile(ctx context.Context, relPath string) (retrieval.IndexProgress, error) {
	full := filepath.Join(ix.cfg.Workspace, relPath)
	raw, err := os.ReadFile(full)
	if err != nil {
		return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
	}
	content := string(raw)
	hash := hashContent(content)

	if existing, ok := ix.catalog.Get(relPath); ok && existing == hash {
		return retrieval.IndexProgress{Status: retrieval.IndexDone, Path: relPath}, nil
	}

	chunks, err := chunker.ChunkFile(ix.cfg.Chunker, ix.cfg.Workspace, relPath)
	if err != nil {
		return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
	}
	for i := range chunks {
		chunks[i].ID = fmt.Sprintf("%s:%d-%d", relPath, chunks[i].StartLine, chunks[i].EndLine)
		chunks[i].ModifiedTime = 0
		chunks[i].ContentHash = hashContent(chunks[i].Content)
	}
	if ix.cfg.MaxChunks > 0 && ix.chunkCount+len(chunks) > ix.cfg.MaxChunks {
		room := ix.cfg.MaxChunks - ix.chunkCount
		if room < 0 {
			room = 0
		}
		chunks = chunks[:room]
	}

	artifactID := embedding.ArtifactID(ix.provider)
	keys := make([]embedcache.Key, len(chunks))
	for i, c := range chunks {
		keys[i] = embedcache.Key{ArtifactID: artifactID, Filepath: relPath, ContentHash: hashContent(c.Content)}
	}
	cached, err := ix.cache.GetBatchDeduplicated(artifactID, keys)
	if err != nil {
		return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
	}

	var missTexts []string
	var missIdx []int
	for i, k := range keys {
		if _, ok := cached[k]; !ok {
			missTexts = append(missTexts, chunks[i].Content)
			missIdx = append(missIdx, i)
		}
	}

	if len(missTexts) > 0 {
		embeddings, err := ix.queue.EmbedAll(ctx, missTexts)
		if err != nil {
			return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
		}
		var toCache []embedcache.Entry
		for j, idx := range missIdx {
			chunks[idx].Embedding = embeddings[j]
			toCache = append(toCache, embedcache.Entry{
				ArtifactID:  artifactID,
				Filepath:    relPath,
				ContentHash: keys[idx].ContentHash,
				Embedding:   embeddings[j],
			})
		}
		if err := ix.cache.PutBatch(toCache); err != nil {
			return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
		}
	}
	for i, k := range keys {
		if e, ok := cached[k]; ok {
			chunks[i].Embedding = e.Embedding
		}
	}

	var fulltextDocs []bm25store.Document
	for _, c := range chunks {
		if err := ix.vectors.Upsert(ctx, ix.collection, c.ID, c.Embedding, c.Content, map[string]string{
			"filepath": c.Filepath,
			"language": c.Language,
		}); err != nil {
			return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
		}
		fulltextDocs = append(fulltextDocs, bm25store.Document{ID: c.ID, Filepath: c.Filepath, Content: c.Content})
	}
	if err := ix.fulltext.UpsertBatch(fulltextDocs); err != nil {
		return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
	}

	ix.chunkCount += len(chunks)
	if err := ix.catalog.Set(relPath, hash); err != nil {
		return retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: relPath, Err: err}, err
	}
	return retrieval.IndexProgress{Status: retrieval.IndexDone, Path: relPath, Scanned: len(chunks), Total: len(chunks)}, nil
}

// RemoveFile purges a deleted file's chunks and cache entries.
func (ix *Indexer) RemoveFile(ctx context.Context, relPath string) error {
	if err := ix.vectors.DeleteByFilepath(ctx, ix.collection, relPath); err != nil {
		return fmt.Errorf("failed to remove vectors for %s: %w", relPath, err)
	}
	if err := ix.fulltext.DeleteByFilepath(relPath); err != nil {
		return fmt.Errorf("failed to remove fulltext entries for %s: %w", relPath, err)
	}
	if err := ix.cache.DeleteByFilepath(relPath); err != nil {
		return fmt.Errorf("failed to remove cache entries for %s: %w", relPath, err)
	}
	return ix.catalog.Delete(relPath)
}

// IndexAll indexes each of relPaths in order, streaming one progress
// event per path over the returned channel. It does not walk the
// workspace itself. The channel is closed when every path is done or
// ctx is cancelled.
func (ix *Indexer) IndexAll(ctx context.Context, relPaths []string) <-chan retrieval.IndexProgress {
	progress := make(chan retrieval.IndexProgress, len(relPaths))
	go func() {
		defer close(progress)
		for i, p := range relPaths {
			select {
			case <-ctx.Done():
				progress <- retrieval.IndexProgress{Status: retrieval.IndexFailed, Path: p, Err: ctx.Err()}
				return
			default:
			}
			result, err := ix.IndexFile(ctx, p)
			result.Scanned = i + 1
			result.Total = len(relPaths)
			if err != nil {
				result.Status = retrieval.IndexFailed
				result.Err = err
			}
			progress <- result
		}
	}()
	return progress
}
