// Package retrieval defines the data model shared by the chunker,
// embedding cache, vector/BM25 stores, indexer, hybrid searcher,
// reranker, and repo-map subpackages.
package retrieval

// CodeChunk is one indexed unit of source: a token-bounded slice of a
// file plus the metadata the searcher and reranker need without
// re-reading the file from disk.
type CodeChunk struct {
	ID           string
	SourceID     string
	Filepath     string
	Language     string
	Content      string
	StartLine    int
	EndLine      int
	Embedding    []float32
	ModifiedTime int64
	Workspace    string
	ContentHash  string
	IndexedAt    int64
	ParentSymbol string
	IsOverview   bool
}

// ScoreType records which search path produced a SearchResult's score,
// so downstream consumers (rerankers, UI) can explain a ranking.
type ScoreType string

const (
	ScoreBM25   ScoreType = "bm25"
	ScoreVector ScoreType = "vector"
	ScoreHybrid ScoreType = "hybrid"
)

// SearchResult pairs a chunk with its score and staleness status.
type SearchResult struct {
	Chunk     CodeChunk
	Score     float32
	ScoreType ScoreType
	IsStale   *bool
}

// IndexStatus tags one IndexProgress event.
type IndexStatus string

const (
	IndexScanning IndexStatus = "scanning"
	IndexRunning  IndexStatus = "running"
	IndexDone     IndexStatus = "done"
	IndexFailed   IndexStatus = "failed"
)

// IndexProgress is one streamed event from Indexer.IndexAll (and the
// result of Indexer.IndexFile).
type IndexProgress struct {
	Status  IndexStatus
	Scanned int
	Total   int
	Path    string
	Err     error
}
