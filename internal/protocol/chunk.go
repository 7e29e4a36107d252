package protocol

import "time"

// CodeChunk is a bounded-size slice of a source file, the unit of
// indexing and search. Identity is (SourceID, Filepath, StartLine,
// EndLine); it is replaced atomically on file change and deleted on
// file removal.
type CodeChunk struct {
	ID           string
	SourceID     string
	Filepath     string
	Language     string
	Content      string
	StartLine    int
	EndLine      int
	ContentHash  string
	IndexedAt    time.Time
	Embedding    []float32
	ParentSymbol string
	IsOverview   bool
}

// CacheEntry is one row of the embedding cache: (ArtifactID, Filepath,
// ContentHash) -> Embedding. ArtifactID is an opaque embedding
// model/version tag used to prune stale entries; identical content
// across files stores separate rows keyed by filepath.
type CacheEntry struct {
	ArtifactID  string
	Filepath    string
	ContentHash string
	Embedding   []float32
}

// FileState is a tracked (filepath, content_hash, mtime) triple used to
// decide re-chunking vs cache reuse.
type FileState struct {
	Filepath    string
	ContentHash string
	ModTime     time.Time
}
