package search

import (
	"context"
	"testing"

	"github.com/kadirpekel/cocode/internal/retrieval"
	"github.com/kadirpekel/cocode/internal/retrieval/bm25store"
	"github.com/kadirpekel/cocode/internal/retrieval/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct{}

func (fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{1, 0, 0}
	}
	return out, nil
}
func (fakeEmbedder) Name() string    { return "fake" }
func (fakeEmbedder) Version() string { return "v1" }

func newTestSearcher(t *testing.T) (*Searcher, *vectorstore.Store, *bm25store.Store) {
	t.Helper()
	vectors, err := vectorstore.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { vectors.Close() })

	fulltext, err := bm25store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { fulltext.Close() })

	s := New(DefaultConfig(), vectors, fulltext, fakeEmbedder{}, "ws1")
	return s, vectors, fulltext
}

func TestSearch_FusesBM25AndVectorHits(t *testing.T) {
	s, vectors, fulltext := newTestSearcher(t)
	ctx := context.Background()

	require.NoError(t, fulltext.Upsert(bm25store.Document{ID: "c1", Filepath: "auth.go", Content: "func Authenticate() {}"}))
	require.NoError(t, vectors.Upsert(ctx, "ws1", "c1", []float32{1, 0, 0}, "func Authenticate() {}", map[string]string{"filepath": "auth.go"}))

	results, err := s.Search(ctx, "Authenticate", 5, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Chunk.ID)
	assert.Greater(t, results[0].Score, float32(0))
}

func TestSearch_CapsChunksPerFile(t *testing.T) {
	s, _, fulltext := newTestSearcher(t)

	require.NoError(t, fulltext.UpsertBatch([]bm25store.Document{
		{ID: "c1", Filepath: "a.go", Content: "login handler login"},
		{ID: "c2", Filepath: "a.go", Content: "login handler login"},
	}))
	// Give both chunks overlapping line ranges by constructing results
	// directly through mergeOverlapping via Search's normal path isn't
	// possible without StartLine/EndLine set on bm25 matches, so this
	// exercises the per-file cap behavior instead.
	s.cfg.MaxChunksPerFile = 1

	results, err := s.Search(context.Background(), "login", 5, nil)
	require.NoError(t, err)
	assert.LessOrEqual(t, countByFile(results, "a.go"), 1)
}

func TestSearch_AppliesPageRankBoost(t *testing.T) {
	s, _, fulltext := newTestSearcher(t)
	s.cfg.PageRankAlpha = 1.0

	require.NoError(t, fulltext.UpsertBatch([]bm25store.Document{
		{ID: "c1", Filepath: "popular.go", Content: "handler logic here"},
		{ID: "c2", Filepath: "obscure.go", Content: "handler logic here"},
	}))

	results, err := s.Search(context.Background(), "handler", 5, map[string]float64{
		"popular.go": 1.0,
		"obscure.go": 0.01,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "popular.go", results[0].Chunk.Filepath)
}

func TestSearch_NoMatchesReturnsEmpty(t *testing.T) {
	s, _, _ := newTestSearcher(t)
	results, err := s.Search(context.Background(), "nothing matches this", 5, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func countByFile(results []retrieval.SearchResult, filepath string) int {
	n := 0
	for _, r := range results {
		if r.Chunk.Filepath == filepath {
			n++
		}
	}
	return n
}
