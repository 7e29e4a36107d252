package embedcache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet_RoundTrips(t *testing.T) {
	s := newTestStore(t)
	e := Entry{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "h1", Embedding: []float32{0.1, 0.2, 0.3}}
	require.NoError(t, s.Put(e))

	got, found, err := s.Get("m1@v1", "a.go", "h1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, e.Embedding, got.Embedding)
}

func TestGet_MissReturnsNotFound(t *testing.T) {
	s := newTestStore(t)
	_, found, err := s.Get("m1@v1", "missing.go", "h1")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestPutBatchAndGetBatch(t *testing.T) {
	s := newTestStore(t)
	entries := []Entry{
		{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "h1", Embedding: []float32{1}},
		{ArtifactID: "m1@v1", Filepath: "b.go", ContentHash: "h2", Embedding: []float32{2}},
	}
	require.NoError(t, s.PutBatch(entries))

	got, err := s.GetBatch([]Key{
		{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "h1"},
		{ArtifactID: "m1@v1", Filepath: "missing.go", ContentHash: "hx"},
	})
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestGetBatchBulk_SingleQueryByFilepath(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutBatch([]Entry{
		{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "h1", Embedding: []float32{1}},
		{ArtifactID: "m1@v1", Filepath: "b.go", ContentHash: "h2", Embedding: []float32{2}},
	}))

	got, err := s.GetBatchBulk("m1@v1", []string{"a.go", "b.go", "c.go"})
	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, []float32{1}, got["a.go"].Embedding)
}

func TestGetBatchDeduplicated_CollapsesSharedHash(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Put(Entry{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "shared", Embedding: []float32{9}}))

	got, err := s.GetBatchDeduplicated("m1@v1", []Key{
		{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "shared"},
		{ArtifactID: "m1@v1", Filepath: "b.go", ContentHash: "shared"},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{9}, got[Key{ArtifactID: "m1@v1", Filepath: "b.go", ContentHash: "shared"}].Embedding)
}

func TestDeleteByFilepath_PreservesOtherFilesSameHash(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutBatch([]Entry{
		{ArtifactID: "m1@v1", Filepath: "a.go", ContentHash: "shared", Embedding: []float32{1}},
		{ArtifactID: "m1@v1", Filepath: "b.go", ContentHash: "shared", Embedding: []float32{1}},
	}))

	require.NoError(t, s.DeleteByFilepath("a.go"))

	_, found, err := s.Get("m1@v1", "a.go", "shared")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.Get("m1@v1", "b.go", "shared")
	require.NoError(t, err)
	assert.True(t, found)
}

func TestPruneStale_RemovesOtherArtifacts(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.PutBatch([]Entry{
		{ArtifactID: "old@v1", Filepath: "a.go", ContentHash: "h1", Embedding: []float32{1}},
		{ArtifactID: "new@v2", Filepath: "a.go", ContentHash: "h1", Embedding: []float32{1}},
	}))

	n, err := s.PruneStale("new@v2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
