package bm25store

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

func TestUpsertAndSearch_FindsMatchingDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(Document{ID: "c1", Filepath: "auth.go", Content: "func AuthenticateUser(token string) error"}))
	require.NoError(t, s.Upsert(Document{ID: "c2", Filepath: "math.go", Content: "func Add(a, b int) int"}))

	matches, err := s.Search("AuthenticateUser", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ID)
}

func TestSearch_RanksBetterMatchFirst(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertBatch([]Document{
		{ID: "c1", Filepath: "a.go", Content: "login login login handler"},
		{ID: "c2", Filepath: "b.go", Content: "a single mention of login here"},
	}))

	matches, err := s.Search("login", 10)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c1", matches[0].ID)
}

func TestUpsert_ReplacesExistingDocument(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(Document{ID: "c1", Filepath: "a.go", Content: "original text"}))
	require.NoError(t, s.Upsert(Document{ID: "c1", Filepath: "a.go", Content: "updated content"}))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	matches, err := s.Search("updated", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "c1", matches[0].ID)
}

func TestDeleteByFilepath_RemovesAllChunksForFile(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpsertBatch([]Document{
		{ID: "c1", Filepath: "a.go", Content: "alpha"},
		{ID: "c2", Filepath: "a.go", Content: "beta"},
		{ID: "c3", Filepath: "b.go", Content: "gamma"},
	}))

	require.NoError(t, s.DeleteByFilepath("a.go"))

	count, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearch_EmptyQueryReturnsNoResults(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Upsert(Document{ID: "c1", Filepath: "a.go", Content: "anything"}))

	matches, err := s.Search("", 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}
