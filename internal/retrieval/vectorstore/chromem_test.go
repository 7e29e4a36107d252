package vectorstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUpsertAndSearch_ReturnsNearestNeighbor(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "ws1", "chunk-a", []float32{1, 0, 0}, "func Foo() {}", map[string]string{"filepath": "a.go"}))
	require.NoError(t, s.Upsert(ctx, "ws1", "chunk-b", []float32{0, 1, 0}, "func Bar() {}", map[string]string{"filepath": "b.go"}))

	matches, err := s.Search(ctx, "ws1", []float32{0.9, 0.1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "chunk-a", matches[0].ID)
}

func TestSearch_EmptyCollectionReturnsNoMatches(t *testing.T) {
	s := newTestStore(t)
	matches, err := s.Search(context.Background(), "empty", []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteByFilepath_RemovesMatchingDocument(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, "ws1", "chunk-a", []float32{1, 0, 0}, "content", map[string]string{"filepath": "a.go"}))

	require.NoError(t, s.DeleteByFilepath(ctx, "ws1", "a.go"))

	matches, err := s.Search(ctx, "ws1", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDelete_RemovesSingleDocumentByID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Upsert(ctx, "ws1", "chunk-a", []float32{1, 0, 0}, "content", nil))
	require.NoError(t, s.Upsert(ctx, "ws1", "chunk-b", []float32{0, 1, 0}, "content", nil))

	require.NoError(t, s.Delete(ctx, "ws1", "chunk-a"))

	matches, err := s.Search(ctx, "ws1", []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "chunk-b", matches[0].ID)
}
