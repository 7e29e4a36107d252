package reminder

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTracker_ReportsModification(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	tr := NewFileTracker()
	tr.Watch(path)
	assert.Empty(t, tr.Diff())

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o644))
	changes := tr.Diff()
	require.Len(t, changes, 1)
	assert.Equal(t, FileModified, changes[0].Status)
}

func TestFileTracker_ReportsDeletion(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	tr := NewFileTracker()
	tr.Watch(path)
	require.NoError(t, os.Remove(path))
	changes := tr.Diff()
	require.Len(t, changes, 1)
	assert.Equal(t, FileDeleted, changes[0].Status)
}

func TestFileTracker_NoChangesProducesEmptyDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o644))

	tr := NewFileTracker()
	tr.Watch(path)
	tr.Diff()
	assert.Empty(t, tr.Diff())
}
