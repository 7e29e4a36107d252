package tool

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFileInfo struct {
	mtime time.Time
}

func (f fakeFileInfo) Name() string       { return "fake" }
func (f fakeFileInfo) Size() int64        { return 0 }
func (f fakeFileInfo) Mode() os.FileMode  { return 0 }
func (f fakeFileInfo) ModTime() time.Time { return f.mtime }
func (f fakeFileInfo) IsDir() bool        { return false }
func (f fakeFileInfo) Sys() any           { return nil }

func TestReadTracker_NewFileIsWritable(t *testing.T) {
	tr := NewReadTracker()
	statFn := func(string) (os.FileInfo, error) { return nil, os.ErrNotExist }
	hashFn := func(string) (string, error) { return "", nil }

	assert.NoError(t, tr.CheckWritable("/tmp/new.go", statFn, hashFn))
}

func TestReadTracker_UnreadExistingFileIsNotWritable(t *testing.T) {
	tr := NewReadTracker()
	mtime := time.Unix(100, 0)
	statFn := func(string) (os.FileInfo, error) { return fakeFileInfo{mtime: mtime}, nil }
	hashFn := func(string) (string, error) { return "abc", nil }

	err := tr.CheckWritable("/tmp/existing.go", statFn, hashFn)
	require.Error(t, err)
}

func TestReadTracker_UnchangedFileIsWritable(t *testing.T) {
	tr := NewReadTracker()
	mtime := time.Unix(100, 0)
	tr.RecordRead("/tmp/existing.go", "abc", mtime.UnixNano())

	statFn := func(string) (os.FileInfo, error) { return fakeFileInfo{mtime: mtime}, nil }
	hashFn := func(string) (string, error) { return "abc", nil }

	assert.NoError(t, tr.CheckWritable("/tmp/existing.go", statFn, hashFn))
}

func TestReadTracker_ExternallyModifiedFileIsNotWritable(t *testing.T) {
	tr := NewReadTracker()
	tr.RecordRead("/tmp/existing.go", "abc", time.Unix(100, 0).UnixNano())

	statFn := func(string) (os.FileInfo, error) { return fakeFileInfo{mtime: time.Unix(200, 0)}, nil }
	hashFn := func(string) (string, error) { return "different-hash", nil }

	err := tr.CheckWritable("/tmp/existing.go", statFn, hashFn)
	require.Error(t, err)
}
