package tool

import (
	"os"
	"sync"

	"github.com/kadirpekel/cocode/internal/status"
)

// readRecord is what RecordRead captured at the moment of reading.
type readRecord struct {
	hash  string
	mtime int64
}

// ReadTracker enforces the read-before-write invariant: a file that
// existed before the session must be read within the session, and must
// not have changed on disk since, before a mutating tool may write it.
type ReadTracker struct {
	mu    sync.RWMutex
	reads map[string]readRecord
}

func NewReadTracker() *ReadTracker {
	return &ReadTracker{reads: make(map[string]readRecord)}
}

// RecordRead stores the file's state as observed at read time, keyed by
// absolute path.
func (t *ReadTracker) RecordRead(path, hash string, mtime int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reads[path] = readRecord{hash: hash, mtime: mtime}
}

// CheckWritable verifies path may be written: either it didn't exist
// before the session (no stat, no read record), or it was read and its
// (hash, mtime) on disk now still match what was read.
func (t *ReadTracker) CheckWritable(path string, statFn func(string) (os.FileInfo, error), hashFn func(string) (string, error)) error {
	info, statErr := statFn(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return nil
		}
		return WrapError(status.IOError, "stat file before write", statErr)
	}

	t.mu.RLock()
	rec, known := t.reads[path]
	t.mu.RUnlock()

	if !known {
		return NewError(status.InvalidArguments, "file must be read before it can be written: "+path)
	}

	if info.ModTime().UnixNano() == rec.mtime {
		return nil
	}

	currentHash, err := hashFn(path)
	if err != nil {
		return WrapError(status.IOError, "hash file before write", err)
	}
	if currentHash != rec.hash {
		return NewError(status.InvalidArguments, "file has been modified since it was last read: "+path)
	}
	return nil
}

// Forget drops a path's read record, used after a successful write so
// the file must be re-read (or re-stated via RecordRead by the writer
// itself) before it can be written again.
func (t *ReadTracker) Forget(path string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.reads, path)
}
