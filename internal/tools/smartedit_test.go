package tools

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCorrector struct {
	old, new string
	err      error
}

func (f fakeCorrector) Correct(ctx context.Context, path, oldString, newString, content string) (string, string, error) {
	return f.old, f.new, f.err
}

func TestSmartEdit_SucceedsWithoutCorrectionWhenExactMatches(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "f.go", "package x\n\nfunc a() {}\n")

	se := NewSmartEditTool(nil)
	_, err := se.Execute(ctx, map[string]any{
		"path":       "f.go",
		"old_string": "func a() {}",
		"new_string": "func b() {}",
	})
	require.NoError(t, err)

	out, _ := os.ReadFile(filepath.Join(dir, "f.go"))
	assert.Contains(t, string(out), "func b() {}")
}

func TestSmartEdit_FallsBackToCorrectorOnMiss(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "f.go", "package x\n\nfunc a() {}\n")

	corrector := fakeCorrector{old: "func a() {}", new: "func fixed() {}"}
	se := NewSmartEditTool(corrector)
	_, err := se.Execute(ctx, map[string]any{
		"path":       "f.go",
		"old_string": "totally wrong string that will not match",
		"new_string": "func fixed() {}",
	})
	require.NoError(t, err)

	out, _ := os.ReadFile(filepath.Join(dir, "f.go"))
	assert.Contains(t, string(out), "func fixed() {}")
}

func TestSmartEdit_ErrorsWhenCorrectorAlsoMisses(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "f.go", "package x\n\nfunc a() {}\n")

	corrector := fakeCorrector{old: "still wrong", new: "still wrong new"}
	se := NewSmartEditTool(corrector)
	_, err := se.Execute(ctx, map[string]any{
		"path":       "f.go",
		"old_string": "totally wrong string that will not match",
		"new_string": "func fixed() {}",
	})
	require.Error(t, err)
}
