package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/tool"
)

const sampleNotebook = `{
  "cells": [
    {"cell_type": "markdown", "id": "cell-1", "metadata": {}, "source": ["# Title"]},
    {"cell_type": "code", "id": "cell-2", "metadata": {}, "source": ["print('hello')\n"]}
  ],
  "metadata": {},
  "nbformat": 4,
  "nbformat_minor": 5
}`

func newNotebookTestContext(t *testing.T, workDir string) *tool.Context {
	t.Helper()
	return &tool.Context{
		Context:     context.Background(),
		WorkDir:     workDir,
		ReadTracker: tool.NewReadTracker(),
	}
}

func writeAndRecordRead(t *testing.T, ctx *tool.Context, relPath, content string) string {
	t.Helper()
	full := filepath.Join(ctx.WorkDir, relPath)
	require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	info, err := os.Stat(full)
	require.NoError(t, err)
	ctx.ReadTracker.RecordRead(full, hashContent([]byte(content)), info.ModTime().UnixNano())
	return full
}

func TestNotebookEdit_RejectsNonIpynb(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "script.py", "print(1)")

	nt := NewNotebookEditTool()
	_, err := nt.Execute(ctx, map[string]any{
		"notebook_path": "script.py",
		"cell_id":       "cell-2",
		"edit_mode":     "replace",
		"new_source":    "x = 1",
	})
	require.Error(t, err)
}

func TestNotebookEdit_RequiresReadFirst(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	full := filepath.Join(dir, "nb.ipynb")
	require.NoError(t, os.WriteFile(full, []byte(sampleNotebook), 0o644))

	nt := NewNotebookEditTool()
	_, err := nt.Execute(ctx, map[string]any{
		"notebook_path": "nb.ipynb",
		"cell_id":       "cell-2",
		"edit_mode":     "replace",
		"new_source":    "print('modified')",
	})
	require.Error(t, err)
}

func TestNotebookEdit_Replace(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "nb.ipynb", sampleNotebook)

	nt := NewNotebookEditTool()
	_, err := nt.Execute(ctx, map[string]any{
		"notebook_path": "nb.ipynb",
		"cell_id":       "cell-2",
		"edit_mode":     "replace",
		"new_source":    "print('modified')",
	})
	require.NoError(t, err)

	out, err := os.ReadFile(filepath.Join(dir, "nb.ipynb"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "print('modified')")
}

func TestNotebookEdit_Insert(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "nb.ipynb", sampleNotebook)

	nt := NewNotebookEditTool()
	_, err := nt.Execute(ctx, map[string]any{
		"notebook_path": "nb.ipynb",
		"cell_id":       "cell-1",
		"cell_type":     "code",
		"edit_mode":     "insert",
		"new_source":    "x = 2",
	})
	require.NoError(t, err)

	var nb notebook
	out, _ := os.ReadFile(filepath.Join(dir, "nb.ipynb"))
	require.NoError(t, json.Unmarshal(out, &nb))
	assert.Len(t, nb.Cells, 3)
}

func TestNotebookEdit_Delete(t *testing.T) {
	dir := t.TempDir()
	ctx := newNotebookTestContext(t, dir)
	writeAndRecordRead(t, ctx, "nb.ipynb", sampleNotebook)

	nt := NewNotebookEditTool()
	_, err := nt.Execute(ctx, map[string]any{
		"notebook_path": "nb.ipynb",
		"cell_id":       "cell-2",
		"edit_mode":     "delete",
	})
	require.NoError(t, err)

	var nb notebook
	out, _ := os.ReadFile(filepath.Join(dir, "nb.ipynb"))
	require.NoError(t, json.Unmarshal(out, &nb))
	assert.Len(t, nb.Cells, 1)
	assert.Equal(t, "cell-1", nb.Cells[0].ID)
}
