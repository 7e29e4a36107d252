package filesearch

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestSymbolIndex_BuildAndSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "type ModelInfo struct {}\nfunc process() {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	if idx.Len() < 2 {
		t.Fatalf("expected at least 2 symbols, got %d", idx.Len())
	}

	results := idx.Search("ModelInfo", 10)
	if len(results) == 0 || results[0].Name != "ModelInfo" {
		t.Fatalf("expected ModelInfo as top result, got %+v", results)
	}
}

func TestSymbolIndex_CaseInsensitiveSearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "type ModelInfo struct {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	results := idx.Search("modelinfo", 10)
	if len(results) == 0 || results[0].Name != "ModelInfo" {
		t.Fatalf("expected case-insensitive match, got %+v", results)
	}
}

func TestSymbolIndex_FuzzySearch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "type ModelInfo struct {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	// subsequence match: "mdlinfo" -> "ModelInfo"
	results := idx.Search("mdlinfo", 10)
	if len(results) == 0 {
		t.Fatalf("expected a fuzzy subsequence match for mdlinfo")
	}
}

func TestSymbolIndex_UpdateFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "func oldFunc() {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	if len(idx.Search("oldFunc", 10)) == 0 {
		t.Fatal("expected oldFunc to be indexed")
	}

	writeFile(t, dir, "main.go", "func newFunc() {}\n")
	idx.UpdateFiles(dir, []string{"main.go"})

	if len(idx.Search("oldFunc", 10)) != 0 {
		t.Fatal("expected oldFunc to be gone after update")
	}
	if len(idx.Search("newFunc", 10)) == 0 {
		t.Fatal("expected newFunc to be indexed after update")
	}
}

func TestSymbolIndex_RemoveFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "func myFunc() {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	if idx.Len() == 0 {
		t.Fatal("expected a non-empty index")
	}
	idx.RemoveFile("main.go")
	if idx.Len() != 0 {
		t.Fatalf("expected an empty index after RemoveFile, got %d", idx.Len())
	}
}

func TestSymbolIndex_EmptyQueryReturnsEmpty(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "func foo() {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	if results := idx.Search("", 10); results != nil {
		t.Fatalf("expected nil results for empty query, got %+v", results)
	}
}

func TestSymbolIndex_ExactPrefix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "main.go", "func Alpha() {}\nfunc AlphaBeta() {}\nfunc Beta() {}\n")

	idx := NewSymbolIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	matches := idx.ExactPrefix("Alpha")
	if len(matches) != 2 {
		t.Fatalf("expected 2 prefix matches, got %d: %+v", len(matches), matches)
	}
}

func TestFileIndex_BuildAndSearch(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "internal", "driver"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(dir, "internal", "driver"), "driver.go", "package driver\n")
	writeFile(t, dir, "README.md", "hi\n")

	idx := NewFileIndex()
	if err := idx.Build(dir); err != nil {
		t.Fatal(err)
	}
	if idx.Len() != 2 {
		t.Fatalf("expected 2 files, got %d", idx.Len())
	}

	results := idx.Search("driver.go", 10)
	if len(results) == 0 || results[0].Path != filepath.Join("internal", "driver", "driver.go") {
		t.Fatalf("expected driver.go as top result, got %+v", results)
	}
}
