package tools

import (
	"os"
	"path/filepath"
)

// walkFiles walks root (relative to workDir) visiting regular files,
// skipping VCS and dependency directories that are never useful search
// targets and would otherwise dominate result counts.
func walkFiles(workDir, root string, visit func(relPath string, content []byte)) error {
	full, err := resolvePath(workDir, root)
	if err != nil {
		full = filepath.Join(workDir, root)
	}
	return filepath.Walk(full, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			switch info.Name() {
			case ".git", "node_modules", "vendor", ".cache":
				return filepath.SkipDir
			}
			return nil
		}
		content, readErr := os.ReadFile(path)
		if readErr != nil {
			return nil
		}
		rel, relErr := filepath.Rel(workDir, path)
		if relErr != nil {
			rel = path
		}
		visit(rel, content)
		return nil
	})
}
