package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, "go", DetectLanguage("main.go"))
	assert.Equal(t, "python", DetectLanguage("pkg/script.py"))
	assert.Equal(t, "", DetectLanguage("README"))
}

func TestAllowed_KnownLanguageAlwaysAllowed(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, Allowed(cfg, "main.go"))
}

func TestAllowed_UnknownExtensionFallsBackToTextAllowList(t *testing.T) {
	cfg := DefaultConfig()
	assert.True(t, Allowed(cfg, "config.yaml"))
	assert.False(t, Allowed(cfg, "binary.exe"))
}

func TestAllowed_ExcludesConfiguredDirs(t *testing.T) {
	cfg := DefaultConfig()
	assert.False(t, Allowed(cfg, "vendor/pkg/file.go"))
	assert.False(t, Allowed(cfg, "node_modules/lib/index.js"))
}

func TestChunk_SmallFileProducesOneChunk(t *testing.T) {
	cfg := DefaultConfig()
	content := "package main\n\nfunc main() {}\n"
	chunks := Chunk(cfg, "main.go", content)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].StartLine)
}

func TestChunk_LargeFileSplitsWithOverlap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinTokens = 20
	cfg.MaxTokens = 40

	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("func handler")
		b.WriteString(strings.Repeat("x", 1))
		b.WriteString("() { return nil }\n")
	}
	chunks := Chunk(cfg, "handlers.go", b.String())
	assert.Greater(t, len(chunks), 1)
	// Consecutive chunks should overlap: the next chunk's start line
	// is not strictly past the previous chunk's end line.
	for i := 1; i < len(chunks); i++ {
		assert.LessOrEqual(t, chunks[i].StartLine, chunks[i-1].EndLine)
	}
}

func TestChunk_EmptyContentProducesNoChunks(t *testing.T) {
	assert.Empty(t, Chunk(DefaultConfig(), "empty.go", ""))
}
