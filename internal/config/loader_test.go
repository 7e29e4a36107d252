package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad_ParsesProvidersAndRetry(t *testing.T) {
	path := writeTempConfig(t, `
log_level: debug
providers:
  openai:
    name: openai
    type: openai
    base_url: https://api.openai.com/v1
    api_key_env: OPENAI_API_KEY
    wire: openai_responses
retry:
  max_attempts: 3
  jitter_ratio: 0.1
`)

	cfg, err := Load(LoaderOptions{Path: path})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	require.Contains(t, cfg.Providers, "openai")
	assert.Equal(t, "https://api.openai.com/v1", cfg.Providers["openai"].BaseURL)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
}

func TestResolveAPIKey_ReadsNamedEnvVar(t *testing.T) {
	t.Setenv("TEST_COCODE_KEY", "sk-abc")
	pc := ProviderConfig{APIKeyEnv: "TEST_COCODE_KEY"}
	assert.Equal(t, "sk-abc", ResolveAPIKey(pc))
}

func TestResolveAPIKey_EmptyEnvName(t *testing.T) {
	assert.Equal(t, "", ResolveAPIKey(ProviderConfig{}))
}

func TestDefaultRetrievalConfig_UsesHomeDirPaths(t *testing.T) {
	rc := DefaultRetrievalConfig("/home/user")
	assert.Equal(t, "/home/user/retrieval/embeddings.db", rc.EmbeddingsDBPath)
	assert.Equal(t, "/home/user/retrieval/vectors", rc.VectorsPath)
	assert.Equal(t, "/home/user/retrieval/chunks.db", rc.ChunksDBPath)
}
