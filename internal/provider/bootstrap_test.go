package provider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kadirpekel/cocode/internal/config"
)

func TestBuildAdapter_UnsupportedTypeReturnsError(t *testing.T) {
	_, err := BuildAdapter(config.ProviderConfig{Type: "unknown"}, config.DefaultRetryConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestBuildRegistry_RegistersEachConfiguredProvider(t *testing.T) {
	providers := map[string]config.ProviderConfig{
		"openai-main": {Type: "openai", BaseURL: "https://api.openai.com/v1"},
		"claude-main": {Type: "anthropic", BaseURL: "https://api.anthropic.com/v1"},
	}

	reg, err := BuildRegistry(providers, config.DefaultRetryConfig())
	require.NoError(t, err)

	names := reg.Names()
	assert.Len(t, names, 2)

	adapter, err := reg.Get("openai")
	require.NoError(t, err)
	assert.Equal(t, "openai", adapter.Name())

	adapter, err = reg.Get("anthropic")
	require.NoError(t, err)
	assert.Equal(t, "anthropic", adapter.Name())
}
