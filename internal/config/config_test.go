package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "PROVIDER", "PROVIDER_TIMEOUT", "PORT", "HUGGINGFACE_MODEL", "STRICT_PARAMS", "RATE_LIMIT_PER_MINUTE", "PROMPTS")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderHuggingFace, cfg.Provider)
	assert.Equal(t, "black-forest-labs/FLUX.1-dev", cfg.HuggingFace.Model)
	assert.Equal(t, 120*time.Second, cfg.ProviderTimeout)
	assert.Equal(t, "8080", cfg.Port)
	assert.False(t, cfg.StrictParams)
	assert.Zero(t, cfg.RateLimitPerMinute)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PROVIDER", "dezgo")
	t.Setenv("DEZGO_KEY", "secret")
	t.Setenv("STRICT_PARAMS", "true")
	t.Setenv("PROMPTS", "a red cube;a kitten in space")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ProviderDezgo, cfg.Provider)
	assert.Equal(t, "secret", cfg.Dezgo.Key)
	assert.True(t, cfg.StrictParams)
	assert.Equal(t, []string{"a red cube", "a kitten in space"}, cfg.Prompts)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.EqualValues(t, 5, cfg.RateLimitPerMinute)
}

func TestLoadRejectsUnknownProvider(t *testing.T) {
	t.Setenv("PROVIDER", "stable-horde")
	_, err := Load()
	assert.ErrorContains(t, err, "unknown provider")
}
