package formatenforcer

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, defaultMaxConsecutiveWS, cfg.MaxConsecutiveWhitespace)
	assert.Equal(t, defaultMaxJSONArrayLength, cfg.MaxJSONArrayLength)
	assert.False(t, cfg.ForceJSONFieldOrder)
	assert.True(t, cfg.Contains(' '))
	assert.True(t, cfg.Contains('A'))
}

func TestDefaultConfig_EnvOverrides(t *testing.T) {
	t.Setenv(envMaxConsecutiveWS, "3")
	t.Setenv(envStrictJSONFieldOrder, "true")
	t.Setenv(envMaxJSONArrayLength, "5")

	cfg := DefaultConfig()
	assert.Equal(t, 3, cfg.MaxConsecutiveWhitespace)
	assert.True(t, cfg.ForceJSONFieldOrder)
	assert.Equal(t, 5, cfg.MaxJSONArrayLength)
}

func TestLoadConfig_YAMLOverride(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/config.yaml"
	require.NoError(t, os.WriteFile(path, []byte("maxConsecutiveWhitespace: 7\nforceJsonFieldOrder: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.MaxConsecutiveWhitespace)
	assert.True(t, cfg.ForceJSONFieldOrder)
}

func TestLoadConfig_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, defaultMaxConsecutiveWS, cfg.MaxConsecutiveWhitespace)
}
