package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
apiBaseURL: https://api.example.com/v1
imageCacheSize: 50
showRawResponse: false
inferenceTimeout: 1500
temperature: 0.5
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com/v1", config.GetString("apiBaseURL"))
	assert.Equal(t, 50, config.GetIntOrDefault("imageCacheSize", 200))
	assert.False(t, config.GetBoolOrDefault("showRawResponse", true))
	assert.Equal(t, 1500*time.Millisecond, config.GetDurationOrDefault("inferenceTimeout", time.Second))
	assert.Equal(t, 0.5, config.GetFloatOrDefault("temperature", 1))
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestConfig_Defaults(t *testing.T) {
	config := NewConfig(map[string]any{
		"imageCacheSize": "not a number",
		"debug":          "yes",
	})

	assert.Equal(t, "", config.GetString("missing"))
	assert.Equal(t, "fallback", config.GetStringOrDefault("missing", "fallback"))
	assert.Equal(t, 200, config.GetIntOrDefault("imageCacheSize", 200))
	assert.True(t, config.GetBoolOrDefault("debug", true))
	assert.Equal(t, 3*time.Second, config.GetDurationOrDefault("missing", 3*time.Second))
	assert.Equal(t, 2.0, config.GetFloatOrDefault("missing", 2))
}

func TestConfig_GetStringOrEnv(t *testing.T) {
	t.Setenv("VISIONBOT_TEST_KEY", "from-env")

	assert.Equal(t, "from-env", NewConfig(nil).GetStringOrEnv("apiKey", "VISIONBOT_TEST_KEY"))
	assert.Equal(t, "from-config", NewConfig(map[string]any{"apiKey": "from-config"}).GetStringOrEnv("apiKey", "VISIONBOT_TEST_KEY"))
}
