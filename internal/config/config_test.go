package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
base-url: "http://backend.internal:9000"
request-log: true
history-limit: 25
logging:
  level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://backend.internal:9000", cfg.BaseURL)
	assert.True(t, cfg.RequestLog)
	assert.Equal(t, 25, cfg.HistoryLimit)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `request-log: true`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	assert.Equal(t, DefaultHistoryLimit, cfg.HistoryLimit)
	assert.NotEmpty(t, cfg.TokenFile)
	assert.NotEmpty(t, cfg.Logging.File)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSizeMB)
	assert.Equal(t, 3, cfg.Logging.MaxBackups)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "base-url: [broken")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadOptional(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, cfg.BaseURL)
	})

	t.Run("invalid file is still an error", func(t *testing.T) {
		path := writeConfig(t, "{{nope")
		_, err := LoadOptional(path)
		assert.Error(t, err)
	})
}
