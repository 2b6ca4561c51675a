package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tram.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
feed:
  headers:
    X-Api-Key: secret
storage:
  backend: sqlite
`), 0644))

	defer func() {
		configPath, staticURL, realtimeURL, headers = "", "", "", []string{}
	}()

	configPath = path
	_, err := loadConfig()
	assert.Error(t, err)

	staticURL = "https://example.com/gtfs.zip"
	realtimeURL = "https://example.com/trip-updates"
	headers = []string{"Authorization: Bearer x"}

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/gtfs.zip", cfg.Feed.StaticURL)
	assert.Equal(t, "https://example.com/trip-updates", cfg.Feed.RealtimeURL)
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, map[string]string{
		"X-Api-Key":     "secret",
		"Authorization": "Bearer x",
	}, cfg.Feed.Headers)
}

func TestParseHeaders(t *testing.T) {
	parsed, err := parseHeaders([]string{"A: 1", "B:2:3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"A": "1", "B": "2:3"}, parsed)

	_, err = parseHeaders([]string{"nope"})
	assert.Error(t, err)
}
