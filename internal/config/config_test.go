package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codesift/codesift-mcp/internal/search"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, search.DefaultConfig(), cfg.SearchConfig())
	assert.Nil(t, cfg.SanitizeConfig())
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDBPath, cfg.DBPath)
}

func TestLoadFileOverrides(t *testing.T) {
	path := writeConfig(t, `
db_path: /var/lib/codesift/index.db
log_level: debug
search:
  enable_progressive_search: false
  max_results: 25
  mode: content_only
sanitization:
  allow_column_filters: true
  max_wildcards: 3
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/codesift/index.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)

	sc := cfg.SearchConfig()
	assert.False(t, sc.EnableProgressiveSearch)
	assert.True(t, sc.EnableFallback) // untouched default
	assert.Equal(t, 25, sc.MaxResults)
	assert.Equal(t, search.ModeContentOnly, sc.Mode)

	require.NotNil(t, sc.Sanitization)
	assert.True(t, sc.Sanitization.AllowColumnFilters)
	assert.Equal(t, 3, sc.Sanitization.MaxWildcards)
	assert.True(t, sc.Sanitization.AllowWildcards) // untouched default
}

func TestLoadMalformedFile(t *testing.T) {
	path := writeConfig(t, "search: [not a mapping")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "db_path: /from/file\nsearch:\n  max_results: 25\n")

	t.Setenv("CODESIFT_DB_PATH", "/from/env")
	t.Setenv("CODESIFT_MAX_RESULTS", "7")
	t.Setenv("CODESIFT_SEARCH_MODE", "metadata_only")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DBPath)
	sc := cfg.SearchConfig()
	assert.Equal(t, 7, sc.MaxResults)
	assert.Equal(t, search.ModeMetadataOnly, sc.Mode)
}
