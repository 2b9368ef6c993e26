package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rediwo/redi-datasource/logger"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "redi-list.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.List.DefaultPageSize)
	assert.Equal(t, 10000, cfg.List.MaxPageSize)
	assert.Equal(t, 6, cfg.List.MaxSearchTerms)
	assert.Equal(t, "UTC", cfg.List.TimeZone)
	assert.True(t, cfg.List.UseAsync)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  url: sqlite://:memory:
schema:
  path: ./schema.yaml
list:
  default_page_size: 50
  time_zone: America/New_York
  use_async: false
log:
  level: debug
  format: zap
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sqlite://:memory:", cfg.Database.URL)
	assert.Equal(t, "./schema.yaml", cfg.Schema.Path)
	assert.Equal(t, 50, cfg.List.DefaultPageSize)
	assert.False(t, cfg.List.UseAsync)

	opts := cfg.DataSourceOptions()
	assert.Equal(t, 50, opts.DefaultPageSize)
	assert.Equal(t, "America/New_York", opts.TimeZone.String())
	assert.False(t, opts.UseAsync)

	l := cfg.NewLogger("test")
	assert.IsType(t, &logger.ZapLogger{}, l)
	assert.Equal(t, logger.LogLevelDebug, l.GetLevel())
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("REDI_DATABASE_URL", "postgres://db/app")
	t.Setenv("REDI_LIST_MAX_SEARCH_TERMS", "3")

	cfg, err := Load(writeConfig(t, "database:\n  url: sqlite://:memory:\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres://db/app", cfg.Database.URL)
	assert.Equal(t, 3, cfg.List.MaxSearchTerms)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := &Config{
		List: ListConfig{DefaultPageSize: 0, MaxPageSize: -1, MaxSearchTerms: 0, TimeZone: "Mars/Olympus"},
		Log:  LogConfig{Format: "xml"},
	}
	err := cfg.Validate()
	require.Error(t, err)
	for _, key := range []string{"default_page_size", "max_page_size", "max_search_terms", "time_zone", "log.format"} {
		assert.Contains(t, err.Error(), key)
	}

	cfg = &Config{List: ListConfig{DefaultPageSize: 10, MaxPageSize: 10, MaxSearchTerms: 1, TimeZone: "UTC"}}
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, time.UTC, cfg.DataSourceOptions().TimeZone)
}
