package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromCreatesDefaults(t *testing.T) {
	t.Setenv("BASE_URL", "")
	t.Setenv("EXPLORER_STREAM_TIMEOUT", "")
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.FileExists(t, path)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromMergesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[backend]
base_url = "http://scraper.internal:8000"

[cli]
stream_timeout = 600
`), 0644))

	t.Setenv("BASE_URL", "")
	t.Setenv("EXPLORER_STREAM_TIMEOUT", "")
	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://scraper.internal:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 10*time.Minute, cfg.StreamTimeout())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "tmp", cfg.CLI.LogDir)
	assert.Equal(t, 5001, cfg.API.Port)

	t.Setenv("BASE_URL", "http://override:9000")
	t.Setenv("EXPLORER_STREAM_TIMEOUT", "5")
	cfg, err = LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:9000", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.StreamTimeout())
}

func TestLoadFromRejectsBadInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0644))
	_, err := LoadFrom(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte(""), 0644))
	t.Setenv("EXPLORER_STREAM_TIMEOUT", "soon")
	_, err = LoadFrom(path)
	assert.ErrorContains(t, err, "EXPLORER_STREAM_TIMEOUT")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.CLI.Verbose = true
	cfg.API.ScraperCommand = "./scrape.sh"
	require.NoError(t, SaveTo(path, cfg))

	t.Setenv("BASE_URL", "")
	t.Setenv("EXPLORER_STREAM_TIMEOUT", "")
	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.BaseURL = "not a url"
	cfg.API.Port = 70000
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Backend.BaseURL")
	assert.Contains(t, err.Error(), "API.Port")
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()

	require.NoError(t, cfg.Set("backend.base_url", "http://other:1234"))
	require.NoError(t, cfg.Set("cli.stream_timeout", "120"))
	require.NoError(t, cfg.Set("cli.verbose", "true"))
	require.NoError(t, cfg.Set("api.port", "8081"))

	assert.Equal(t, "http://other:1234", cfg.Backend.BaseURL)
	assert.Equal(t, 120, cfg.CLI.StreamTimeout)
	assert.True(t, cfg.CLI.Verbose)
	assert.Equal(t, 8081, cfg.API.Port)

	assert.Error(t, cfg.Set("backend", "x"))
	assert.Error(t, cfg.Set("database.url", "x"))
	assert.Error(t, cfg.Set("cli.unknown", "x"))
	assert.Error(t, cfg.Set("api.port", "eighty"))
}

func TestLoadEnvFile(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")))

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPLORER_TEST_KEY=from-file\n"), 0644))
	t.Setenv("EXPLORER_TEST_KEY", "")
	os.Unsetenv("EXPLORER_TEST_KEY")

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("EXPLORER_TEST_KEY"))
}
