package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://rickandmortyapi.com/api/character", cfg.Catalog.InitialURL)
	assert.Equal(t, 0, cfg.Catalog.Timeout)
	assert.Equal(t, time.Duration(0), cfg.Catalog.TimeoutDuration())
	assert.Equal(t, "localhost:8080", cfg.Server.Addr())
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeoutDuration())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Empty(t, cfg.Catalog.Proxies)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	content := `
server:
  port: 9000
catalog:
  initial_url: http://catalog.local/api/character
  timeout: 5
  proxies:
    - http://proxy-a:3128
    - http://proxy-b:3128
web:
  load_more_burst: 1
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "http://catalog.local/api/character", cfg.Catalog.InitialURL)
	assert.Equal(t, 5*time.Second, cfg.Catalog.TimeoutDuration())
	assert.Equal(t, []string{"http://proxy-a:3128", "http://proxy-b:3128"}, cfg.Catalog.Proxies)
	assert.Equal(t, 1, cfg.Web.LoadMoreBurst)
	assert.Equal(t, "json", cfg.Log.Format)
	// untouched keys keep their defaults
	assert.Equal(t, "localhost", cfg.Server.Host)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CATALOG_INITIAL_URL", "http://env.local/api/character")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://env.local/api/character", cfg.Catalog.InitialURL)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "negative timeout", content: "catalog:\n  timeout: -1\n"},
		{name: "empty initial url", content: "catalog:\n  initial_url: \"\"\n"},
		{name: "port out of range", content: "server:\n  port: 70000\n"},
		{name: "negative rate", content: "catalog:\n  max_requests_per_second: -3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
