package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearURLEnv(t *testing.T) {
	for _, k := range []string{"AUTH_API_URL", "EXPO_PUBLIC_AUTH_URL", "LISTINGS_API_URL", "EXPO_PUBLIC_LISTING_URL"} {
		t.Setenv(k, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearURLEnv(t)

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAuthBaseURL, cfg.AuthAPI.BaseURL)
	assert.Equal(t, DefaultListingsBaseURL, cfg.ListingsAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, 20, cfg.Listings.PageSize)
	assert.Equal(t, "stayclient", cfg.NATS.SubjectPrefix)
	assert.Equal(t, 5*time.Second, cfg.NATS.ConnectTimeout)
	assert.Equal(t, 5, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait)
}

func TestLoadConfig_YAMLAndEnvOverrides(t *testing.T) {
	clearURLEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
env: dev
auth_api:
  base_url: http://auth.internal:8001/api/auth/
listings_api:
  base_url: http://listings.internal:5000/api
http:
  timeout: 3s
storage:
  backend: memory
`), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "http://auth.internal:8001/api/auth", cfg.AuthAPI.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "memory", cfg.Storage.Backend)

	t.Setenv("EXPO_PUBLIC_LISTING_URL", "http://expo:5000/api/")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://expo:5000/api", cfg.ListingsAPI.BaseURL)

	t.Setenv("LISTINGS_API_URL", "http://override:5000/api")
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "http://override:5000/api", cfg.ListingsAPI.BaseURL)
}
