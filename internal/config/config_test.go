package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDefaults(t *testing.T) {
	cfg, err := New(WithBundledDir(t.TempDir()), WithDevMode(false))
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.UserDataDir)
	assert.Equal(t, DefaultRemoteIndexURL, cfg.RemoteIndexURL)
	assert.Equal(t, DefaultSyncInterval, cfg.SyncInterval)
	assert.False(t, cfg.DevMode)
}

func TestNewOptions(t *testing.T) {
	dir := t.TempDir()
	cfg, err := New(
		WithUserDataDir(filepath.Join(dir, "data")),
		WithBundledDir(dir),
		WithRemoteIndexURL("https://example.com/_index.json.gz"),
		WithSyncInterval(time.Minute),
		WithDevMode(true),
	)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "data"), cfg.UserDataDir)
	assert.Equal(t, dir, cfg.BundledDir)
	assert.Equal(t, "https://example.com/_index.json.gz", cfg.RemoteIndexURL)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
	assert.True(t, cfg.DevMode)
}

func TestNewOptionErrors(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{name: "empty user data dir", opt: WithUserDataDir("")},
		{name: "empty bundled dir", opt: WithBundledDir("")},
		{name: "empty remote URL", opt: WithRemoteIndexURL("")},
		{name: "negative interval", opt: WithSyncInterval(-time.Second)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opt)
			assert.Error(t, err)
		})
	}
}

func TestDevModeFromEnv(t *testing.T) {
	t.Setenv("SOURCE_REGISTRY_MODE", "dev")

	cfg, err := New(WithBundledDir(t.TempDir()))
	require.NoError(t, err)
	assert.True(t, cfg.DevMode)
}

func TestSyncIntervalFromEnv(t *testing.T) {
	t.Setenv("SOURCE_REGISTRY_SYNC_INTERVAL", "5m")

	cfg, err := New(WithBundledDir(t.TempDir()), WithDevMode(false))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
}

func TestSyncIntervalFromEnvInvalid(t *testing.T) {
	t.Setenv("SOURCE_REGISTRY_SYNC_INTERVAL", "not-a-duration")

	_, err := New()
	assert.Error(t, err)
}

func TestDevModeFromGitMarker(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "HEAD"), []byte("ref: refs/heads/main\n"), 0o600))

	cfg, err := New(WithBundledDir(dir))
	require.NoError(t, err)
	assert.True(t, cfg.DevMode)
}

func TestPathHelpers(t *testing.T) {
	t.Parallel()

	cfg := &Config{UserDataDir: "/data", BundledDir: "/app"}
	assert.Equal(t, filepath.Join("/data", "sources", "_index.json"), cfg.UserIndexFile())
	assert.Equal(t, filepath.Join("/app", "sources", "_index.json"), cfg.BundledIndexFile())
	assert.Equal(t, filepath.Join("/data", "sources", "en", "site.star"), cfg.UserSourcePath("sources/en/site.star"))
	assert.Equal(t, filepath.Join("/app", "sources", "en", "site.star"), cfg.BundledSourcePath("sources/en/site.star"))
	assert.Equal(t, filepath.Join("/app", "sources"), cfg.BundledSourcesDir())
}
