package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "version: 1\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.CommandTimeout)
	assert.Equal(t, 2*time.Minute, cfg.Cloud.HeartbeatInterval)
	assert.Equal(t, 30*time.Second, cfg.Cloud.PollInterval)
	assert.NotEmpty(t, cfg.DataDir)
	assert.False(t, cfg.Cloud.LoggedIn())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
version: 1
command_timeout: 5s
cloud:
  url: https://sync.example.com
  token: abc123
  device_name: work laptop
  poll_interval: 10s
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.CommandTimeout)
	assert.Equal(t, "https://sync.example.com", cfg.Cloud.URL)
	assert.Equal(t, "work laptop", cfg.Cloud.DeviceName)
	assert.Equal(t, 10*time.Second, cfg.Cloud.PollInterval)
	assert.True(t, cfg.Cloud.LoggedIn())
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	path := writeConfig(t, "command_timeout: -3s\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "{{{not yaml")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestSaveRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cloud.URL = "https://sync.example.com"
	cfg.Cloud.Token = "tok"
	cfg.Cloud.Email = "a@example.com"

	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, Save(cfg, path))

	// Token means user-only permissions.
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Cloud.URL, loaded.Cloud.URL)
	assert.Equal(t, cfg.Cloud.Token, loaded.Cloud.Token)
	assert.Equal(t, cfg.CommandTimeout, loaded.CommandTimeout)
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadOrDefaultWithoutConfig(t *testing.T) {
	// Run from an empty directory with no global config visible.
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, CurrentConfigVersion, cfg.Version)
}
