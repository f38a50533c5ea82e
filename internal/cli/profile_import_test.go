package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSSHConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ssh_config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseSSHConfigProfiles(t *testing.T) {
	path := writeSSHConfig(t, `
Host web
    HostName 10.0.0.1
    User deploy
    Port 2222

Host db
    HostName db.internal
    User admin

Host *
    User fallback
`)

	profiles, err := parseSSHConfigProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2, "wildcard entry should be skipped")

	// Sorted by title
	assert.Equal(t, "db", profiles[0].Title)
	assert.Equal(t, "db.internal", profiles[0].Host)
	assert.Equal(t, "admin", profiles[0].Username)
	assert.Equal(t, 0, profiles[0].Port)

	assert.Equal(t, "web", profiles[1].Title)
	assert.Equal(t, "10.0.0.1", profiles[1].Host)
	assert.Equal(t, "deploy", profiles[1].Username)
	assert.Equal(t, 2222, profiles[1].Port)
}

func TestParseSSHConfigProfilesAliasWithoutHostName(t *testing.T) {
	path := writeSSHConfig(t, `
Host bastion
    User ops
`)

	profiles, err := parseSSHConfigProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)

	// Alias doubles as the host when no HostName is given
	assert.Equal(t, "bastion", profiles[0].Title)
	assert.Equal(t, "bastion", profiles[0].Host)
}

func TestParseSSHConfigProfilesSkipsPatterns(t *testing.T) {
	path := writeSSHConfig(t, `
Host *.internal staging-?
    User ops

Host !prod
    User nobody
`)

	profiles, err := parseSSHConfigProfiles(path)
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestParseSSHConfigProfilesMissingFile(t *testing.T) {
	profiles, err := parseSSHConfigProfiles(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Nil(t, profiles)
}
