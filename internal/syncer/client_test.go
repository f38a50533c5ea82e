package syncer

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/cloud"
	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

func newClient(t *testing.T) *Client {
	t.Helper()

	db, err := cloud.Open(cloud.MemoryDSN)
	require.NoError(t, err)
	srv := httptest.NewServer(cloud.NewServer(db, prometheus.NewRegistry(),
		cloud.WithServerLogger(logger.Noop())))
	t.Cleanup(srv.Close)

	bootstrap := NewClient(srv.URL, "", WithLogger(logger.Noop()))
	token, err := bootstrap.Register("a@example.com", "hunter22")
	require.NoError(t, err)

	return NewClient(srv.URL, token, WithLogger(logger.Noop()))
}

func sampleSnapshot() store.Snapshot {
	return store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Username: "deploy", Password: "pw", Host: "10.0.0.1", Port: 22}},
		Commands: []store.Command{{LineNumber: 1, Title: "uptime", Command: "uptime", Profile: "web"}},
	}
}

func TestPushThenPullRoundTrip(t *testing.T) {
	c := newClient(t)
	snap := sampleSnapshot()

	require.NoError(t, c.Push(snap))

	got, lastSyncedAt, err := c.Pull()
	require.NoError(t, err)
	assert.Equal(t, snap.Profiles, got.Profiles)
	assert.Equal(t, snap.Commands, got.Commands)
	assert.NotNil(t, lastSyncedAt)
}

func TestPullFromFreshAccountIsEmpty(t *testing.T) {
	c := newClient(t)

	snap, lastSyncedAt, err := c.Pull()
	require.NoError(t, err)
	assert.Empty(t, snap.Profiles)
	assert.Empty(t, snap.Commands)
	assert.Nil(t, lastSyncedAt)
}

func TestStats(t *testing.T) {
	c := newClient(t)
	require.NoError(t, c.Push(sampleSnapshot()))

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ProfileCount)
	assert.Equal(t, 1, stats.CommandCount)
	assert.NotNil(t, stats.LastSyncedAt)
}

func TestCheckAndApplyPendingPush(t *testing.T) {
	c := newClient(t)
	require.NoError(t, c.RegisterDevice("dev-1", "laptop"))
	require.NoError(t, c.Push(sampleSnapshot()))
	require.NoError(t, c.PushToDevices([]string{"dev-1"}))

	local := store.NewMemStore()
	require.NoError(t, local.AddProfile(store.Profile{Title: "stale", Host: "old", Username: "u", Password: "p"}))

	applied, err := c.CheckAndApplyPendingPush("dev-1", local)
	require.NoError(t, err)
	require.True(t, applied)

	// The local store was replaced wholesale: the stale profile is gone.
	profiles, err := local.ListProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "web", profiles[0].Title)

	// Next poll finds nothing pending.
	applied, err = c.CheckAndApplyPendingPush("dev-1", local)
	require.NoError(t, err)
	assert.False(t, applied)
}

func TestDeviceOperations(t *testing.T) {
	c := newClient(t)
	require.NoError(t, c.RegisterDevice("dev-1", "laptop"))
	require.NoError(t, c.Heartbeat("dev-1"))

	devices, err := c.ListDevices()
	require.NoError(t, err)
	require.Len(t, devices, 1)
	assert.Equal(t, "dev-1", devices[0].DeviceID)
	assert.True(t, devices[0].Online)

	require.NoError(t, c.DeviceLogout("dev-1"))
	devices, err = c.ListDevices()
	require.NoError(t, err)
	assert.False(t, devices[0].Online)

	require.NoError(t, c.RemoveDevice("dev-1"))
	devices, err = c.ListDevices()
	require.NoError(t, err)
	assert.Empty(t, devices)
}

func TestUnreachableServerIsSyncError(t *testing.T) {
	// Nothing listens here; the dial fails immediately.
	c := NewClient("http://127.0.0.1:1", "token", WithLogger(logger.Noop()))

	err := c.Push(sampleSnapshot())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSync))
}

func TestBadTokenIsAuthError(t *testing.T) {
	db, err := cloud.Open(cloud.MemoryDSN)
	require.NoError(t, err)
	srv := httptest.NewServer(cloud.NewServer(db, prometheus.NewRegistry(),
		cloud.WithServerLogger(logger.Noop())))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "bogus", WithLogger(logger.Noop()))
	_, _, err = c.Pull()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAuth))
}

func TestHeartbeatAfterRemoveSurfacesError(t *testing.T) {
	c := newClient(t)
	require.NoError(t, c.RegisterDevice("dev-1", "laptop"))
	require.NoError(t, c.RemoveDevice("dev-1"))

	err := c.Heartbeat("dev-1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSync))
}
