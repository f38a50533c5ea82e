package cloud

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

type testServer struct {
	*httptest.Server
	now *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := Open(MemoryDSN)
	require.NoError(t, err)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	srv := NewServer(db, prometheus.NewRegistry(),
		WithServerLogger(logger.Noop()),
		WithServerClock(func() time.Time { return now }))

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)
	return &testServer{Server: ts, now: &now}
}

// call sends a JSON request and decodes the JSON response into out (if
// non-nil), returning the status code.
func (ts *testServer) call(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()
	var resp struct {
		Token string `json:"token"`
	}
	status := ts.call(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": email, "password": "hunter22"}, &resp)
	require.Equal(t, http.StatusCreated, status)
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterAndLogin(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "a@example.com")

	// Duplicate email is rejected.
	status := ts.call(t, http.MethodPost, "/api/auth/register", "",
		map[string]string{"email": "a@example.com", "password": "other"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var login struct {
		Token string `json:"token"`
	}
	status = ts.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "a@example.com", "password": "hunter22"}, &login)
	require.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, login.Token)

	status = ts.call(t, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "a@example.com", "password": "wrong"}, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	status := ts.call(t, http.MethodGet, "/api/config", "", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status = ts.call(t, http.MethodGet, "/api/config", "bogus-token", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestGetConfigAutoCreatesEmpty(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	var resp struct {
		Profiles     []store.Profile `json:"profiles"`
		Commands     []store.Command `json:"commands"`
		LastSyncedAt *time.Time      `json:"lastSyncedAt"`
	}
	status := ts.call(t, http.MethodGet, "/api/config", token, nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, resp.Profiles)
	assert.Empty(t, resp.Commands)
	assert.Nil(t, resp.LastSyncedAt)
}

func TestSyncRoundTrip(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	snap := store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Username: "deploy", Password: "pw", Host: "10.0.0.1", Port: 22}},
		Commands: []store.Command{{LineNumber: 1, Title: "uptime", Command: "uptime", Profile: "web"}},
	}
	status := ts.call(t, http.MethodPost, "/api/config/sync", token, snap, nil)
	require.Equal(t, http.StatusOK, status)

	// Pull returns exactly the pushed snapshot, stamped.
	var resp struct {
		Profiles     []store.Profile `json:"profiles"`
		Commands     []store.Command `json:"commands"`
		LastSyncedAt *time.Time      `json:"lastSyncedAt"`
	}
	status = ts.call(t, http.MethodGet, "/api/config", token, nil, &resp)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, snap.Profiles, resp.Profiles)
	assert.Equal(t, snap.Commands, resp.Commands)
	require.NotNil(t, resp.LastSyncedAt)
}

func TestPutProfilesLeavesCommandsAlone(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	snap := store.Snapshot{
		Commands: []store.Command{{LineNumber: 1, Title: "uptime", Command: "uptime", Profile: "web"}},
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodPost, "/api/config/sync", token, snap, nil))

	profiles := []store.Profile{{Title: "db", Username: "root", Password: "pw", Host: "10.0.0.2", Port: 5432}}
	status := ts.call(t, http.MethodPut, "/api/config/profiles", token,
		map[string]any{"profiles": profiles}, nil)
	require.Equal(t, http.StatusOK, status)

	var resp struct {
		Profiles []store.Profile `json:"profiles"`
		Commands []store.Command `json:"commands"`
	}
	require.Equal(t, http.StatusOK, ts.call(t, http.MethodGet, "/api/config", token, nil, &resp))
	assert.Equal(t, profiles, resp.Profiles)
	assert.Equal(t, snap.Commands, resp.Commands)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	snap := store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Host: "h", Username: "u", Password: "p", Port: 22}},
		Commands: []store.Command{
			{LineNumber: 1, Title: "a", Command: "true", Profile: "web"},
			{LineNumber: 2, Title: "b", Command: "true", Profile: "web"},
		},
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodPost, "/api/config/sync", token, snap, nil))

	var stats Stats
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/config/stats", token, nil, &stats))
	assert.Equal(t, 1, stats.ProfileCount)
	assert.Equal(t, 2, stats.CommandCount)
	assert.NotNil(t, stats.LastSyncedAt)
}

type devicesResp struct {
	Devices []deviceView `json:"devices"`
}

func (ts *testServer) registerDevice(t *testing.T, token, id, name string) {
	t.Helper()
	status := ts.call(t, http.MethodPost, "/api/auth/register-device", token,
		map[string]string{"deviceId": id, "deviceName": name}, nil)
	require.Equal(t, http.StatusOK, status)
}

func TestDeviceLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")

	ts.registerDevice(t, token, "dev-1", "laptop")

	var list devicesResp
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	require.Len(t, list.Devices, 1)
	assert.Equal(t, "laptop", list.Devices[0].DeviceName)
	assert.True(t, list.Devices[0].Online)

	// Six minutes of silence and the derived status flips offline.
	*ts.now = ts.now.Add(6 * time.Minute)
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	assert.False(t, list.Devices[0].Online)

	// A heartbeat brings it back within the window.
	status := ts.call(t, http.MethodPost, "/api/auth/heartbeat", token,
		map[string]string{"deviceId": "dev-1"}, nil)
	require.Equal(t, http.StatusOK, status)
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	assert.True(t, list.Devices[0].Online)
}

func TestDeviceLogoutIsSticky(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	ts.registerDevice(t, token, "dev-1", "laptop")

	status := ts.call(t, http.MethodPost, "/api/auth/device-logout", token,
		map[string]string{"deviceId": "dev-1"}, nil)
	require.Equal(t, http.StatusOK, status)

	// Heartbeats keep arriving from the stale timer but the device stays
	// offline until it re-registers.
	status = ts.call(t, http.MethodPost, "/api/auth/heartbeat", token,
		map[string]string{"deviceId": "dev-1"}, nil)
	require.Equal(t, http.StatusOK, status)

	var list devicesResp
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	assert.False(t, list.Devices[0].Online)

	ts.registerDevice(t, token, "dev-1", "laptop")
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	assert.True(t, list.Devices[0].Online)
}

func TestPushToDevicesAndPoll(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	ts.registerDevice(t, token, "dev-1", "laptop")

	snap := store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Host: "h", Username: "u", Password: "p", Port: 22}},
		Commands: []store.Command{{LineNumber: 1, Title: "uptime", Command: "uptime", Profile: "web"}},
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodPost, "/api/config/sync", token, snap, nil))

	// dev-2 is unknown; the batch still succeeds.
	status := ts.call(t, http.MethodPost, "/api/config/push-to-devices", token,
		map[string]any{"deviceIds": []string{"dev-1", "dev-2"}}, nil)
	require.Equal(t, http.StatusOK, status)

	var pending struct {
		PendingPush bool `json:"pendingPush"`
		PushData    *struct {
			Profiles []store.Profile `json:"profiles"`
			Commands []store.Command `json:"commands"`
		} `json:"pushData"`
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/config/pending-push?deviceId=dev-1", token, nil, &pending))
	require.True(t, pending.PendingPush)
	require.NotNil(t, pending.PushData)
	assert.Equal(t, snap.Profiles, pending.PushData.Profiles)
	assert.Equal(t, snap.Commands, pending.PushData.Commands)

	// Clearing twice is fine.
	for i := 0; i < 2; i++ {
		status = ts.call(t, http.MethodPost, "/api/config/clear-pending-push", token,
			map[string]string{"deviceId": "dev-1"}, nil)
		require.Equal(t, http.StatusOK, status, fmt.Sprintf("clear #%d", i+1))
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/config/pending-push?deviceId=dev-1", token, nil, &pending))
	assert.False(t, pending.PendingPush)
	assert.Nil(t, pending.PushData)
}

func TestRemoveDevice(t *testing.T) {
	ts := newTestServer(t)
	token := ts.register(t, "a@example.com")
	ts.registerDevice(t, token, "dev-1", "laptop")

	status := ts.call(t, http.MethodDelete, "/api/auth/device/dev-1", token, nil, nil)
	require.Equal(t, http.StatusOK, status)

	status = ts.call(t, http.MethodDelete, "/api/auth/device/dev-1", token, nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var list devicesResp
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/auth/devices", token, nil, &list))
	assert.Empty(t, list.Devices)
}

func TestAccountsAreIsolated(t *testing.T) {
	ts := newTestServer(t)
	tokenA := ts.register(t, "a@example.com")
	tokenB := ts.register(t, "b@example.com")

	snap := store.Snapshot{
		Profiles: []store.Profile{{Title: "web", Host: "h", Username: "u", Password: "p", Port: 22}},
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodPost, "/api/config/sync", tokenA, snap, nil))

	var resp struct {
		Profiles []store.Profile `json:"profiles"`
	}
	require.Equal(t, http.StatusOK,
		ts.call(t, http.MethodGet, "/api/config", tokenB, nil, &resp))
	assert.Empty(t, resp.Profiles)
}
