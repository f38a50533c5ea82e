// Package syncer is the client side of configuration sync: whole-document
// push/pull against the cloud, device registration and heartbeats, and the
// pending-push poll that realizes "push to device".
//
// Every cloud round-trip failure surfaces as a SYNC error to the caller;
// nothing here retries. Retry is a user decision.
package syncer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

// Device is the cloud's view of one registered device.
type Device struct {
	DeviceID    string    `json:"deviceId"`
	DeviceName  string    `json:"deviceName"`
	LastSeen    time.Time `json:"lastSeen"`
	Online      bool      `json:"online"`
	PendingPush bool      `json:"pendingPush"`
}

// Stats summarizes the cloud configuration.
type Stats struct {
	ProfileCount int        `json:"profileCount"`
	CommandCount int        `json:"commandCount"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`
}

// Client talks to the sync server with a bearer token.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     logger.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithLogger overrides the client logger.
func WithLogger(log logger.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a sync client for baseURL. The token may be empty for
// the register/login calls that obtain one.
func NewClient(baseURL, token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
		log:     logger.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Register creates a cloud account and returns its bearer token.
func (c *Client) Register(email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/auth/register",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Login authenticates and returns a fresh bearer token.
func (c *Client) Login(email, password string) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Token, nil
}

// Push replaces the cloud configuration with the local snapshot. This is
// destructive; the caller must have confirmed with the user first.
func (c *Client) Push(snap store.Snapshot) error {
	return c.do(http.MethodPost, "/api/config/sync", snap, nil)
}

// Pull fetches the cloud configuration.
func (c *Client) Pull() (store.Snapshot, *time.Time, error) {
	var resp struct {
		Profiles     []store.Profile `json:"profiles"`
		Commands     []store.Command `json:"commands"`
		LastSyncedAt *time.Time      `json:"lastSyncedAt"`
	}
	if err := c.do(http.MethodGet, "/api/config", nil, &resp); err != nil {
		return store.Snapshot{}, nil, err
	}
	return store.Snapshot{Profiles: resp.Profiles, Commands: resp.Commands}, resp.LastSyncedAt, nil
}

// Stats fetches the cloud configuration summary.
func (c *Client) Stats() (Stats, error) {
	var stats Stats
	if err := c.do(http.MethodGet, "/api/config/stats", nil, &stats); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// PushToDevices stages the current cloud configuration for the listed
// devices. Delivery happens when each device next polls.
func (c *Client) PushToDevices(deviceIDs []string) error {
	return c.do(http.MethodPost, "/api/config/push-to-devices",
		map[string]any{"deviceIds": deviceIDs}, nil)
}

// RegisterDevice registers (or re-registers) this device.
func (c *Client) RegisterDevice(deviceID, deviceName string) error {
	return c.do(http.MethodPost, "/api/auth/register-device",
		map[string]string{"deviceId": deviceID, "deviceName": deviceName}, nil)
}

// Heartbeat reports this device as alive.
func (c *Client) Heartbeat(deviceID string) error {
	return c.do(http.MethodPost, "/api/auth/heartbeat",
		map[string]string{"deviceId": deviceID}, nil)
}

// DeviceLogout marks this device explicitly offline.
func (c *Client) DeviceLogout(deviceID string) error {
	return c.do(http.MethodPost, "/api/auth/device-logout",
		map[string]string{"deviceId": deviceID}, nil)
}

// ListDevices fetches the account's devices with derived online status.
func (c *Client) ListDevices() ([]Device, error) {
	var resp struct {
		Devices []Device `json:"devices"`
	}
	if err := c.do(http.MethodGet, "/api/auth/devices", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// RemoveDevice hard-deletes a device from the account.
func (c *Client) RemoveDevice(deviceID string) error {
	return c.do(http.MethodDelete, "/api/auth/device/"+deviceID, nil, nil)
}

// CheckAndApplyPendingPush polls this device's pending-push flag and, when
// set, replaces the local store wholesale with the staged snapshot before
// clearing the flag. Returns true when a push was applied.
func (c *Client) CheckAndApplyPendingPush(deviceID string, local store.Store) (bool, error) {
	var resp struct {
		PendingPush bool `json:"pendingPush"`
		PushData    *struct {
			Profiles []store.Profile `json:"profiles"`
			Commands []store.Command `json:"commands"`
		} `json:"pushData"`
	}
	err := c.do(http.MethodGet, "/api/config/pending-push?deviceId="+deviceID, nil, &resp)
	if err != nil {
		return false, err
	}
	if !resp.PendingPush || resp.PushData == nil {
		return false, nil
	}

	if err := local.ReplaceAll(resp.PushData.Profiles, resp.PushData.Commands); err != nil {
		return false, err
	}
	c.log.Debug("applied pending push: %d profiles, %d commands",
		len(resp.PushData.Profiles), len(resp.PushData.Commands))

	return true, c.do(http.MethodPost, "/api/config/clear-pending-push",
		map[string]string{"deviceId": deviceID}, nil)
}

func (c *Client) do(method, path string, body, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return errors.WrapWithCode(err, errors.ErrSync, "Could not encode request", "")
		}
	}

	req, err := http.NewRequest(method, c.baseURL+path, &buf)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSync, "Invalid sync request", "")
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSync,
			"Could not reach the sync server",
			"Check your network connection and the cloud URL in your config.")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Error == "" {
			apiErr.Error = resp.Status
		}
		if resp.StatusCode == http.StatusUnauthorized {
			return errors.New(errors.ErrAuth, "Sync request rejected: "+apiErr.Error,
				"Run 'sshdeck login' to sign in again.")
		}
		return errors.New(errors.ErrSync,
			fmt.Sprintf("Sync failed (%d): %s", resp.StatusCode, apiErr.Error), "")
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return errors.WrapWithCode(err, errors.ErrSync, "Could not decode sync response", "")
		}
	}
	return nil
}
