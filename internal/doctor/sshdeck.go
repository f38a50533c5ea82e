package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sshdeck/sshdeck/internal/config"
	"github.com/sshdeck/sshdeck/internal/deviceid"
	"github.com/sshdeck/sshdeck/internal/lock"
	"github.com/sshdeck/sshdeck/internal/store"
	"github.com/sshdeck/sshdeck/internal/syncer"
)

// Checks builds the full diagnostic suite for a loaded config.
func Checks(cfg *config.Config) []Check {
	return []Check{
		&DataDirCheck{Dir: cfg.DataDir},
		&LockCheck{Dir: cfg.DataDir},
		&StoreCheck{Dir: cfg.DataDir},
		&DeviceIdentityCheck{},
		&CloudCheck{Cfg: cfg},
	}
}

// DataDirCheck verifies the data directory exists and is writable.
type DataDirCheck struct {
	Dir string
}

func (c *DataDirCheck) Name() string     { return "data directory" }
func (c *DataDirCheck) Category() string { return "STORE" }

func (c *DataDirCheck) Run() CheckResult {
	result := CheckResult{Name: c.Name(), Category: c.Category()}

	if err := os.MkdirAll(c.Dir, 0o700); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot create %s", c.Dir)
		result.Suggestion = "Check directory permissions or set dataDir in the config"
		return result
	}

	probe := filepath.Join(c.Dir, ".doctor-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o600); err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("%s is not writable", c.Dir)
		result.Suggestion = "Check directory permissions"
		return result
	}
	os.Remove(probe)

	result.Status = StatusPass
	result.Message = c.Dir
	return result
}

// LockCheck detects a stuck data-directory lock left by a dead process.
type LockCheck struct {
	Dir string
}

func (c *LockCheck) Name() string     { return "data directory lock" }
func (c *LockCheck) Category() string { return "STORE" }

func (c *LockCheck) Run() CheckResult {
	result := CheckResult{Name: c.Name(), Category: c.Category()}

	l, err := lock.TryAcquire(c.Dir, lock.DefaultStale)
	if err != nil {
		result.Status = StatusWarn
		result.Message = "lock is held by " + lock.Holder(c.Dir)
		result.Suggestion = fmt.Sprintf("If that process is gone, remove %s", lock.LockDir(c.Dir))
		return result
	}
	l.Release()

	result.Status = StatusPass
	result.Message = "not contended"
	return result
}

// StoreCheck verifies the JSON documents parse and reports their sizes.
type StoreCheck struct {
	Dir string
}

func (c *StoreCheck) Name() string     { return "configuration store" }
func (c *StoreCheck) Category() string { return "STORE" }

func (c *StoreCheck) Run() CheckResult {
	result := CheckResult{Name: c.Name(), Category: c.Category()}

	s, err := store.NewFileStore(c.Dir)
	if err != nil {
		result.Status = StatusFail
		result.Message = err.Error()
		return result
	}

	profiles, err := s.ListProfiles()
	if err != nil {
		result.Status = StatusFail
		result.Message = "profiles.json is unreadable"
		result.Suggestion = "Fix or remove the file, then 'sshdeck sync pull' to restore from the cloud"
		return result
	}
	commands, err := s.ListCommands()
	if err != nil {
		result.Status = StatusFail
		result.Message = "commands.json is unreadable"
		result.Suggestion = "Fix or remove the file, then 'sshdeck sync pull' to restore from the cloud"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%d profile(s), %d command(s)", len(profiles), len(commands))
	return result
}

// DeviceIdentityCheck verifies a stable device id can be derived.
type DeviceIdentityCheck struct{}

func (c *DeviceIdentityCheck) Name() string     { return "device identity" }
func (c *DeviceIdentityCheck) Category() string { return "DEVICE" }

func (c *DeviceIdentityCheck) Run() CheckResult {
	result := CheckResult{Name: c.Name(), Category: c.Category()}

	id := deviceid.ID()
	if id == "" {
		result.Status = StatusFail
		result.Message = "could not derive a device id"
		result.Suggestion = "Check that /etc/machine-id exists or that the hostname is set"
		return result
	}

	result.Status = StatusPass
	result.Message = id
	return result
}

// CloudCheck verifies the cloud session: logged in, reachable, token valid.
type CloudCheck struct {
	Cfg *config.Config

	// Client overrides the default client, for tests.
	Client *syncer.Client
}

func (c *CloudCheck) Name() string     { return "cloud sync" }
func (c *CloudCheck) Category() string { return "CLOUD" }

func (c *CloudCheck) Run() CheckResult {
	result := CheckResult{Name: c.Name(), Category: c.Category()}

	if !c.Cfg.Cloud.LoggedIn() {
		result.Status = StatusWarn
		result.Message = "not logged in"
		result.Suggestion = "Run 'sshdeck login' to enable sync (optional)"
		return result
	}

	client := c.Client
	if client == nil {
		client = syncer.NewClient(c.Cfg.Cloud.URL, c.Cfg.Cloud.Token)
	}

	start := time.Now()
	stats, err := client.Stats()
	if err != nil {
		result.Status = StatusFail
		result.Message = fmt.Sprintf("cannot reach %s", c.Cfg.Cloud.URL)
		result.Suggestion = "Check the network and the cloud URL, or 'sshdeck login' if the token expired"
		return result
	}

	result.Status = StatusPass
	result.Message = fmt.Sprintf("%s (%d profile(s), %d command(s), %s)",
		c.Cfg.Cloud.URL, stats.ProfileCount, stats.CommandCount, time.Since(start).Round(time.Millisecond))
	return result
}
