package config

import (
	"os"
	"path/filepath"
	"time"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete sshdeck configuration file.
type Config struct {
	Version int `yaml:"version" mapstructure:"version"`

	// DataDir holds profiles.json and commands.json.
	DataDir string `yaml:"data_dir" mapstructure:"data_dir"`

	// CommandTimeout bounds each remote command run.
	CommandTimeout time.Duration `yaml:"command_timeout" mapstructure:"command_timeout"`

	Cloud CloudConfig `yaml:"cloud" mapstructure:"cloud"`
}

// CloudConfig holds everything needed to talk to the sync server.
type CloudConfig struct {
	// URL is the sync server base URL. Empty means sync is not set up.
	URL string `yaml:"url" mapstructure:"url"`

	// Token is the bearer token from the last login.
	Token string `yaml:"token" mapstructure:"token"`

	// Email of the signed-in account, kept for display only.
	Email string `yaml:"email" mapstructure:"email"`

	// DeviceName shown in the cloud device list. Defaults to the hostname.
	DeviceName string `yaml:"device_name" mapstructure:"device_name"`

	// HeartbeatInterval between liveness reports while logged in.
	HeartbeatInterval time.Duration `yaml:"heartbeat_interval" mapstructure:"heartbeat_interval"`

	// PollInterval between pending-push checks while logged in.
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
}

// LoggedIn reports whether a cloud session is configured.
func (c CloudConfig) LoggedIn() bool {
	return c.URL != "" && c.Token != ""
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:        CurrentConfigVersion,
		DataDir:        defaultDataDir(),
		CommandTimeout: 10 * time.Second,
		Cloud: CloudConfig{
			HeartbeatInterval: 2 * time.Minute,
			PollInterval:      30 * time.Second,
		},
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sshdeck"
	}
	return filepath.Join(home, ".config", "sshdeck", "data")
}
