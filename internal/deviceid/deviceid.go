// Package deviceid derives a deterministic device identifier from stable
// machine identity, so re-registering the same machine always yields the
// same id and the cloud registry never accumulates duplicates.
package deviceid

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"strings"
)

// machineIdentitySources are read in order; the first readable one wins.
var machineIdentitySources = []string{
	"/etc/machine-id",
	"/var/lib/dbus/machine-id",
	"/sys/class/dmi/id/product_uuid",
}

// ID returns this machine's device id: a sha256 over its stable identity,
// hex-truncated to 32 characters.
func ID() string {
	return hash(machineIdentity())
}

// machineIdentity finds a stable per-machine string. When no system
// identifier is readable (containers, locked-down hosts), hostname plus the
// current user is close enough: it only has to be stable across runs on the
// same installation.
func machineIdentity() string {
	for _, path := range machineIdentitySources {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if id := strings.TrimSpace(string(data)); id != "" {
			return id
		}
	}

	hostname, _ := os.Hostname()
	username := ""
	if u, err := user.Current(); err == nil {
		username = u.Username
	}
	return hostname + "/" + username
}

func hash(identity string) string {
	sum := sha256.Sum256([]byte("sshdeck:" + identity))
	return hex.EncodeToString(sum[:])[:32]
}

// DefaultName returns the human-readable device name used at registration
// when the config doesn't set one.
func DefaultName() string {
	hostname, err := os.Hostname()
	if err != nil || hostname == "" {
		return "unnamed device"
	}
	return hostname
}
