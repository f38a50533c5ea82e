// Package registry tracks the devices linked to a cloud account: their
// liveness, explicit logout state, and configuration pushes staged for them.
package registry

import (
	"time"

	"github.com/sshdeck/sshdeck/internal/store"
)

// LivenessWindow is how recently a device must have been seen to count as
// online. Not configurable; staleness up to one heartbeat interval is
// expected and accepted.
const LivenessWindow = 5 * time.Minute

// PushData is a whole-configuration snapshot staged for one device, stamped
// with when it was staged.
type PushData struct {
	Profiles  []store.Profile `json:"profiles"`
	Commands  []store.Command `json:"commands"`
	Timestamp time.Time       `json:"timestamp"`
}

// Device is one registered client installation.
//
// Online is the stored flag, not the liveness answer: true means "infer from
// LastSeen recency", false means the user explicitly logged this device out.
// Callers must go through EffectiveOnline for display.
type Device struct {
	ID          string    `json:"deviceId"`
	Name        string    `json:"deviceName"`
	LastSeen    time.Time `json:"lastSeen"`
	Online      bool      `json:"online"`
	PendingPush bool      `json:"pendingPush"`
	PushData    *PushData `json:"pushData,omitempty"`
}

// EffectiveOnline derives the liveness shown to callers. An explicit logout
// wins over recency; otherwise the device is online iff it was seen within
// the liveness window.
func EffectiveOnline(d Device, now time.Time) bool {
	if !d.Online {
		return false
	}
	return now.Sub(d.LastSeen) < LivenessWindow
}
