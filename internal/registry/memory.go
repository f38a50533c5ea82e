package registry

import (
	"sync"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// MemRepo is an in-memory Repo for tests and the standalone server's
// ephemeral mode.
type MemRepo struct {
	mu       sync.Mutex
	accounts map[string][]Device
}

// NewMemRepo creates an empty in-memory device repo.
func NewMemRepo() *MemRepo {
	return &MemRepo{accounts: map[string][]Device{}}
}

func (r *MemRepo) ListByAccount(accountID string) ([]Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := r.accounts[accountID]
	out := make([]Device, len(devices))
	copy(out, devices)
	return out, nil
}

func (r *MemRepo) Get(accountID, deviceID string) (Device, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.accounts[accountID] {
		if d.ID == deviceID {
			return d, nil
		}
	}
	return Device{}, errors.NewDeviceNotFound(deviceID)
}

func (r *MemRepo) Save(accountID string, d Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := r.accounts[accountID]
	for i := range devices {
		if devices[i].ID == d.ID {
			devices[i] = d
			return nil
		}
	}
	r.accounts[accountID] = append(devices, d)
	return nil
}

func (r *MemRepo) Delete(accountID, deviceID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	devices := r.accounts[accountID]
	for i := range devices {
		if devices[i].ID == deviceID {
			r.accounts[accountID] = append(devices[:i], devices[i+1:]...)
			return nil
		}
	}
	return errors.NewDeviceNotFound(deviceID)
}
