package registry

import (
	"time"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/logger"
	"github.com/sshdeck/sshdeck/internal/store"
)

// Repo is the persistence contract for an account's device list. The cloud
// server backs it with its database; tests use MemRepo.
type Repo interface {
	// ListByAccount returns all devices for the account, registration order.
	ListByAccount(accountID string) ([]Device, error)

	// Get returns one device, or a DeviceNotFound error.
	Get(accountID, deviceID string) (Device, error)

	// Save upserts a device keyed by (accountID, device.ID).
	Save(accountID string, d Device) error

	// Delete removes a device. Deleting an absent device is a
	// DeviceNotFound error.
	Delete(accountID, deviceID string) error
}

// Service implements the registry operations over a Repo.
type Service struct {
	repo Repo
	now  func() time.Time
	log  logger.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithClock injects the time source, for tests.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// WithLogger overrides the service logger.
func WithLogger(log logger.Logger) ServiceOption {
	return func(s *Service) { s.log = log }
}

// NewService creates a registry service over repo.
func NewService(repo Repo, opts ...ServiceOption) *Service {
	s := &Service{repo: repo, now: time.Now, log: logger.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register upserts a device and marks it online. Re-registering an existing
// id refreshes its name and last-seen time; this is also the only way a
// logged-out device comes back online.
func (s *Service) Register(accountID, deviceID, deviceName string) error {
	d, err := s.repo.Get(accountID, deviceID)
	if err != nil {
		if !errors.IsCode(err, errors.ErrDevice) {
			return err
		}
		d = Device{ID: deviceID}
	}

	d.Name = deviceName
	d.LastSeen = s.now()
	d.Online = true
	return s.repo.Save(accountID, d)
}

// Heartbeat refreshes a device's last-seen time. It never flips Online back
// to true: an explicit logout stays in force until the next Register, so a
// stale background timer can't resurrect a device the user signed out.
func (s *Service) Heartbeat(accountID, deviceID string) error {
	d, err := s.repo.Get(accountID, deviceID)
	if err != nil {
		return err
	}
	d.LastSeen = s.now()
	return s.repo.Save(accountID, d)
}

// Logout marks a device explicitly offline.
func (s *Service) Logout(accountID, deviceID string) error {
	d, err := s.repo.Get(accountID, deviceID)
	if err != nil {
		return err
	}
	d.Online = false
	d.LastSeen = s.now()
	return s.repo.Save(accountID, d)
}

// Remove hard-deletes a device.
func (s *Service) Remove(accountID, deviceID string) error {
	return s.repo.Delete(accountID, deviceID)
}

// List returns the account's devices.
func (s *Service) List(accountID string) ([]Device, error) {
	return s.repo.ListByAccount(accountID)
}

// StagePush stages the snapshot on each listed device. Unknown ids are
// skipped without error: partial success across a batch is acceptable, and
// the caller is expected to have picked ids from a recent device list.
func (s *Service) StagePush(accountID string, deviceIDs []string, profiles []store.Profile, commands []store.Command) error {
	data := &PushData{Profiles: profiles, Commands: commands, Timestamp: s.now()}

	for _, id := range deviceIDs {
		d, err := s.repo.Get(accountID, id)
		if err != nil {
			if errors.IsCode(err, errors.ErrDevice) {
				s.log.Debug("stage push: skipping unknown device %s", id)
				continue
			}
			return err
		}
		d.PendingPush = true
		d.PushData = data
		if err := s.repo.Save(accountID, d); err != nil {
			return err
		}
	}
	return nil
}

// ClearPendingPush clears a device's staged push. Clearing an already-clear
// or unknown device is a no-op success.
func (s *Service) ClearPendingPush(accountID, deviceID string) error {
	d, err := s.repo.Get(accountID, deviceID)
	if err != nil {
		if errors.IsCode(err, errors.ErrDevice) {
			return nil
		}
		return err
	}
	d.PendingPush = false
	d.PushData = nil
	return s.repo.Save(accountID, d)
}
