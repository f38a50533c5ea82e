package cloud

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/store"
)

// Configs manages the per-account configuration document.
type Configs struct {
	db  *gorm.DB
	now func() time.Time
}

// NewConfigs creates the configuration service over db.
func NewConfigs(db *gorm.DB) *Configs {
	return &Configs{db: db, now: time.Now}
}

// Stats summarizes a configuration without shipping its contents.
type Stats struct {
	ProfileCount int        `json:"profileCount"`
	CommandCount int        `json:"commandCount"`
	LastSyncedAt *time.Time `json:"lastSyncedAt"`
}

// Get returns the account's configuration, creating an empty one on first
// access so a fresh device's initial pull succeeds.
func (c *Configs) Get(accountID string) (store.Snapshot, *time.Time, error) {
	row, err := c.row(accountID)
	if err != nil {
		return store.Snapshot{}, nil, err
	}

	snap, err := decodeSnapshot(row)
	if err != nil {
		return store.Snapshot{}, nil, err
	}
	return snap, row.LastSyncedAt, nil
}

// Replace overwrites the whole document and stamps LastSyncedAt. No merge:
// last writer wins entirely.
func (c *Configs) Replace(accountID string, snap store.Snapshot) error {
	profiles, commands, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	now := c.now()
	return c.update(accountID, map[string]any{
		"profiles":       profiles,
		"commands":       commands,
		"last_synced_at": &now,
	})
}

// ReplaceProfiles overwrites only the profiles collection. The commands
// document and LastSyncedAt are untouched: partial saves are edits, not syncs.
func (c *Configs) ReplaceProfiles(accountID string, profiles []store.Profile) error {
	data, err := marshalJSON(profiles)
	if err != nil {
		return err
	}
	return c.update(accountID, map[string]any{"profiles": data})
}

// ReplaceCommands overwrites only the commands collection.
func (c *Configs) ReplaceCommands(accountID string, commands []store.Command) error {
	data, err := marshalJSON(commands)
	if err != nil {
		return err
	}
	return c.update(accountID, map[string]any{"commands": data})
}

// GetStats returns collection sizes and the last sync time.
func (c *Configs) GetStats(accountID string) (Stats, error) {
	row, err := c.row(accountID)
	if err != nil {
		return Stats{}, err
	}
	snap, err := decodeSnapshot(row)
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		ProfileCount: len(snap.Profiles),
		CommandCount: len(snap.Commands),
		LastSyncedAt: row.LastSyncedAt,
	}, nil
}

func (c *Configs) row(accountID string) (Configuration, error) {
	var row Configuration
	err := c.db.Where(Configuration{AccountID: accountID}).
		FirstOrCreate(&row).Error
	if err != nil {
		return Configuration{}, errors.WrapWithCode(err, errors.ErrStore,
			"Could not load configuration", "")
	}
	return row, nil
}

func (c *Configs) update(accountID string, fields map[string]any) error {
	// Ensure the row exists first; PUTs may arrive before any GET.
	if _, err := c.row(accountID); err != nil {
		return err
	}
	err := c.db.Model(&Configuration{}).
		Where("account_id = ?", accountID).
		Updates(fields).Error
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			"Could not save configuration", "")
	}
	return nil
}

func decodeSnapshot(row Configuration) (store.Snapshot, error) {
	var snap store.Snapshot
	if len(row.Profiles) > 0 {
		if err := json.Unmarshal(row.Profiles, &snap.Profiles); err != nil {
			return store.Snapshot{}, errors.WrapWithCode(err, errors.ErrStore,
				"Stored profiles are corrupt", "")
		}
	}
	if len(row.Commands) > 0 {
		if err := json.Unmarshal(row.Commands, &snap.Commands); err != nil {
			return store.Snapshot{}, errors.WrapWithCode(err, errors.ErrStore,
				"Stored commands are corrupt", "")
		}
	}
	return snap, nil
}

func encodeSnapshot(snap store.Snapshot) (profiles, commands []byte, err error) {
	if profiles, err = marshalJSON(snap.Profiles); err != nil {
		return nil, nil, err
	}
	if commands, err = marshalJSON(snap.Commands); err != nil {
		return nil, nil, err
	}
	return profiles, commands, nil
}

func marshalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Could not encode configuration", "")
	}
	return data, nil
}
