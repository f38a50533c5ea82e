package cloud

import (
	"encoding/json"
	stderrors "errors"

	"gorm.io/gorm"

	"github.com/sshdeck/sshdeck/internal/errors"
	"github.com/sshdeck/sshdeck/internal/registry"
)

// DeviceRepo is the database-backed registry.Repo.
type DeviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo creates the device repo over db.
func NewDeviceRepo(db *gorm.DB) *DeviceRepo {
	return &DeviceRepo{db: db}
}

var _ registry.Repo = (*DeviceRepo)(nil)

func (r *DeviceRepo) ListByAccount(accountID string) ([]registry.Device, error) {
	var rows []DeviceRecord
	err := r.db.Where("account_id = ?", accountID).Order("id").Find(&rows).Error
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrDevice, "Could not list devices", "")
	}

	devices := make([]registry.Device, 0, len(rows))
	for _, row := range rows {
		d, err := recordToDevice(row)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (r *DeviceRepo) Get(accountID, deviceID string) (registry.Device, error) {
	var row DeviceRecord
	err := r.db.Where("account_id = ? AND device_id = ?", accountID, deviceID).
		First(&row).Error
	if stderrors.Is(err, gorm.ErrRecordNotFound) {
		return registry.Device{}, errors.NewDeviceNotFound(deviceID)
	}
	if err != nil {
		return registry.Device{}, errors.WrapWithCode(err, errors.ErrDevice, "Device lookup failed", "")
	}
	return recordToDevice(row)
}

func (r *DeviceRepo) Save(accountID string, d registry.Device) error {
	var pushData []byte
	if d.PushData != nil {
		var err error
		pushData, err = json.Marshal(d.PushData)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrDevice, "Could not encode push data", "")
		}
	}

	fields := map[string]any{
		"name":         d.Name,
		"last_seen":    d.LastSeen,
		"online":       d.Online,
		"pending_push": d.PendingPush,
		"push_data":    pushData,
	}

	result := r.db.Model(&DeviceRecord{}).
		Where("account_id = ? AND device_id = ?", accountID, d.ID).
		Updates(fields)
	if result.Error != nil {
		return errors.WrapWithCode(result.Error, errors.ErrDevice, "Could not save device", "")
	}
	if result.RowsAffected > 0 {
		return nil
	}

	row := DeviceRecord{
		AccountID:   accountID,
		DeviceID:    d.ID,
		Name:        d.Name,
		LastSeen:    d.LastSeen,
		Online:      d.Online,
		PendingPush: d.PendingPush,
		PushData:    pushData,
	}
	if err := r.db.Create(&row).Error; err != nil {
		return errors.WrapWithCode(err, errors.ErrDevice, "Could not save device", "")
	}
	return nil
}

func (r *DeviceRepo) Delete(accountID, deviceID string) error {
	result := r.db.Where("account_id = ? AND device_id = ?", accountID, deviceID).
		Delete(&DeviceRecord{})
	if result.Error != nil {
		return errors.WrapWithCode(result.Error, errors.ErrDevice, "Could not remove device", "")
	}
	if result.RowsAffected == 0 {
		return errors.NewDeviceNotFound(deviceID)
	}
	return nil
}

func recordToDevice(row DeviceRecord) (registry.Device, error) {
	d := registry.Device{
		ID:          row.DeviceID,
		Name:        row.Name,
		LastSeen:    row.LastSeen,
		Online:      row.Online,
		PendingPush: row.PendingPush,
	}
	if len(row.PushData) > 0 {
		var data registry.PushData
		if err := json.Unmarshal(row.PushData, &data); err != nil {
			return registry.Device{}, errors.WrapWithCode(err, errors.ErrDevice,
				"Stored push data is corrupt", "")
		}
		d.PushData = &data
	}
	return d, nil
}
