// Package cloud implements the sync server: account auth, the per-account
// configuration document, and the device registry persistence, exposed over
// an HTTP API.
package cloud

import (
	"time"
)

// Account is a cloud account. The bearer token is rotated on every login.
type Account struct {
	ID           string `gorm:"primarykey"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Token        string `gorm:"index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Configuration is the one-per-account aggregate of profiles and commands.
// Both collections are stored as JSON documents: sync is whole-document
// replace, so the server never queries inside them.
type Configuration struct {
	ID           uint   `gorm:"primarykey"`
	AccountID    string `gorm:"uniqueIndex;not null"`
	Profiles     []byte
	Commands     []byte
	LastSyncedAt *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DeviceRecord is one registered device row. PushData holds the staged
// snapshot as JSON when PendingPush is set.
type DeviceRecord struct {
	ID          uint   `gorm:"primarykey"`
	AccountID   string `gorm:"index:idx_account_device,unique;not null"`
	DeviceID    string `gorm:"index:idx_account_device,unique;not null"`
	Name        string
	LastSeen    time.Time
	Online      bool
	PendingPush bool
	PushData    []byte
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
