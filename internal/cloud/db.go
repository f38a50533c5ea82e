package cloud

import (
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sshdeck/sshdeck/internal/errors"
)

// MemoryDSN opens an ephemeral database, used by tests and `serve --memory`.
const MemoryDSN = ":memory:"

// Open opens (creating if needed) the server database at path and migrates
// the schema.
func Open(path string) (*gorm.DB, error) {
	if path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrStore,
				"Could not create database directory",
				"Check permissions on "+filepath.Dir(path))
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Could not open database: "+path, "")
	}

	if err := db.AutoMigrate(&Account{}, &Configuration{}, &DeviceRecord{}); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			"Database migration failed", "")
	}
	return db, nil
}
