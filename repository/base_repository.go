package repository

import (
	"gorm.io/gorm"
)

// Transaction runs fn inside a single database transaction. Either every
// write in fn commits, or none do. Monitors use this for terminal
// transitions so the job, its sibling record, and any derived model stay
// consistent under partial failure.
func Transaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.Transaction(fn)
}

// Ping validates the underlying connection with a trivial round-trip.
func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
