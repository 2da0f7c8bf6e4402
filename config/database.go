package config

import (
	"fmt"

	"strokesegapi/pkg/logger"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB is the global GORM database instance used throughout the application.
var DB *gorm.DB

// ConnectDB establishes database connection using GORM with configured MySQL credentials
// and applies the connection pool limits.
func ConnectDB() error {
	logger.Infof("Connecting to database %s@%s:%d/%s", Cfg.DBUser, Cfg.DBHost, Cfg.DBPort, Cfg.DBName)

	db, err := OpenDB()
	if err != nil {
		logger.Errorf("GORM connection failed: %v", err)
		return err
	}
	logger.Infof("GORM connected successfully to database %s", Cfg.DBName)

	DB = db
	return nil
}

// OpenDB opens a new GORM handle with the configured DSN and pool settings.
// Used by ConnectDB at startup and by the poller when it self-heals a dropped connection.
func OpenDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%s",
		Cfg.DBUser,
		Cfg.DBPass,
		Cfg.DBHost,
		Cfg.DBPort,
		Cfg.DBName,
		Cfg.DBConnectionTimeout,
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(Cfg.DBMaxConnections)
	sqlDB.SetMaxIdleConns(Cfg.DBMaxConnections)
	sqlDB.SetConnMaxIdleTime(Cfg.DBStaleTimeout)

	return db, nil
}

// PoolStats reports connection pool counters for the database health endpoint.
func PoolStats(db *gorm.DB) (map[string]interface{}, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	stats := sqlDB.Stats()
	return map[string]interface{}{
		"max_connections":       stats.MaxOpenConnections,
		"active_connections":    stats.InUse,
		"available_connections": stats.Idle,
	}, nil
}
