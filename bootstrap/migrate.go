package bootstrap

import (
	"fmt"

	"strokesegapi/config"
	"strokesegapi/models"
	"strokesegapi/pkg/logger"
)

// Migrate creates or updates the record store schema at startup.
func Migrate() error {
	logger.Infof("Starting schema migration...")

	err := config.DB.AutoMigrate(
		&models.Job{},
		&models.Training{},
		&models.Model{},
		&models.Inference{},
		&models.Evaluation{},
	)
	if err != nil {
		logger.Errorf("Schema migration failed: %v", err)
		return fmt.Errorf("schema migration failed: %v", err)
	}

	logger.Infof("Schema migration completed successfully")
	return nil
}
