// Package database opens the SQL connection used by sales.GormStorage.
package database

import (
	"fmt"

	"retail_sales/internal/config"
	"retail_sales/internal/sales"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Open connects with the configured driver and migrates the sales schema.
func Open(cfg config.StorageConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.DSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("driver %q has no SQL backend", cfg.Driver)
	}

	logger.Info("Connecting to database...", zap.String("driver", cfg.Driver))
	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		logger.Error("Failed to connect to database", zap.String("driver", cfg.Driver), zap.Error(err))
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}

	if err := sales.Migrate(db); err != nil {
		logger.Error("Auto migration failed for sales tables", zap.Error(err))
		return nil, fmt.Errorf("failed to migrate sales tables: %w", err)
	}
	logger.Info("Sales tables migrated")

	return db, nil
}
