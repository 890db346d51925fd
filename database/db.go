package database

import (
	"fmt"

	"devis-backend/config"
	"devis-backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open returns a gorm handle for the configured driver. SQLite runs every
// tenant in one database and is meant for local use and tests.
func Open(cfg *config.Config) (*gorm.DB, error) {
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)}

	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.DSN())
	}

	db, err := gorm.Open(dialector, gcfg)
	if err != nil {
		return nil, fmt.Errorf("could not connect to %s database: %w", cfg.DBDriver, err)
	}
	if cfg.DBDriver == config.DriverSQLite {
		// SQLite allows a single writer; share one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("sqlite handle: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Connect opens the database and stores it in DB.
func Connect(cfg *config.Config) error {
	db, err := Open(cfg)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// IsPostgres reports whether db supports per-tenant schemas.
func IsPostgres(db *gorm.DB) bool {
	return db != nil && db.Dialector.Name() == "postgres"
}

// AutoMigrate creates the shared account tables.
func AutoMigrate() error {
	if err := DB.AutoMigrate(&models.User{}, &models.Company{}); err != nil {
		return fmt.Errorf("public automigrate failed: %w", err)
	}
	return nil
}
