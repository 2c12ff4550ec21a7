// Package database manages the SQLite connection lifecycle and schema
// migrations.
package database

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"raporbot/internal/config"
	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// DBManager owns the gorm connection and applies connection pragmas
// and pool limits from the config.
type DBManager struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
}

func NewDBManager(cfg *config.Config, logger *logrus.Logger) *DBManager {
	return &DBManager{cfg: cfg, logger: logger}
}

// Init opens the database and configures the connection pool.
func (dm *DBManager) Init() error {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", dm.cfg.DatabaseName)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", dm.cfg.DatabaseName, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to access underlying connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(dm.cfg.GetMaxOpenConns())
	sqlDB.SetMaxIdleConns(dm.cfg.GetMaxIdleConns())

	dm.db = db
	return nil
}

// GetConnection returns the active gorm connection, or nil before Init.
func (dm *DBManager) GetConnection() *gorm.DB {
	return dm.db
}

// MigrateDatabase applies the schema for all persisted models.
func (dm *DBManager) MigrateDatabase() error {
	if dm.db == nil {
		return gorm.ErrInvalidDB
	}

	err := dm.db.Transaction(func(tx *gorm.DB) error {
		return tx.AutoMigrate(
			&report.ContentStat{},
			&roster.Person{},
		)
	})
	if err != nil {
		dm.logger.WithError(err).Error("Failed to auto-migrate database")
		return err
	}

	dm.logger.Info("Database migration completed successfully")
	return nil
}

// Close releases the underlying connection pool.
func (dm *DBManager) Close() error {
	if dm.db == nil {
		return nil
	}
	sqlDB, err := dm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
