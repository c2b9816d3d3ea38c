package database

import (
	"fmt"
	"time"

	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/database/migrations"
	"github.com/CryptoPlazaHQ/bybit-grid-dashboard/src/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the configured engine and tunes the connection pool.
// The caller owns the returned handle and must Close it.
func Open(config Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch config.Driver {
	case DriverSQLite, "":
		dialector = sqlite.Open(config.DatabaseURL)
	case DriverPostgres:
		dialector = postgres.Open(config.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.LogLevel(config.GormLogLevel)),
		// sqlite compares timestamps as text; legacy rows are UTC (CURRENT_TIMESTAMP).
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB from GORM: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	maxOpen := config.MaxOpenConns
	if config.Driver != DriverPostgres {
		// sqlite serializes writers; a single connection avoids "database is locked".
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(1 * time.Hour)

	logrus.WithFields(logrus.Fields{
		"driver": config.Driver,
	}).Info("[database] connection established")

	return db, nil
}

// EnsureSchema creates the pairs and positions tables when they are absent
// and runs pending data migrations. Existing tables are left untouched so a
// legacy database file keeps its original definition.
func EnsureSchema(db *gorm.DB) error {
	for _, m := range []interface{}{&model.Pair{}, &model.Position{}} {
		if db.Migrator().HasTable(m) {
			continue
		}
		if err := db.Migrator().CreateTable(m); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", m, err)
		}
	}

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("failed to run data migrations: %w", err)
	}

	logrus.Info("[database] schema ready")
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
