package config

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"bus_tracker/internal/logger"
)

// DSN returns the libpq connection string. DATABASE_URL style URLs are
// converted; otherwise the discrete fields are used.
func (d DatabaseConfig) DSN() (string, error) {
	if d.URL != "" {
		dsn, err := pq.ParseURL(d.URL)
		if err != nil {
			return "", fmt.Errorf("parse database url: %w", err)
		}
		return dsn, nil
	}
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode, d.TimeZone,
	), nil
}

// OpenDB connects to Postgres with SQL logging routed through logrus.
func OpenDB(d DatabaseConfig) (*gorm.DB, error) {
	dsn, err := d.DSN()
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(logger.GormLogger(), gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}
