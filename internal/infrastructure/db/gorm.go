package db

import (
	"errors"
	"strings"
	"time"

	"site-report-backend/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrUnsupportedURL = errors.New("unsupported database url")

// Dialector picks the gorm driver for a DATABASE_URL. postgresql:// goes to
// pgx; sqlite://<path> is for local runs.
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgresql://"), strings.HasPrefix(url, "postgres://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(url, "sqlite://")), nil
	default:
		return nil, ErrUnsupportedURL
	}
}

func OpenGorm(url, mode string, log *logger.Logger) (*gorm.DB, error) {
	dial, err := Dialector(url)
	if err != nil {
		return nil, err
	}
	db, err := OpenGormWithDialector(dial, mode, log)
	if err != nil {
		return nil, err
	}
	if dial.Name() == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// OpenGormWithDialector opens, sizes the pool and pings.
func OpenGormWithDialector(dial gorm.Dialector, mode string, log *logger.Logger) (*gorm.DB, error) {
	if log == nil {
		log = logger.Nop()
	}
	level := gormlogger.Warn
	if mode == "dev" {
		level = gormlogger.Info
	}
	cfg := &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
	}
	db, err := gorm.Open(dial, cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(30)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	log.Info("gorm: connected", "dialect", dial.Name())
	return db, nil
}
