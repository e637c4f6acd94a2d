// Package testdb opens an in-memory SQLite database evolved to the head
// schema revision.
package testdb

import (
	"context"
	"testing"

	"site-report-backend/internal/schema"
	"site-report-backend/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns a fresh database at head. The pool is capped at one
// connection because every ":memory:" connection is its own database.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ev, err := schema.New(db, logger.Nop(), schema.Revisions(schema.Options{})...)
	if err != nil {
		t.Fatalf("schema chain: %v", err)
	}
	if _, err := ev.Upgrade(context.Background()); err != nil {
		t.Fatalf("evolve schema: %v", err)
	}
	return db
}
