package schema

import (
	"fmt"

	"gorm.io/gorm"
)

// Every helper checks the catalog first so a revision can be replayed over a
// partially evolved database.

func createTables(tx *gorm.DB, models ...any) error {
	m := tx.Migrator()
	for _, model := range models {
		if m.HasTable(model) {
			continue
		}
		if err := m.CreateTable(model); err != nil {
			return fmt.Errorf("create table %T: %w", model, err)
		}
	}
	return nil
}

func dropTables(tx *gorm.DB, tables ...string) error {
	m := tx.Migrator()
	for _, t := range tables {
		if !m.HasTable(t) {
			continue
		}
		if err := m.DropTable(t); err != nil {
			return fmt.Errorf("drop table %s: %w", t, err)
		}
	}
	return nil
}

// addColumns adds the named struct fields of model to table.
func addColumns(tx *gorm.DB, table string, model any, fields ...string) error {
	m := tx.Table(table).Migrator()
	for _, f := range fields {
		if m.HasColumn(model, f) {
			continue
		}
		if err := m.AddColumn(model, f); err != nil {
			return fmt.Errorf("add column %s.%s: %w", table, f, err)
		}
	}
	return nil
}

func dropColumns(tx *gorm.DB, table string, model any, fields ...string) error {
	m := tx.Table(table).Migrator()
	for _, f := range fields {
		if !m.HasColumn(model, f) {
			continue
		}
		if err := m.DropColumn(model, f); err != nil {
			return fmt.Errorf("drop column %s.%s: %w", table, f, err)
		}
	}
	return nil
}

// createIndex runs ddl unless table already has an index called name.
func createIndex(tx *gorm.DB, table, name, ddl string) error {
	if tx.Migrator().HasIndex(table, name) {
		return nil
	}
	if err := tx.Exec(ddl).Error; err != nil {
		return fmt.Errorf("create index %s: %w", name, err)
	}
	return nil
}

func dropIndex(tx *gorm.DB, table, name string) error {
	if !tx.Migrator().HasIndex(table, name) {
		return nil
	}
	if err := tx.Exec("DROP INDEX " + name).Error; err != nil {
		return fmt.Errorf("drop index %s: %w", name, err)
	}
	return nil
}

func isPostgres(tx *gorm.DB) bool { return tx.Dialector.Name() == "postgres" }
