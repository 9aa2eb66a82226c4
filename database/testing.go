package database

import (
	"testing"

	"quill/config"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OpenTest returns a migrated, private in-memory SQLite store that is closed
// when the test ends.
func OpenTest(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := &config.Config{
		DBDriver:   "sqlite",
		SQLitePath: "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
		LogLevel:   "error",
	}
	db, err := Connect(cfg)
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	t.Cleanup(func() { _ = Close(db) })
	return db
}
