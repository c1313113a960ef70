// Package databasetest opens throwaway SQLite databases for repository tests.
package databasetest

import (
	"context"
	"path/filepath"
	"testing"

	"planets-tableau/internal/shared/config"
	"planets-tableau/internal/shared/database"
)

// Open returns a migrated SQLite database stored in t.TempDir. It is closed
// when the test finishes.
func Open(t testing.TB) *database.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "planets.db") + "?_pragma=busy_timeout(5000)"
	db, err := database.Open(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
