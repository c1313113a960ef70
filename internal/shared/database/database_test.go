package database

import (
	"context"
	"path/filepath"
	"testing"

	"planets-tableau/internal/shared/config"
)

// openTestDB returns a migrated SQLite database in a temporary directory.
func openTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=busy_timeout(5000)"
	db, err := Open(config.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.RunMigrations(context.Background()); err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}
	return db
}

func TestRebind(t *testing.T) {
	sqlite := &DB{driver: config.DriverSQLite}
	pg := &DB{driver: config.DriverPostgres}

	query := "UPDATE planets SET owner_id = $1, updated_at = $2 WHERE id = $3 AND price > '$'"
	if got, want := sqlite.Rebind(query), "UPDATE planets SET owner_id = ?, updated_at = ? WHERE id = ? AND price > '$'"; got != want {
		t.Fatalf("sqlite Rebind = %q, want %q", got, want)
	}
	if got := pg.Rebind(query); got != query {
		t.Fatalf("postgres query should be unchanged, got %q", got)
	}
}

func TestOpen_RejectsUnknownDriver(t *testing.T) {
	if _, err := Open("mysql", "whatever"); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}

func TestRunMigrations_IsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	if err := db.RunMigrations(ctx); err != nil {
		t.Fatalf("second RunMigrations: %v", err)
	}

	var applied int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM schema_migrations").Scan(&applied); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	files, err := getMigrationFiles(migrationFiles)
	if err != nil {
		t.Fatalf("getMigrationFiles: %v", err)
	}
	if applied != len(files) {
		t.Fatalf("applied = %d, want %d", applied, len(files))
	}

	for _, table := range []string{"games", "game_players", "planets"} {
		if _, err := db.ExecContext(ctx, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	sentinel := context.Canceled
	err := db.WithTx(ctx, func(tx *Tx) error {
		_, err := tx.ExecContext(ctx, db.Rebind(
			"INSERT INTO games (id, name, status, width, height, min_distance, seed, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)"),
			"g1", "rollback", "active", 10, 10, 1, 0, 0, 0)
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
		return sentinel
	})
	if err != sentinel {
		t.Fatalf("WithTx returned %v, want sentinel", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM games").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected rollback, found %d games", count)
	}
}

func TestExecutor_FallsBackToDB(t *testing.T) {
	db := openTestDB(t)
	if db.Executor(nil) != Executor(db) {
		t.Fatalf("expected db when tx is nil")
	}
}
