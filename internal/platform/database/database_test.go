package database

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatsql_backend/internal/platform/config"
)

func TestSQLiteSystemDatabaseBootstrap(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    config.DriverSQLite,
		SQLitePath:  filepath.Join(t.TempDir(), "system.db"),
		AutoMigrate: true,
	}
	db, err := Connect(context.Background(), cfg)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()

	// Running twice must be harmless.
	if err := EnsureSchema(context.Background(), db); err != nil {
		t.Fatalf("second EnsureSchema: %v", err)
	}
	for _, table := range []string{"users", "problems", "problem_tables", "submissions", "chat_history", "database_schemas", "exercises"} {
		var n int
		if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
			t.Fatalf("table %s missing: %v", table, err)
		}
	}
}

func TestOpenUnknownSQLiteDatabase(t *testing.T) {
	_, err := Open(context.Background(), Endpoint{Driver: config.DriverSQLite, SQLiteDir: t.TempDir(), Name: "nope"})
	if !errors.Is(err, ErrUnknownDatabase) || !IsUnknownDatabase(err) {
		t.Fatalf("expected unknown database error, got %v", err)
	}
}

func TestDSNPerDriver(t *testing.T) {
	my := Endpoint{Driver: config.DriverMySQL, Host: "db", Port: "3306", User: "u", Password: "p", Name: "probdb_1", StatementTimeout: 5 * time.Second}
	if dsn := my.DSN(); !strings.Contains(dsn, "tcp(db:3306)/probdb_1") || !strings.Contains(dsn, "readTimeout=5s") {
		t.Fatalf("unexpected mysql dsn %q", dsn)
	}
	if my.DriverName() != "mysql" {
		t.Fatalf("unexpected driver name %q", my.DriverName())
	}

	pg := Endpoint{Driver: config.DriverPostgres, Host: "db", Port: "5432", User: "u", Password: "p", Name: "probdb_1", SSLMode: "disable", StatementTimeout: 2 * time.Second}
	if dsn := pg.DSN(); !strings.Contains(dsn, "dbname=probdb_1") || !strings.Contains(dsn, "statement_timeout=2000") {
		t.Fatalf("unexpected postgres dsn %q", dsn)
	}
	if pg.DriverName() != "pgx" {
		t.Fatalf("unexpected driver name %q", pg.DriverName())
	}

	lite := Endpoint{Driver: config.DriverSQLite, SQLiteDir: "/data", Name: "probdb_1"}
	if dsn := lite.DSN(); !strings.HasPrefix(dsn, "file:/data/probdb_1.db?") {
		t.Fatalf("unexpected sqlite dsn %q", dsn)
	}
}
