package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

type dialect struct {
	serialPK   string
	externalPK string
	timestamp  string
	boolean    string
	double     string
}

func dialectFor(driverName string) dialect {
	switch driverName {
	case "mysql":
		return dialect{"BIGINT AUTO_INCREMENT PRIMARY KEY", "BIGINT PRIMARY KEY", "DATETIME(6)", "TINYINT(1)", "DOUBLE"}
	case "pgx":
		return dialect{"BIGSERIAL PRIMARY KEY", "BIGINT PRIMARY KEY", "TIMESTAMPTZ", "BOOLEAN", "DOUBLE PRECISION"}
	default:
		return dialect{"INTEGER PRIMARY KEY AUTOINCREMENT", "INTEGER PRIMARY KEY", "DATETIME", "BOOLEAN", "REAL"}
	}
}

// schemaTemplate uses {{serial}} style placeholders filled per dialect.
var schemaTemplate = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id {{serial}},
		username VARCHAR(150) NOT NULL UNIQUE,
		email VARCHAR(254) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		is_admin {{bool}} NOT NULL DEFAULT FALSE,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS problems (
		id {{external}},
		title VARCHAR(255) NOT NULL,
		difficulty VARCHAR(20),
		tag VARCHAR(100),
		description TEXT,
		database_name VARCHAR(100),
		expected_query TEXT,
		expected_result TEXT,
		created_at {{ts}}
	)`,
	`CREATE TABLE IF NOT EXISTS problem_tables (
		id {{serial}},
		problem_id BIGINT NOT NULL,
		table_name VARCHAR(100) NOT NULL,
		table_schema TEXT,
		sample_data TEXT,
		display_order INT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id {{serial}},
		query TEXT NOT NULL,
		status VARCHAR(20) NOT NULL,
		execution_time {{double}},
		exercise_id BIGINT NOT NULL,
		user_id BIGINT NOT NULL,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS chat_history (
		id {{serial}},
		session_id VARCHAR(64) NOT NULL,
		problem_id BIGINT,
		message TEXT NOT NULL,
		response TEXT NOT NULL,
		context TEXT,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS database_schemas (
		id {{serial}},
		name VARCHAR(100) NOT NULL UNIQUE,
		display_name VARCHAR(200) NOT NULL,
		description TEXT,
		db_name VARCHAR(100) NOT NULL,
		created_at {{ts}} NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS exercises (
		id {{serial}},
		title VARCHAR(200) NOT NULL,
		description TEXT,
		difficulty VARCHAR(20) NOT NULL,
		schema_id BIGINT,
		initial_query TEXT,
		expected_query TEXT,
		created_at {{ts}} NOT NULL,
		updated_at {{ts}} NOT NULL
	)`,
}

// EnsureSchema creates the system tables that are missing. Production
// deployments own their schema; this serves local and test databases.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	d := dialectFor(db.DriverName())
	r := strings.NewReplacer(
		"{{serial}}", d.serialPK,
		"{{external}}", d.externalPK,
		"{{ts}}", d.timestamp,
		"{{bool}}", d.boolean,
		"{{double}}", d.double,
	)
	for _, stmt := range schemaTemplate {
		if _, err := db.ExecContext(ctx, r.Replace(stmt)); err != nil {
			return fmt.Errorf("database.EnsureSchema: %w", err)
		}
	}
	return nil
}
