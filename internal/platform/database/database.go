package database

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"chatsql_backend/internal/platform/config"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrUnknownDatabase is returned when a named database does not exist.
var ErrUnknownDatabase = errors.New("unknown database")

// Endpoint describes one physical database reachable with one set of credentials.
type Endpoint struct {
	Driver   string // config.DriverMySQL, DriverPostgres or DriverSQLite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string

	// SQLiteDir holds <Name>.db files; SQLitePath overrides it for a single file.
	SQLiteDir  string
	SQLitePath string

	StatementTimeout time.Duration
}

// SystemEndpoint is the system-of-record database from config.
func SystemEndpoint(cfg *config.Config) Endpoint {
	return Endpoint{
		Driver:     cfg.DBDriver,
		Host:       cfg.DBHost,
		Port:       cfg.DBPort,
		User:       cfg.DBUser,
		Password:   cfg.DBPassword,
		Name:       cfg.DBName,
		SSLMode:    cfg.DBSslMode,
		SQLitePath: cfg.SQLitePath,
	}
}

// DriverName is the database/sql driver registered for the endpoint.
func (e Endpoint) DriverName() string {
	if e.Driver == config.DriverPostgres {
		return "pgx"
	}
	return e.Driver
}

func (e Endpoint) sqliteFile() string {
	if e.SQLitePath != "" {
		return e.SQLitePath
	}
	return filepath.Join(e.SQLiteDir, e.Name+".db")
}

func (e Endpoint) DSN() string {
	switch e.Driver {
	case config.DriverMySQL:
		c := mysql.NewConfig()
		c.User = e.User
		c.Passwd = e.Password
		c.Net = "tcp"
		c.Addr = net.JoinHostPort(e.Host, e.Port)
		c.DBName = e.Name
		c.ParseTime = true
		c.Timeout = 10 * time.Second
		if e.StatementTimeout > 0 {
			c.ReadTimeout = e.StatementTimeout
		}
		c.Params = map[string]string{"charset": "utf8mb4"}
		return c.FormatDSN()
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			e.Host, e.Port, e.User, e.Password, e.Name, e.SSLMode)
		if e.StatementTimeout > 0 {
			dsn += fmt.Sprintf(" options='-c statement_timeout=%d'", e.StatementTimeout.Milliseconds())
		}
		return dsn
	default:
		return fmt.Sprintf("file:%s?_busy_timeout=5000&_foreign_keys=on", e.sqliteFile())
	}
}

// Open connects to the endpoint and verifies the connection. A database that
// does not exist yields an error wrapping ErrUnknownDatabase.
func Open(ctx context.Context, e Endpoint) (*sqlx.DB, error) {
	if e.Driver == config.DriverSQLite && e.SQLitePath == "" {
		if _, err := os.Stat(e.sqliteFile()); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDatabase, e.Name)
		}
	}

	db, err := sqlx.Open(e.DriverName(), e.DSN())
	if err != nil {
		return nil, fmt.Errorf("database.Open %s: %w", e.Name, err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		if IsUnknownDatabase(err) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDatabase, e.Name)
		}
		return nil, fmt.Errorf("database.Open %s: %w", e.Name, err)
	}
	return db, nil
}

// IsUnknownDatabase recognises "no such database" from every supported driver.
func IsUnknownDatabase(err error) bool {
	if errors.Is(err, ErrUnknownDatabase) {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1049 {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "3D000" {
		return true
	}
	return false
}

// Connect opens the system database and bootstraps its tables when asked to.
func Connect(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := Open(ctx, SystemEndpoint(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
