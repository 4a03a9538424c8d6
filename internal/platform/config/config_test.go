package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
)

func loadFromEnv(t *testing.T) *Config {
	t.Helper()
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)
	return fromViper(v)
}

func TestDefaultsSelectSQLiteAndMockTutor(t *testing.T) {
	cfg := loadFromEnv(t)

	if cfg.DBDriver != DriverSQLite {
		t.Fatalf("expected sqlite3 driver without DB_HOST, got %q", cfg.DBDriver)
	}
	if !cfg.AutoMigrate {
		t.Fatalf("expected auto migrate for sqlite")
	}
	if cfg.TutorMode != TutorModeMock {
		t.Fatalf("expected mock tutor mode, got %q", cfg.TutorMode)
	}
	if cfg.QueryMaxRows != 1000 {
		t.Fatalf("expected row cap 1000, got %d", cfg.QueryMaxRows)
	}
	if cfg.SessionTTL != 7*24*time.Hour {
		t.Fatalf("expected 7 day session, got %s", cfg.SessionTTL)
	}
	if cfg.SessionCookieName != "sessionid" {
		t.Fatalf("unexpected cookie name %q", cfg.SessionCookieName)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 default origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestHostSelectsMySQLAndProblemDefaults(t *testing.T) {
	t.Setenv("GCP_DB_HOST", "10.0.0.5")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("PROBLEM_DB_USER", "grader")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ANTHROPIC_MODE", "REAL")

	cfg := loadFromEnv(t)

	if cfg.DBDriver != DriverMySQL {
		t.Fatalf("expected mysql, got %q", cfg.DBDriver)
	}
	if cfg.DBPort != "3306" {
		t.Fatalf("expected default mysql port, got %q", cfg.DBPort)
	}
	if cfg.AutoMigrate {
		t.Fatalf("auto migrate should be off for mysql")
	}
	if cfg.ProblemDBHost != "10.0.0.5" || cfg.ProblemDBPassword != "secret" {
		t.Fatalf("problem db should inherit system host and password: %+v", cfg)
	}
	if cfg.ProblemDBUser != "grader" {
		t.Fatalf("expected problem user override, got %q", cfg.ProblemDBUser)
	}
	if got := cfg.CORSAllowedOrigins; len(got) != 2 || got[1] != "https://b.example" {
		t.Fatalf("unexpected origins %v", got)
	}
	if cfg.TutorMode != TutorModeReal {
		t.Fatalf("expected real tutor mode, got %q", cfg.TutorMode)
	}
}

func TestUnknownRoutingModeFallsBackToTokens(t *testing.T) {
	t.Setenv("ROUTING_MODE", "regex")
	t.Setenv("DB_DRIVER", "pgx")

	cfg := loadFromEnv(t)

	if cfg.RoutingMode != "tokens" {
		t.Fatalf("expected tokens, got %q", cfg.RoutingMode)
	}
	if cfg.DBDriver != DriverPostgres || cfg.DBPort != "5432" {
		t.Fatalf("expected postgres on 5432, got %s:%s", cfg.DBDriver, cfg.DBPort)
	}
}
