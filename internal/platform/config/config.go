package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	TutorModeMock = "mock"
	TutorModeReal = "real"
)

type Config struct {
	APIPort  string
	Debug    bool
	LogLevel string

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string

	AutoMigrate bool

	SQLitePath       string
	SQLiteProblemDir string

	ProblemDBHost     string
	ProblemDBPort     string
	ProblemDBUser     string
	ProblemDBPassword string

	SystemQueryUser     string
	SystemQueryPassword string

	QueryMaxRows     int
	QueryTimeout     time.Duration
	RoutingMode      string
	SandboxMutations bool
	LockTTL          time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionStore        string
	SessionSecret       []byte
	SessionCookieName   string
	SessionTTL          time.Duration
	SessionCookieSecure bool

	CORSAllowedOrigins []string

	TutorMode      string
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration
}

var AppConfig *Config

// Load reads .env (if any), an optional config file and the environment.
// Environment variables take precedence over the file.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Printf("WARN: failed to read config file: %v", err)
		}
	}

	AppConfig = fromViper(v)
	return AppConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_PORT", "8000")
	v.SetDefault("DEBUG", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_NAME", "chatsql_system")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "chatsql_system.db")
	v.SetDefault("SQLITE_PROBLEM_DIR", "problem_dbs")
	v.SetDefault("QUERY_MAX_ROWS", 1000)
	v.SetDefault("QUERY_TIMEOUT", "5s")
	v.SetDefault("ROUTING_MODE", "tokens")
	v.SetDefault("SANDBOX_MUTATIONS", true)
	v.SetDefault("LOCK_TTL", "30s")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("SESSION_COOKIE_NAME", "sessionid")
	v.SetDefault("SESSION_TTL", "168h")
	v.SetDefault("SESSION_COOKIE_SECURE", false)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000")
	v.SetDefault("LLM_MODEL", "gpt-4o-mini")
	v.SetDefault("LLM_MAX_TOKENS", 300)
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("LLM_TIMEOUT", "30s")
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{
		APIPort:  v.GetString("API_PORT"),
		Debug:    v.GetBool("DEBUG"),
		LogLevel: v.GetString("LOG_LEVEL"),

		DBHost:     firstNonEmpty(v.GetString("DB_HOST"), v.GetString("GCP_DB_HOST")),
		DBPort:     firstNonEmpty(v.GetString("DB_PORT"), v.GetString("GCP_DB_PORT")),
		DBUser:     firstNonEmpty(v.GetString("GCP_DB_USER"), v.GetString("DB_USER")),
		DBPassword: firstNonEmpty(v.GetString("DB_PASSWORD"), v.GetString("GCP_DB_PASSWORD")),
		DBName:     v.GetString("DB_NAME"),
		DBSslMode:  v.GetString("DB_SSLMODE"),

		SQLitePath:       v.GetString("SQLITE_PATH"),
		SQLiteProblemDir: v.GetString("SQLITE_PROBLEM_DIR"),

		QueryMaxRows:     v.GetInt("QUERY_MAX_ROWS"),
		QueryTimeout:     v.GetDuration("QUERY_TIMEOUT"),
		RoutingMode:      strings.ToLower(v.GetString("ROUTING_MODE")),
		SandboxMutations: v.GetBool("SANDBOX_MUTATIONS"),
		LockTTL:          v.GetDuration("LOCK_TTL"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		SessionStore:        strings.ToLower(v.GetString("SESSION_STORE")),
		SessionSecret:       []byte(firstNonEmpty(v.GetString("SESSION_SECRET"), v.GetString("SECRET_KEY"), "dev-insecure-session-secret")),
		SessionCookieName:   v.GetString("SESSION_COOKIE_NAME"),
		SessionTTL:          v.GetDuration("SESSION_TTL"),
		SessionCookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),

		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),

		TutorMode:      strings.ToLower(firstNonEmpty(v.GetString("TUTOR_MODE"), v.GetString("ANTHROPIC_MODE"), TutorModeMock)),
		LLMAPIKey:      firstNonEmpty(v.GetString("LLM_API_KEY"), v.GetString("OPENAI_API_KEY"), v.GetString("ANTHROPIC_API_KEY")),
		LLMBaseURL:     v.GetString("LLM_BASE_URL"),
		LLMModel:       v.GetString("LLM_MODEL"),
		LLMMaxTokens:   v.GetInt("LLM_MAX_TOKENS"),
		LLMTemperature: v.GetFloat64("LLM_TEMPERATURE"),
		LLMTimeout:     v.GetDuration("LLM_TIMEOUT"),
	}

	cfg.DBDriver = strings.ToLower(v.GetString("DB_DRIVER"))
	if cfg.DBDriver == "" {
		cfg.DBDriver = DriverSQLite
		if cfg.DBHost != "" {
			cfg.DBDriver = DriverMySQL
		}
	}
	if cfg.DBDriver == "pgx" {
		cfg.DBDriver = DriverPostgres
	}
	if cfg.DBPort == "" {
		cfg.DBPort = "3306"
		if cfg.DBDriver == DriverPostgres {
			cfg.DBPort = "5432"
		}
	}

	if v.IsSet("AUTO_MIGRATE") {
		cfg.AutoMigrate = v.GetBool("AUTO_MIGRATE")
	} else {
		cfg.AutoMigrate = cfg.DBDriver == DriverSQLite
	}

	cfg.ProblemDBHost = firstNonEmpty(v.GetString("PROBLEM_DB_HOST"), cfg.DBHost)
	cfg.ProblemDBPort = firstNonEmpty(v.GetString("PROBLEM_DB_PORT"), cfg.DBPort)
	cfg.ProblemDBUser = firstNonEmpty(v.GetString("PROBLEM_DB_USER"), cfg.DBUser)
	cfg.ProblemDBPassword = firstNonEmpty(v.GetString("PROBLEM_DB_PASSWORD"), cfg.DBPassword)
	cfg.SystemQueryUser = firstNonEmpty(v.GetString("SYSTEM_QUERY_DB_USER"), cfg.DBUser)
	cfg.SystemQueryPassword = firstNonEmpty(v.GetString("SYSTEM_QUERY_DB_PASSWORD"), cfg.DBPassword)

	if cfg.QueryMaxRows <= 0 {
		cfg.QueryMaxRows = 1000
	}
	if cfg.RoutingMode != "substring" {
		cfg.RoutingMode = "tokens"
	}
	return cfg
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// splitList splits a comma separated env value. viper's GetStringSlice splits
// on whitespace only.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
