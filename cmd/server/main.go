package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chatsql_backend/internal/api"
	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/executor"
	"chatsql_backend/internal/app/grading"
	"chatsql_backend/internal/app/ledger"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/app/tutor"
	"chatsql_backend/internal/common"
	"chatsql_backend/internal/common/security"
	"chatsql_backend/internal/domain/repository"
	"chatsql_backend/internal/platform/cache"
	"chatsql_backend/internal/platform/config"
	"chatsql_backend/internal/platform/database"
	"chatsql_backend/internal/platform/llm"
	"chatsql_backend/internal/platform/lock"
	"chatsql_backend/internal/platform/session"

	"github.com/redis/go-redis/v9"
)

func main() {
	ctx := context.Background()

	// 1. Load Configuration
	cfg := config.Load()
	common.SetLogger(common.NewLogger(cfg.LogLevel))
	common.DebugErrors = cfg.Debug
	logger := common.Logger()
	logger.Info("configuration loaded", "db_driver", cfg.DBDriver, "tutor_mode", cfg.TutorMode, "routing_mode", cfg.RoutingMode)

	// 2. Initialize session token signing
	security.InitTokenAuth(cfg.SessionSecret, cfg.SessionCookieName)

	// 3. Initialize System Database
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Could not connect to system database: %v", err)
	}
	defer db.Close()
	logger.Info("system database connected", "name", cfg.DBName)

	// 4. Initialize Redis, session store and lock
	var (
		rdb      *redis.Client
		sessions session.Store
		locker   lock.Locker
	)
	if cfg.SessionStore == "memory" {
		sessions = session.NewMemoryStore()
		locker = lock.NewLocal()
		logger.Warn("using in-memory sessions; sessions are lost on restart")
	} else {
		rdb, err = cache.Connect(ctx, cfg)
		if err != nil {
			log.Fatalf("Could not connect to Redis: %v", err)
		}
		defer rdb.Close()
		sessions = session.NewRedisStore(rdb)
		locker = lock.NewRedis(rdb, cfg.LockTTL)
		logger.Info("redis connected", "addr", cfg.RedisAddr)
	}

	// 5. Initialize Repositories
	userRepo := repository.NewSQLUserRepository(db)
	problemRepo := repository.NewSQLProblemRepository(db)
	submissionRepo := repository.NewSQLSubmissionRepository(db)
	exerciseRepo := repository.NewSQLExerciseRepository(db)
	statsRepo := repository.NewSQLStatsRepository(db)
	chatRepo := repository.NewSQLChatHistoryRepository(db)

	// 6. Initialize Query Router, Grading Engine, Ledger and Tutor
	systemQuery := database.SystemEndpoint(cfg)
	systemQuery.User = cfg.SystemQueryUser
	systemQuery.Password = cfg.SystemQueryPassword
	systemQuery.StatementTimeout = cfg.QueryTimeout
	if cfg.DBDriver != config.DriverSQLite && cfg.SystemQueryUser == cfg.DBUser {
		logger.Warn("routed statements use the system account; set SYSTEM_QUERY_DB_USER to a read-only user",
			"user", cfg.SystemQueryUser)
	}
	pools := executor.NewPools(systemQuery, database.Endpoint{
		Driver:           cfg.DBDriver,
		Host:             cfg.ProblemDBHost,
		Port:             cfg.ProblemDBPort,
		User:             cfg.ProblemDBUser,
		Password:         cfg.ProblemDBPassword,
		SSLMode:          cfg.DBSslMode,
		SQLiteDir:        cfg.SQLiteProblemDir,
		StatementTimeout: cfg.QueryTimeout,
	})
	defer pools.Close()

	queryRouter := executor.NewRouter(pools, locker, executor.Options{
		MaxRows:          cfg.QueryMaxRows,
		Timeout:          cfg.QueryTimeout,
		Mode:             executor.RoutingMode(cfg.RoutingMode),
		SandboxMutations: cfg.SandboxMutations,
	})
	grader := grading.NewEngine(queryRouter)
	submissionLedger := ledger.New(problemRepo, submissionRepo)

	var provider llm.Provider
	if cfg.TutorMode == config.TutorModeReal {
		p, err := llm.NewOpenAIProvider(llm.OpenAIOptions{
			APIKey:      cfg.LLMAPIKey,
			BaseURL:     cfg.LLMBaseURL,
			Model:       cfg.LLMModel,
			MaxTokens:   cfg.LLMMaxTokens,
			Temperature: cfg.LLMTemperature,
			Timeout:     cfg.LLMTimeout,
			MaxRetries:  2,
		})
		if err != nil {
			logger.Warn("AI tutor is not configured", "error", err)
		} else {
			provider = p
		}
	}
	tutorAdapter := tutor.NewAdapter(provider, cfg.TutorMode)

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo, sessions, cfg.SessionTTL)
	problemService := service.NewProblemService(problemRepo, submissionRepo, exerciseRepo)
	submissionService := service.NewSubmissionService(problemService, queryRouter, grader, submissionLedger, submissionRepo)
	tutorService := service.NewTutorService(problemService, tutorAdapter, queryRouter, chatRepo)
	instructorService := service.NewInstructorService(statsRepo, problemRepo, submissionRepo, exerciseRepo, problemService)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(api.RouterOptions{
		Sessions:       sessions,
		Cookie:         middleware.SessionCookie{TTL: cfg.SessionTTL, Secure: cfg.SessionCookieSecure},
		AllowedOrigins: cfg.CORSAllowedOrigins,
	}, authService, problemService, submissionService, tutorService, instructorService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout + cfg.QueryTimeout*2 + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("server starting", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", cfg.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	logger.Info("server stopped gracefully")
}
