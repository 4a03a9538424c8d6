package api

import (
	"log/slog"
	"net/http"
	"time"

	"chatsql_backend/internal/api/handler"
	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"
	"chatsql_backend/internal/platform/session"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type RouterOptions struct {
	Sessions       session.Store
	Cookie         middleware.SessionCookie
	AllowedOrigins []string
	RequestTimeout time.Duration
}

func NewRouter(
	opts RouterOptions,
	authService *service.AuthService,
	problemService *service.ProblemService,
	submissionService *service.SubmissionService,
	tutorService *service.TutorService,
	instructorService *service.InstructorService,
) http.Handler {
	r := chi.NewRouter()

	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 60 * time.Second
	}

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.RequestLogger(&chiMiddleware.DefaultLogFormatter{
		Logger:  slog.NewLogLogger(common.Logger().Handler(), slog.LevelInfo),
		NoColor: true,
	}))
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.StripSlashes)
	r.Use(chiMiddleware.Timeout(opts.RequestTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRFToken"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Resolves the session cookie (or Bearer token) for every route; handlers
	// decide whether a session is required.
	r.Use(middleware.Sessions(opts.Sessions, opts.Cookie))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(api chi.Router) {
		authHandler := handler.NewAuthHandler(authService, opts.Cookie)
		api.Route("/auth", authHandler.RegisterRoutes)

		handler.NewProblemHandler(problemService).RegisterRoutes(api)
		handler.NewSubmissionHandler(submissionService).RegisterRoutes(api)
		handler.NewTutorHandler(tutorService).RegisterRoutes(api)

		instructorHandler := handler.NewInstructorHandler(instructorService, authService.IsInstructor)
		api.Route("/instructor", instructorHandler.RegisterRoutes)
	})

	return r
}
