package handler

import (
	"net/http"

	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type ProblemHandler struct {
	problemService *service.ProblemService
}

func NewProblemHandler(ps *service.ProblemService) *ProblemHandler {
	return &ProblemHandler{problemService: ps}
}

// RegisterRoutes mounts the catalog reads.
func (h *ProblemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/schemas", h.listSchemas)
	r.Get("/exercises", h.listProblems)            // GET /api/exercises?difficulty=easy&tag=join
	r.Get("/exercises/{exerciseID}", h.getProblem) // GET /api/exercises/1
}

func (h *ProblemHandler) listSchemas(w http.ResponseWriter, r *http.Request) {
	schemas, err := h.problemService.ListSchemas(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, schemas)
}

func (h *ProblemHandler) listProblems(w http.ResponseWriter, r *http.Request) {
	filter := service.ProblemFilter{
		Difficulty: r.URL.Query().Get("difficulty"),
		Tag:        r.URL.Query().Get("tag"),
	}
	userID := middleware.UserIDFromContext(r.Context())

	problems, err := h.problemService.ListProblems(r.Context(), filter, userID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problems)
}

func (h *ProblemHandler) getProblem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	userID := middleware.UserIDFromContext(r.Context())

	problem, err := h.problemService.GetProblem(r.Context(), id, userID)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, problem)
}
