package handler

import (
	"net/http"

	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type InstructorHandler struct {
	instructorService *service.InstructorService
	check             middleware.InstructorCheck
}

func NewInstructorHandler(is *service.InstructorService, check middleware.InstructorCheck) *InstructorHandler {
	return &InstructorHandler{instructorService: is, check: check}
}

func (h *InstructorHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.InstructorOnly(h.check))
	r.Get("/stats", h.stats)
	r.Get("/students", h.students)
	r.Get("/students/{studentID}", h.student)
	r.Get("/recent-activity", h.recentActivity)
	r.Get("/problem-stats", h.problemStats)
	r.Get("/exercises", h.listExercises)
	r.Post("/exercises", h.createExercise)
	r.Put("/exercises/{exerciseID}", h.updateExercise)
	r.Delete("/exercises/{exerciseID}", h.deleteExercise)
}

func (h *InstructorHandler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.instructorService.Stats(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *InstructorHandler) students(w http.ResponseWriter, r *http.Request) {
	students, err := h.instructorService.Students(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, students)
}

func (h *InstructorHandler) student(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "studentID")
	if !ok {
		return
	}
	detail, err := h.instructorService.Student(r.Context(), id)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, detail)
}

func (h *InstructorHandler) recentActivity(w http.ResponseWriter, r *http.Request) {
	activity, err := h.instructorService.RecentActivity(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, activity)
}

func (h *InstructorHandler) problemStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.instructorService.ProblemStats(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, stats)
}

func (h *InstructorHandler) listExercises(w http.ResponseWriter, r *http.Request) {
	exercises, err := h.instructorService.Exercises(r.Context())
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, exercises)
}

func (h *InstructorHandler) createExercise(w http.ResponseWriter, r *http.Request) {
	var req service.ExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.instructorService.CreateExercise(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *InstructorHandler) updateExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req service.ExerciseRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.instructorService.UpdateExercise(r.Context(), id, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *InstructorHandler) deleteExercise(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	if err := h.instructorService.DeleteExercise(r.Context(), id); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
