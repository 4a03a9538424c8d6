package handler

import (
	"net/http"

	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type TutorHandler struct {
	tutorService *service.TutorService
}

func NewTutorHandler(ts *service.TutorService) *TutorHandler {
	return &TutorHandler{tutorService: ts}
}

func (h *TutorHandler) RegisterRoutes(r chi.Router) {
	r.Post("/exercises/{exerciseID}/ai", h.ask)
}

func (h *TutorHandler) ask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req service.AskRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var userID int64
	var sessionKey string
	if sess := middleware.SessionFromContext(r.Context()); sess != nil {
		userID, sessionKey = sess.UserID, sess.Key
	}

	resp, err := h.tutorService.Ask(r.Context(), id, userID, sessionKey, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
