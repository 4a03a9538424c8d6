package handler

import (
	"net/http"

	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"
	"chatsql_backend/internal/common/security"

	"github.com/go-chi/chi/v5"
)

type SubmissionHandler struct {
	submissionService *service.SubmissionService
}

func NewSubmissionHandler(ss *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: ss}
}

func (h *SubmissionHandler) RegisterRoutes(r chi.Router) {
	r.Post("/exercises/{exerciseID}/execute", h.execute)
	r.Post("/exercises/{exerciseID}/submit", h.submit)
	r.Get("/exercises/{exerciseID}/submissions", h.history) // requires a session
}

func (h *SubmissionHandler) execute(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req service.QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.submissionService.Execute(r.Context(), id, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

func (h *SubmissionHandler) submit(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}
	var req service.QueryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	// Anonymous callers are graded too; their attempts are not recorded.
	userID := middleware.UserIDFromContext(r.Context())
	resp, err := h.submissionService.Submit(r.Context(), userID, id, req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

type unauthenticatedDebug struct {
	HasSessionCookie bool     `json:"has_session_cookie"`
	SessionKeys      []string `json:"session_keys"`
	SessionKey       *string  `json:"session_key"`
}

type unauthenticatedResponse struct {
	Error  string               `json:"error"`
	Detail string               `json:"detail"`
	Debug  unauthenticatedDebug `json:"debug"`
}

func (h *SubmissionHandler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r, "exerciseID")
	if !ok {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	if sess == nil || sess.UserID == 0 {
		debug := unauthenticatedDebug{
			HasSessionCookie: security.TokenFromSessionCookie(r) != "",
			SessionKeys:      sess.Keys(),
		}
		if sess != nil {
			debug.SessionKey = &sess.Key
		}
		common.RespondWithJSON(w, http.StatusUnauthorized, unauthenticatedResponse{
			Error:  "User not authenticated",
			Detail: "No user_id in session. Please login again.",
			Debug:  debug,
		})
		return
	}

	subs, err := h.submissionService.History(r.Context(), sess.UserID, id)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subs)
}
