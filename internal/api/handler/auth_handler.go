package handler

import (
	"net/http"

	"chatsql_backend/internal/api/middleware"
	"chatsql_backend/internal/app/service"
	"chatsql_backend/internal/common"

	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	cookie      middleware.SessionCookie
}

func NewAuthHandler(authService *service.AuthService, cookie middleware.SessionCookie) *AuthHandler {
	return &AuthHandler{authService: authService, cookie: cookie}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/signup", h.signup)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
	r.Get("/profile", h.profile)
}

func (h *AuthHandler) signup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	h.cookie.Set(w, resp.Token)
	common.RespondWithJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	h.cookie.Set(w, resp.Token)
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.authService.Logout(r.Context(), middleware.SessionFromContext(r.Context())); err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	h.cookie.Clear(w)
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	resp, err := h.authService.Me(r.Context(), sess)
	if err != nil {
		common.RespondWithServiceError(w, err)
		return
	}
	if sess != nil && !resp.Authenticated {
		h.cookie.Clear(w)
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) profile(w http.ResponseWriter, r *http.Request) {
	resp, err := h.authService.Profile(r.Context(), middleware.SessionFromContext(r.Context()))
	if err != nil {
		if common.HTTPStatusFromError(err) == http.StatusNotFound {
			h.cookie.Clear(w)
		}
		common.RespondWithServiceError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}
