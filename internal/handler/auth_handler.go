package handler

import (
	"net/http"

	"b2b-quote/internal/model"
	"b2b-quote/internal/response"
	"b2b-quote/internal/service"

	"github.com/rs/zerolog"
)

// AuthHandler handles account and token HTTP requests.
type AuthHandler struct {
	service service.AuthService
	logger  zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(service service.AuthService, logger zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger.With().Str("handler", "auth").Logger(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.RegisterRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusCreated, "Account created", user)
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	login, err := h.service.Login(r.Context(), &req)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "Logged in", login)
}

// Profile handles GET /api/auth/profile requests.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	user, err := h.service.Profile(r.Context(), p)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "", user)
}

// Validate handles GET /api/auth/validate requests. Reaching it means the token was accepted.
func (h *AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "Token is valid", p)
}

// Logout handles POST /api/auth/logout requests.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	p, err := principal(r)
	if err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	if err := h.service.Logout(r.Context(), p); err != nil {
		response.WriteError(w, r, err, h.logger)
		return
	}

	response.WriteSuccess(w, http.StatusOK, "Logged out", nil)
}
