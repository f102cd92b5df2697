package api

import (
	"encoding/json"
	"net/http"

	"uservault/internal/domain"
	"uservault/pkg/logger"
)

type AuthHandler struct {
	service domain.AuthService
	logger  logger.Logger
}

func NewAuthHandler(service domain.AuthService, logger logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		logger:  logger,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "username, email and password are required"})
		return
	}

	result, err := h.service.Register(req)
	if err != nil {
		h.logger.Error("register failed", map[string]interface{}{"username": req.Username, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: result.Message})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: result.Message, Data: result})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	result, err := h.service.Login(req)
	if err != nil {
		h.logger.Error("login failed", map[string]interface{}{"username": req.Username, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	if !result.Success {
		writeJSON(w, http.StatusUnauthorized, Response{Success: false, Message: result.Message})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: result.Message, Data: result})
}

func (h *AuthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/register", h.Register)
	mux.HandleFunc("POST /api/auth/login", h.Login)
}
