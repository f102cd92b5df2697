package api

import (
	"encoding/json"
	"net/http"
	"time"

	"uservault/internal/domain"
	"uservault/pkg/logger"
)

type UserHandler struct {
	service domain.UserService
	logger  logger.Logger
}

func NewUserHandler(service domain.UserService, logger logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		logger:  logger,
	}
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	filter := domain.UserFilter{Name: r.URL.Query().Get("name")}

	fromDate, ok := parseDateParam(w, r, "fromDate")
	if !ok {
		return
	}
	toDate, ok := parseDateParam(w, r, "toDate")
	if !ok {
		return
	}
	filter.FromDate = fromDate
	filter.ToDate = toDate

	users, err := h.service.ListUsers(filter)
	if err != nil {
		h.logger.Error("list users failed", map[string]interface{}{"error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: users})
}

func (h *UserHandler) GetUserByID(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.service.GetUserByID(id)
	if err != nil {
		h.logger.Error("get user failed", map[string]interface{}{"id": id, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

func (h *UserHandler) GetUserByIDCached(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.service.GetUserByIDCached(id)
	if err != nil {
		h.logger.Error("cached get user failed", map[string]interface{}{"id": id, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: user})
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid request body"})
		return
	}

	user, err := h.service.UpdateUser(id, req)
	if err != nil {
		h.logger.Error("update user failed", map[string]interface{}{"id": id, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "User updated successfully", Data: user})
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.service.DeleteUser(id); err != nil {
		h.logger.Error("delete user failed", map[string]interface{}{"id": id, "error": err.Error()})
		status, msg := statusFor(err)
		writeJSON(w, status, Response{Success: false, Message: msg})
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Message: "User deleted successfully"})
}

// RegisterRoutes mounts the user routes behind the supplied middleware
// (token authentication in production wiring).
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, guard func(http.Handler) http.Handler) {
	if guard == nil {
		guard = func(next http.Handler) http.Handler { return next }
	}

	mux.Handle("GET /api/users", guard(http.HandlerFunc(h.ListUsers)))
	mux.Handle("GET /api/users/{id}", guard(http.HandlerFunc(h.GetUserByID)))
	mux.Handle("GET /api/users/{id}/cached", guard(http.HandlerFunc(h.GetUserByIDCached)))
	mux.Handle("PUT /api/users/{id}", guard(http.HandlerFunc(h.UpdateUser)))
	mux.Handle("DELETE /api/users/{id}", guard(http.HandlerFunc(h.DeleteUser)))
}

func parseDateParam(w http.ResponseWriter, r *http.Request, name string) (*time.Time, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}

	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, true
		}
	}

	writeJSON(w, http.StatusBadRequest, Response{Success: false, Message: "Invalid " + name + " format, expected YYYY-MM-DD"})
	return nil, false
}
