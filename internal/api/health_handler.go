package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"uservault/pkg/cache"
	"uservault/pkg/logger"
)

type HealthHandler struct {
	db     *sql.DB
	cache  cache.Cache
	logger logger.Logger
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Services  map[string]string `json:"services"`
}

func NewHealthHandler(db *sql.DB, cacheInstance cache.Cache, logger logger.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		cache:  cacheInstance,
		logger: logger,
	}
}

func (h *HealthHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	services := map[string]string{
		"database": "healthy",
		"cache":    "healthy",
	}
	status := "healthy"

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Error("database health check failed", map[string]interface{}{"error": err.Error()})
		services["database"] = "unhealthy"
		status = "degraded"
	}

	// The service survives a dead cache (reads fall back to the store), so a
	// cache failure degrades health instead of failing it.
	if err := h.cache.Ping(ctx); err != nil {
		h.logger.Error("cache health check failed", map[string]interface{}{"error": err.Error()})
		services["cache"] = "unhealthy"
		if status == "healthy" {
			status = "degraded"
		}
	}

	response := HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Services:  services,
	}

	w.Header().Set("Content-Type", "application/json")
	if services["database"] == "unhealthy" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	json.NewEncoder(w).Encode(response)
}

func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.HealthCheck)
}
