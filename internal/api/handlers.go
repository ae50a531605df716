package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/matrix"
	"github.com/ignite/value-matrix/internal/store"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	store  store.Store
	engine *matrix.Engine
	config *config.Config
}

// NewHandlers creates a new Handlers instance
func NewHandlers(st store.Store, engine *matrix.Engine, cfg *config.Config) *Handlers {
	return &Handlers{
		store:  st,
		engine: engine,
		config: cfg,
	}
}

// HealthCheck reports liveness and store reachability
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	storeStatus := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
		storeStatus = err.Error()
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now(),
		"store":     storeStatus,
	})
}

// GetTiers returns the engagement tier enumeration
// GET /api/tiers
func (h *Handlers) GetTiers(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"tiers":     matrix.Tiers(),
		"max_stage": matrix.MaxStage(),
	})
}

// loadSession fetches the session named by the URL and writes the error
// response itself when that fails.
func (h *Handlers) loadSession(w http.ResponseWriter, r *http.Request) (*store.Session, bool) {
	id := chi.URLParam(r, "id")
	session, err := h.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			respondError(w, http.StatusNotFound, "dataset not found")
		} else {
			respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to load dataset: %v", err))
		}
		return nil, false
	}
	return session, true
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
