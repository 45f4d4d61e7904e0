package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/prn-tf/shopcore/internal/repository"
)

// HealthHandler reports service liveness and database reachability.
type HealthHandler struct {
	db     repository.DatabaseHealth
	logger zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db repository.DatabaseHealth, logger zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:     db,
		logger: logger.With().Str("handler", "health").Logger(),
	}
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Error().Err(err).Msg("database ping failed")
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
