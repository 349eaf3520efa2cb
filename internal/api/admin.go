package api

import (
	"context"
	"net/http"

	"github.com/examobuddy/answer-service/internal/history"
	"github.com/examobuddy/answer-service/internal/observability"
)

// StatsReader exposes the admin counters
type StatsReader interface {
	Stats(ctx context.Context) (*history.Stats, error)
}

// AdminHandler handles GET /api/admin/stats
type AdminHandler struct {
	reader StatsReader
}

// NewAdminHandler creates the admin counters handler
func NewAdminHandler(reader StatsReader) *AdminHandler {
	return &AdminHandler{reader: reader}
}

// ServeHTTP implements http.Handler
func (h *AdminHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	stats, err := h.reader.Stats(r.Context())
	if err != nil {
		logger := observability.GetLogger()
		logger.Error().Err(err).Msg("Failed to load admin stats")
		writeError(w, http.StatusInternalServerError, "could not load stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
