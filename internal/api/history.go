package api

import (
	"context"
	"net/http"

	"github.com/examobuddy/answer-service/internal/auth"
	"github.com/examobuddy/answer-service/internal/history"
	"github.com/examobuddy/answer-service/internal/observability"
)

const historyPageSize = 50

// HistoryReader lists a user's answered questions
type HistoryReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]history.Record, error)
}

// HistoryHandler handles GET /api/history
type HistoryHandler struct {
	reader HistoryReader
}

// NewHistoryHandler creates the history listing handler
func NewHistoryHandler(reader HistoryReader) *HistoryHandler {
	return &HistoryHandler{reader: reader}
}

// ServeHTTP implements http.Handler
func (h *HistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	records, err := h.reader.Recent(r.Context(), userID, historyPageSize)
	if err != nil {
		logger := observability.GetLogger()
		logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list history")
		writeError(w, http.StatusInternalServerError, "could not load history")
		return
	}

	if records == nil {
		records = []history.Record{}
	}
	writeJSON(w, http.StatusOK, records)
}
