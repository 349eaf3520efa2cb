// Package api exposes the question intake and history read surfaces over
// HTTP+JSON. Handlers translate orchestrator and store errors into the
// client-facing taxonomy; raw third-party errors never reach a response.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/examobuddy/answer-service/internal/auth"
	"github.com/examobuddy/answer-service/internal/observability"
	"github.com/examobuddy/answer-service/internal/orchestrator"
)

// Answerer is the orchestrator surface the intake handler consumes
type Answerer interface {
	Answer(ctx context.Context, question, contextString string) (string, error)
}

// ContextSource builds the conversation context for a user
type ContextSource interface {
	Assemble(ctx context.Context, userID string) (string, error)
}

// Recorder persists answered questions
type Recorder interface {
	Append(ctx context.Context, userID, question, answer string) error
}

// QuestionRequest is the intake payload
type QuestionRequest struct {
	Question string `json:"question"`
}

// AnswerResponse is the intake response payload
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// ErrorResponse is the uniform error payload
type ErrorResponse struct {
	Error string `json:"error"`
}

// QAHandler handles POST /api/qa/ask
type QAHandler struct {
	answerer Answerer
	contexts ContextSource
	recorder Recorder
}

// NewQAHandler creates the intake handler
func NewQAHandler(answerer Answerer, contexts ContextSource, recorder Recorder) *QAHandler {
	return &QAHandler{
		answerer: answerer,
		contexts: contexts,
		recorder: recorder,
	}
}

// ServeHTTP implements http.Handler
func (h *QAHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	userID, ok := auth.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	logger := observability.WithCorrelationID("").With().Str("user_id", userID).Logger()

	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	contextString, err := h.contexts.Assemble(r.Context(), userID)
	if err != nil {
		// Answer without conversation context rather than failing the
		// question outright.
		logger.Warn().Err(err).Msg("Failed to assemble conversation context")
		observability.RecordError("context_assembly", "api")
		contextString = ""
	}

	answer, err := h.answerer.Answer(r.Context(), req.Question, contextString)
	if err != nil {
		switch {
		case errors.Is(err, orchestrator.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "question must not be empty")
		case errors.Is(err, context.Canceled):
			// Client went away; nothing useful to write.
			logger.Debug().Msg("Request cancelled by client")
		default:
			logger.Error().Err(err).Msg("Failed to produce an answer")
			writeError(w, http.StatusServiceUnavailable, "could not produce an answer")
		}
		return
	}

	// A cancelled run persists nothing.
	if err := h.recorder.Append(r.Context(), userID, req.Question, answer); err != nil {
		logger.Error().Err(err).Msg("Failed to persist answered question")
		observability.RecordError("history_append", "api")
	}

	writeJSON(w, http.StatusOK, AnswerResponse{Answer: answer})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
