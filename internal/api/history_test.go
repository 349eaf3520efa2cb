package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/examobuddy/answer-service/internal/auth"
	"github.com/examobuddy/answer-service/internal/history"
)

type stubHistoryReader struct {
	records []history.Record
	err     error
}

func (s *stubHistoryReader) Recent(ctx context.Context, userID string, limit int) ([]history.Record, error) {
	return s.records, s.err
}

type stubStatsReader struct {
	stats *history.Stats
	err   error
}

func (s *stubStatsReader) Stats(ctx context.Context) (*history.Stats, error) {
	return s.stats, s.err
}

func authedGet(path string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	return req.WithContext(auth.WithUserID(req.Context(), "user-1"))
}

func TestHistoryHandler_List(t *testing.T) {
	reader := &stubHistoryReader{records: []history.Record{
		{ID: 2, UserID: "user-1", Question: "q2", Answer: "a2"},
		{ID: 1, UserID: "user-1", Question: "q1", Answer: "a1"},
	}}
	handler := NewHistoryHandler(reader)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedGet("/api/history"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var records []history.Record
	if err := json.NewDecoder(rec.Body).Decode(&records); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[0].Question != "q2" {
		t.Errorf("Expected newest first, got %q", records[0].Question)
	}
}

func TestHistoryHandler_EmptyIsArray(t *testing.T) {
	handler := NewHistoryHandler(&stubHistoryReader{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedGet("/api/history"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body != "[]\n" {
		t.Errorf("Expected empty JSON array, got %q", body)
	}
}

func TestHistoryHandler_StoreError(t *testing.T) {
	handler := NewHistoryHandler(&stubHistoryReader{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedGet("/api/history"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}

func TestHistoryHandler_Unauthenticated(t *testing.T) {
	handler := NewHistoryHandler(&stubHistoryReader{})

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", rec.Code)
	}
}

func TestAdminHandler_Stats(t *testing.T) {
	handler := NewAdminHandler(&stubStatsReader{stats: &history.Stats{TotalQuestions: 12, TotalUsers: 4}})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedGet("/api/admin/stats"))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var stats history.Stats
	if err := json.NewDecoder(rec.Body).Decode(&stats); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if stats.TotalQuestions != 12 || stats.TotalUsers != 4 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
}

func TestAdminHandler_StoreError(t *testing.T) {
	handler := NewAdminHandler(&stubStatsReader{err: errors.New("db down")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedGet("/api/admin/stats"))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", rec.Code)
	}
}
