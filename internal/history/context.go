package history

import (
	"context"
	"fmt"
	"strings"
)

// RecentReader is the slice of the store the assembler needs
type RecentReader interface {
	Recent(ctx context.Context, userID string, limit int) ([]Record, error)
}

// ContextAssembler renders a user's recent Q&A history into the context
// string handed to the orchestrator. It reads the store on every call; no
// caching, so two calls without intervening writes return identical text.
type ContextAssembler struct {
	store RecentReader
	size  int
}

// NewContextAssembler creates an assembler reading up to size recent
// records per call
func NewContextAssembler(store RecentReader, size int) *ContextAssembler {
	return &ContextAssembler{store: store, size: size}
}

// Assemble returns the context string for a user: each recent record as a
// "Q: ...\nA: ..." block, joined by newlines. The store returns records
// newest first; they are rendered oldest first so the reasoning model reads
// the conversation chronologically. Returns "" for a user with no history.
func (a *ContextAssembler) Assemble(ctx context.Context, userID string) (string, error) {
	if a.size <= 0 {
		return "", nil
	}

	records, err := a.store.Recent(ctx, userID, a.size)
	if err != nil {
		return "", fmt.Errorf("failed to read recent history: %w", err)
	}
	if len(records) == 0 {
		return "", nil
	}

	lines := make([]string, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		lines = append(lines, fmt.Sprintf("Q: %s\nA: %s", records[i].Question, records[i].Answer))
	}
	return strings.Join(lines, "\n"), nil
}
