package history

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("NewStore() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		if err := store.Append(ctx, "user-1", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("Append() failed: %v", err)
		}
	}

	records, err := store.Recent(ctx, "user-1", 3)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(records))
	}

	// Newest first
	want := []string{"q5", "q4", "q3"}
	for i, r := range records {
		if r.Question != want[i] {
			t.Errorf("Record %d: expected question %q, got %q", i, want[i], r.Question)
		}
	}
}

func TestStore_RecentIsolatesUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "user-1", "q-alpha", "a-alpha")
	store.Append(ctx, "user-2", "q-beta", "a-beta")

	records, err := store.Recent(ctx, "user-1", 10)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected 1 record for user-1, got %d", len(records))
	}
	if records[0].Question != "q-alpha" {
		t.Errorf("Expected q-alpha, got %q", records[0].Question)
	}
}

func TestStore_RecentEmpty(t *testing.T) {
	store := newTestStore(t)

	records, err := store.Recent(context.Background(), "nobody", 3)
	if err != nil {
		t.Fatalf("Recent() failed: %v", err)
	}

	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.Append(ctx, "user-1", "q1", "a1")
	store.Append(ctx, "user-1", "q2", "a2")
	store.Append(ctx, "user-2", "q3", "a3")

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}

	if stats.TotalQuestions != 3 {
		t.Errorf("Expected 3 total questions, got %d", stats.TotalQuestions)
	}
	if stats.TotalUsers != 2 {
		t.Errorf("Expected 2 users, got %d", stats.TotalUsers)
	}
}

func TestStore_Ping(t *testing.T) {
	store := newTestStore(t)

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping() failed: %v", err)
	}
}
