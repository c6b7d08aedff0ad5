package testsupport

import (
	"context"
	"testing"

	"bget/internal/config"
	"bget/internal/history"
)

// MustOpenHistory opens the history store at cfg's path and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(context.Background(), cfg.Paths.HistoryPath)
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
