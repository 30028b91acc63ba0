package testutil

import (
	"path/filepath"
	"testing"

	"github.com/courtmix/courtmix/internal/store"
)

// NewTestStore creates a temporary SQLite document store with
// migrations applied.
func NewTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(path)
	if err != nil {
		t.Fatalf("create test store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	return st
}
