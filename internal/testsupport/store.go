package testsupport

import (
	"testing"

	"clipvault/internal/config"
	"clipvault/internal/library"
)

// MustOpenLibrary opens the library store for a test config and registers
// cleanup.
func MustOpenLibrary(t testing.TB, cfg *config.Config) *library.Store {
	t.Helper()

	store, err := library.Open(cfg)
	if err != nil {
		t.Fatalf("open library store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
