package testsupport

import (
	"testing"

	"romdex/internal/config"
	"romdex/internal/romstore"
)

// MustOpenStore opens a romstore.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *romstore.Store {
	t.Helper()

	store, err := romstore.Open(cfg)
	if err != nil {
		t.Fatalf("romstore.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
