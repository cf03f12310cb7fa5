package testsupport

import (
	"testing"

	"matchvault/internal/config"
	"matchvault/internal/jobqueue"
)

// MustOpenStore opens a jobqueue store for the given config, failing the test
// on error and closing the store during cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, opts ...jobqueue.Option) *jobqueue.Store {
	t.Helper()

	store, err := jobqueue.Open(cfg, opts...)
	if err != nil {
		t.Fatalf("open jobqueue store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
