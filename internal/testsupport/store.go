package testsupport

import (
	"testing"

	"buildmsa/internal/manifest"
)

// MustOpenManifest opens the manifest in dir for tests and registers cleanup.
func MustOpenManifest(t testing.TB, dir string) *manifest.Store {
	t.Helper()

	store, err := manifest.OpenDir(dir)
	if err != nil {
		t.Fatalf("manifest.OpenDir: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
