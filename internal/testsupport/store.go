package testsupport

import (
	"context"
	"testing"

	"sitephoto/internal/annotation"
	"sitephoto/internal/config"
	"sitephoto/internal/photostore"
)

// MustOpenStore opens the photo store for folder and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, folder string) *photostore.Store {
	t.Helper()

	store, err := photostore.Open(cfg, folder)
	if err != nil {
		t.Fatalf("photostore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustImport stores photos and fails the test on error.
func MustImport(t testing.TB, store *photostore.Store, photos ...annotation.Photo) {
	t.Helper()

	if _, err := store.UpsertPhotos(context.Background(), photos); err != nil {
		t.Fatalf("UpsertPhotos: %v", err)
	}
}
