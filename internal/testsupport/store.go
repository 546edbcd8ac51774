package testsupport

import (
	"context"
	"fmt"
	"testing"

	"assetvault/internal/assets"
	"assetvault/internal/config"
	"assetvault/internal/logging"
)

// MustOpenStore opens an assets.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *assets.Store {
	t.Helper()

	store, err := assets.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("assets.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewAsset creates a master with the given path and a PNG MIME type.
func NewAsset(t testing.TB, store *assets.Store, path string) *assets.Asset {
	t.Helper()

	asset, err := store.CreateAsset(context.Background(), assets.NewAsset{
		Path:     path,
		MimeType: "image/png",
		Size:     1024,
	})
	if err != nil {
		t.Fatalf("store.CreateAsset(%q): %v", path, err)
	}
	return asset
}

// NewGroup creates a master at path plus n versions and returns the master
// followed by the versions in creation order.
func NewGroup(t testing.TB, store *assets.Store, path string, n int) []*assets.Asset {
	t.Helper()

	master := NewAsset(t, store, path)
	out := []*assets.Asset{master}
	for i := 0; i < n; i++ {
		ref, err := store.CreateVersion(context.Background(), master.ID)
		if err != nil {
			t.Fatalf("store.CreateVersion(%d) #%d: %v", master.ID, i+1, err)
		}
		out = append(out, MustGetAsset(t, store, ref.ID))
	}
	return out
}

// MustGetAsset loads an asset or fails the test.
func MustGetAsset(t testing.TB, store *assets.Store, id int64) *assets.Asset {
	t.Helper()

	asset, err := store.GetAsset(context.Background(), id)
	if err != nil {
		t.Fatalf("store.GetAsset(%d): %v", id, err)
	}
	return asset
}

// Describe renders an asset's group position as "id:master:version" for
// compact assertions. Masters render their master as "-".
func Describe(a *assets.Asset) string {
	master := "-"
	if a.MasterID != nil {
		master = fmt.Sprint(*a.MasterID)
	}
	return fmt.Sprintf("%d:%s:%d", a.ID, master, a.VersionNo)
}
