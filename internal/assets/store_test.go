package assets_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"assetvault/internal/assets"
	"assetvault/internal/logging"
	"assetvault/internal/testsupport"
)

func ptr[T any](v T) *T { return &v }

func TestCreateAndGetAsset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	created, err := store.CreateAsset(ctx, assets.NewAsset{
		Path:       "spring-promo.png",
		MimeType:   "image/png",
		Size:       2048,
		Year:       ptr(int64(2023)),
		Advertiser: ptr("Acme"),
	})
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected id to be assigned")
	}
	if !created.IsMaster() || created.VersionNo != 1 {
		t.Fatalf("expected new asset to be a master v1, got %s", testsupport.Describe(created))
	}
	if created.Shares == nil || *created.Shares != 0 {
		t.Fatalf("expected shares to default to 0, got %v", created.Shares)
	}
	if created.Niche != nil {
		t.Fatalf("expected nil niche, got %q", *created.Niche)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}

	fetched, err := store.GetAsset(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if fetched.Path != "spring-promo.png" || fetched.Size != 2048 || *fetched.Advertiser != "Acme" || *fetched.Year != 2023 {
		t.Fatalf("unexpected asset: %+v", fetched)
	}
	if !fetched.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at drifted: %v vs %v", fetched.CreatedAt, created.CreatedAt)
	}

	byPath, err := store.GetAssetByPath(ctx, "spring-promo.png")
	if err != nil || byPath.ID != created.ID {
		t.Fatalf("GetAssetByPath = %v, %v", byPath, err)
	}
}

func TestCreateAssetValidation(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	tests := []struct {
		name string
		in   assets.NewAsset
		want error
	}{
		{"missing path", assets.NewAsset{MimeType: "image/png"}, assets.ErrInvalidInput},
		{"missing mime", assets.NewAsset{Path: "a.png"}, assets.ErrInvalidInput},
		{"negative size", assets.NewAsset{Path: "a.png", MimeType: "image/png", Size: -1}, assets.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.CreateAsset(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}

	testsupport.NewAsset(t, store, "dup.png")
	if _, err := store.CreateAsset(ctx, assets.NewAsset{Path: "dup.png", MimeType: "image/png"}); !errors.Is(err, assets.ErrConflict) {
		t.Fatalf("expected ErrConflict for duplicate path, got %v", err)
	}
}

func TestGetAssetNotFound(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	if _, err := store.GetAsset(context.Background(), 404); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAsset(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	asset, err := store.CreateAsset(ctx, assets.NewAsset{
		Path: "a.png", MimeType: "image/png", Niche: ptr("beauty"), Shares: ptr(int64(5)),
	})
	if err != nil {
		t.Fatalf("CreateAsset failed: %v", err)
	}

	updated, err := store.Update(ctx, asset.ID, assets.Patch{
		Year:  assets.Set(int64(2024)),
		Niche: assets.Clear[string](),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Year == nil || *updated.Year != 2024 {
		t.Fatalf("expected year 2024, got %v", updated.Year)
	}
	if updated.Niche != nil {
		t.Fatalf("expected niche cleared, got %q", *updated.Niche)
	}
	if updated.Shares == nil || *updated.Shares != 5 {
		t.Fatalf("expected untouched shares, got %v", updated.Shares)
	}
	if updated.Path != asset.Path || updated.MimeType != asset.MimeType {
		t.Fatalf("provenance changed: %+v", updated)
	}

	if _, err := store.Update(ctx, asset.ID, assets.Patch{}); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
	if _, err := store.Update(ctx, 999, assets.Patch{Year: assets.Set(int64(1))}); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAsset(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	group := testsupport.NewGroup(t, store, "master.png", 1)
	master, version := group[0], group[1]

	if _, err := store.Delete(ctx, master.ID); !errors.Is(err, assets.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState deleting a master with versions, got %v", err)
	}
	testsupport.MustGetAsset(t, store, master.ID)

	deleted, err := store.Delete(ctx, version.ID)
	if err != nil {
		t.Fatalf("Delete version failed: %v", err)
	}
	if deleted.ID != version.ID || deleted.Path != version.Path {
		t.Fatalf("unexpected deleted asset: %+v", deleted)
	}
	if _, err := store.Delete(ctx, master.ID); err != nil {
		t.Fatalf("Delete master failed: %v", err)
	}
	if _, err := store.GetAsset(ctx, master.ID); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected master gone, got %v", err)
	}
	if _, err := store.Delete(ctx, master.ID); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSetThumbnailPath(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	asset := testsupport.NewAsset(t, store, "a.png")

	if err := store.SetThumbnailPath(ctx, asset.ID, "/thumbs/1.jpg"); err != nil {
		t.Fatalf("SetThumbnailPath failed: %v", err)
	}
	got := testsupport.MustGetAsset(t, store, asset.ID)
	if got.ThumbnailPath == nil || *got.ThumbnailPath != "/thumbs/1.jpg" {
		t.Fatalf("unexpected thumbnail path: %v", got.ThumbnailPath)
	}

	if err := store.SetThumbnailPath(ctx, asset.ID, ""); err != nil {
		t.Fatalf("clear thumbnail failed: %v", err)
	}
	if got := testsupport.MustGetAsset(t, store, asset.ID); got.ThumbnailPath != nil {
		t.Fatalf("expected cleared thumbnail, got %q", *got.ThumbnailPath)
	}
	if err := store.SetThumbnailPath(ctx, 999, "x.jpg"); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestOpenRejectsSecondProcessLock(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	testsupport.MustOpenStore(t, cfg)

	if _, err := assets.Open(cfg, logging.NewNop()); !errors.Is(err, assets.ErrLibraryLocked) {
		t.Fatalf("expected ErrLibraryLocked, got %v", err)
	}
}

func TestOpenReleasesLockOnClose(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := assets.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	testsupport.NewAsset(t, store, "kept.png")
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := testsupport.MustOpenStore(t, cfg)
	if _, err := reopened.GetAssetByPath(context.Background(), "kept.png"); err != nil {
		t.Fatalf("expected data to persist across reopen: %v", err)
	}
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := assets.Open(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	store.Close()

	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := assets.Open(cfg, logging.NewNop()); !errors.Is(err, assets.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
