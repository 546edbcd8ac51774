package assets_test

import (
	"context"
	"errors"
	"testing"

	"assetvault/internal/assets"
	"assetvault/internal/testsupport"
)

func TestBulkUpdatePartialFailure(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	a := testsupport.NewAsset(t, store, "a.png")
	b := testsupport.NewAsset(t, store, "b.png")
	untouched := testsupport.NewAsset(t, store, "c.png")

	result, err := store.BulkUpdate(ctx, []int64{a.ID, 999, b.ID}, assets.Patch{Year: assets.Set(int64(2024))})
	if err != nil {
		t.Fatalf("BulkUpdate failed: %v", err)
	}
	if result.UpdatedCount != 2 {
		t.Fatalf("expected 2 updated, got %d", result.UpdatedCount)
	}
	if len(result.Errors) != 1 || result.Errors[0].ID != 999 || result.Errors[0].Reason != "not found" {
		t.Fatalf("unexpected errors: %+v", result.Errors)
	}

	for _, id := range []int64{a.ID, b.ID} {
		got := testsupport.MustGetAsset(t, store, id)
		if got.Year == nil || *got.Year != 2024 {
			t.Fatalf("asset %d: expected year 2024, got %v", id, got.Year)
		}
	}
	if got := testsupport.MustGetAsset(t, store, untouched.ID); got.Year != nil {
		t.Fatalf("asset outside the id list changed: %v", *got.Year)
	}
}

func TestBulkUpdateSetsAndClearsFields(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	group := testsupport.NewGroup(t, store, "m.png", 1)
	ids := []int64{group[0].ID, group[1].ID}

	if _, err := store.BulkUpdate(ctx, ids, assets.Patch{
		Advertiser: assets.Set("Acme"),
		Niche:      assets.Set("travel"),
		Shares:     assets.Set(int64(3)),
	}); err != nil {
		t.Fatalf("BulkUpdate set failed: %v", err)
	}
	result, err := store.BulkUpdate(ctx, ids, assets.Patch{Niche: assets.Clear[string]()})
	if err != nil {
		t.Fatalf("BulkUpdate clear failed: %v", err)
	}
	if result.UpdatedCount != 2 || len(result.Errors) != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}

	for _, id := range ids {
		got := testsupport.MustGetAsset(t, store, id)
		if got.Niche != nil {
			t.Fatalf("asset %d: expected niche cleared, got %q", id, *got.Niche)
		}
		if got.Advertiser == nil || *got.Advertiser != "Acme" || *got.Shares != 3 {
			t.Fatalf("asset %d: unexpected metadata %+v", id, got)
		}
	}
	// Group structure is not part of the patch surface.
	if got := testsupport.MustGetAsset(t, store, group[1].ID); *got.MasterID != group[0].ID || got.VersionNo != 2 {
		t.Fatalf("group membership changed: %s", testsupport.Describe(got))
	}
}

func TestBulkUpdateDeduplicatesIDs(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	a := testsupport.NewAsset(t, store, "a.png")

	result, err := store.BulkUpdate(context.Background(), []int64{a.ID, a.ID, 7, 7}, assets.Patch{Shares: assets.Set(int64(1))})
	if err != nil {
		t.Fatalf("BulkUpdate failed: %v", err)
	}
	if result.UpdatedCount != 1 || len(result.Errors) != 1 {
		t.Fatalf("expected one update and one error, got %+v", result)
	}
}

func TestBulkUpdateRejectsEmptyInput(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	a := testsupport.NewAsset(t, store, "a.png")

	if _, err := store.BulkUpdate(ctx, nil, assets.Patch{Year: assets.Set(int64(1))}); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for no ids, got %v", err)
	}
	if _, err := store.BulkUpdate(ctx, []int64{a.ID}, assets.Patch{}); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty patch, got %v", err)
	}
}

func TestBulkUpdateCancelledContextReportsPerRow(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	a := testsupport.NewAsset(t, store, "a.png")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := store.BulkUpdate(ctx, []int64{a.ID}, assets.Patch{Year: assets.Set(int64(1))})
	if err != nil {
		t.Fatalf("BulkUpdate failed: %v", err)
	}
	if result.UpdatedCount != 0 || len(result.Errors) != 1 || result.Errors[0].ID != a.ID {
		t.Fatalf("expected the row to be reported, got %+v", result)
	}
}
