package assets_test

import (
	"context"
	"errors"
	"testing"

	"assetvault/internal/assets"
	"assetvault/internal/testsupport"
)

type seedAsset struct {
	path       string
	year       int64
	advertiser string
	niche      string
	shares     int64
}

func seedLibrary(t *testing.T, store *assets.Store) map[string]int64 {
	t.Helper()
	seeds := []seedAsset{
		{"a.png", 2022, "Acme Corp", "fitness", 10},
		{"b.png", 2023, "Globex", "travel", 50},
		{"c.png", 2023, "Acme Corp", "travel", 5},
		{"d.png", 2024, "Initech", "finance", 100},
	}
	ids := make(map[string]int64, len(seeds))
	for _, s := range seeds {
		asset, err := store.CreateAsset(context.Background(), assets.NewAsset{
			Path: s.path, MimeType: "image/png", Size: 1,
			Year: ptr(s.year), Advertiser: ptr(s.advertiser), Niche: ptr(s.niche), Shares: ptr(s.shares),
		})
		if err != nil {
			t.Fatalf("CreateAsset(%s) failed: %v", s.path, err)
		}
		ids[s.path] = asset.ID
	}
	return ids
}

func listPaths(t *testing.T, store *assets.Store, filter assets.Filter) []string {
	t.Helper()
	list, err := store.List(context.Background(), filter)
	if err != nil {
		t.Fatalf("List(%+v) failed: %v", filter, err)
	}
	out := make([]string, len(list))
	for i, a := range list {
		out[i] = a.Path
	}
	return out
}

func equalPaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestListFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	seedLibrary(t, store)

	tests := []struct {
		name   string
		filter assets.Filter
		want   []string
	}{
		{"default newest first", assets.Filter{}, []string{"d.png", "c.png", "b.png", "a.png"}},
		{"year", assets.Filter{Year: ptr(int64(2023)), SortOrder: assets.OrderAsc}, []string{"b.png", "c.png"}},
		{"advertiser exact", assets.Filter{Advertiser: "Acme Corp", SortOrder: assets.OrderAsc}, []string{"a.png", "c.png"}},
		{"niche", assets.Filter{Niche: "travel", SortBy: assets.SortShares}, []string{"b.png", "c.png"}},
		{"shares range", assets.Filter{SharesMin: ptr(int64(10)), SharesMax: ptr(int64(50)), SortBy: assets.SortShares, SortOrder: assets.OrderAsc}, []string{"a.png", "b.png"}},
		{"sort advertiser", assets.Filter{SortBy: assets.SortAdvertiser, SortOrder: assets.OrderAsc}, []string{"a.png", "c.png", "b.png", "d.png"}},
		{"limit offset", assets.Filter{SortBy: assets.SortShares, Limit: 2, Offset: 1}, []string{"b.png", "a.png"}},
		{"search prefix", assets.Filter{Search: "glob", SortOrder: assets.OrderAsc}, []string{"b.png"}},
		{"search two tokens", assets.Filter{Search: "acme trav", SortOrder: assets.OrderAsc}, []string{"c.png"}},
		{"search punctuation", assets.Filter{Search: `"init`}, []string{"d.png"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := listPaths(t, store, tt.filter)
			if !equalPaths(got, tt.want) {
				t.Fatalf("got %v want %v", got, tt.want)
			}
		})
	}
}

func TestListGroupAndThumbnailFilters(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	group := testsupport.NewGroup(t, store, "m.png", 2)
	if err := store.SetThumbnailPath(ctx, group[0].ID, "1.jpg"); err != nil {
		t.Fatalf("SetThumbnailPath failed: %v", err)
	}

	if got := listPaths(t, store, assets.Filter{MastersOnly: true}); !equalPaths(got, []string{"m.png"}) {
		t.Fatalf("masters only: %v", got)
	}
	got := listPaths(t, store, assets.Filter{MissingThumbnail: true, SortBy: assets.SortVersionNo, SortOrder: assets.OrderAsc})
	if !equalPaths(got, []string{"m_v2.png", "m_v3.png"}) {
		t.Fatalf("missing thumbnail: %v", got)
	}
}

func TestListSearchFollowsUpdatesAndDeletes(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()
	ids := seedLibrary(t, store)

	if _, err := store.Update(ctx, ids["b.png"], assets.Patch{Advertiser: assets.Set("Umbrella")}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if got := listPaths(t, store, assets.Filter{Search: "globex"}); len(got) != 0 {
		t.Fatalf("expected stale advertiser gone from index, got %v", got)
	}
	if got := listPaths(t, store, assets.Filter{Search: "umbrella"}); !equalPaths(got, []string{"b.png"}) {
		t.Fatalf("expected new advertiser indexed, got %v", got)
	}

	if _, err := store.Delete(ctx, ids["d.png"]); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if got := listPaths(t, store, assets.Filter{Search: "initech"}); len(got) != 0 {
		t.Fatalf("expected deleted asset gone from index, got %v", got)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	ctx := context.Background()

	if _, err := store.List(ctx, assets.Filter{SortBy: "path; DROP TABLE assets"}); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown sort, got %v", err)
	}
	if _, err := store.List(ctx, assets.Filter{SortOrder: "sideways"}); !errors.Is(err, assets.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown order, got %v", err)
	}
}

func TestParseSortField(t *testing.T) {
	tests := map[string]assets.SortField{
		"":           assets.SortCreatedAt,
		"createdAt":  assets.SortCreatedAt,
		"created_at": assets.SortCreatedAt,
		"SHARES":     assets.SortShares,
		"version_no": assets.SortVersionNo,
	}
	for in, want := range tests {
		got, ok := assets.ParseSortField(in)
		if !ok || got != want {
			t.Fatalf("ParseSortField(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := assets.ParseSortField("path"); ok {
		t.Fatal("expected path to be rejected")
	}
	if order, ok := assets.ParseSortOrder("ASC"); !ok || order != assets.OrderAsc {
		t.Fatalf("ParseSortOrder(ASC) = %q, %v", order, ok)
	}
}
