package assets

import (
	"database/sql"
	"strings"
	"time"
)

const assetColumns = "id, path, mime_type, size, created_at, year, advertiser, niche, shares, master_id, version_no, thumbnail_path"

// timeLayout is fixed width so created_at sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func scanAsset(scanner interface{ Scan(dest ...any) error }) (*Asset, error) {
	var (
		a          Asset
		createdRaw string
		year       sql.NullInt64
		advertiser sql.NullString
		niche      sql.NullString
		shares     sql.NullInt64
		masterID   sql.NullInt64
		thumbnail  sql.NullString
	)
	if err := scanner.Scan(
		&a.ID,
		&a.Path,
		&a.MimeType,
		&a.Size,
		&createdRaw,
		&year,
		&advertiser,
		&niche,
		&shares,
		&masterID,
		&a.VersionNo,
		&thumbnail,
	); err != nil {
		return nil, err
	}

	if created, err := parseTimeString(createdRaw); err == nil {
		a.CreatedAt = created
	}
	a.Year = int64Ptr(year)
	a.Advertiser = stringPtr(advertiser)
	a.Niche = stringPtr(niche)
	a.Shares = int64Ptr(shares)
	a.MasterID = int64Ptr(masterID)
	a.ThumbnailPath = stringPtr(thumbnail)
	return &a, nil
}

func int64Ptr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullableString(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

// nowUTC is the clock used for created_at.
var nowUTC = func() time.Time { return time.Now().UTC() }

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(timeLayout, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339Nano, value)
}

func makePlaceholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
