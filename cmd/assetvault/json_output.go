package main

import (
	"encoding/json"
	"time"

	"github.com/spf13/cobra"

	"assetvault/internal/assets"
)

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type assetJSON struct {
	ID            int64     `json:"id"`
	Path          string    `json:"path"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size"`
	CreatedAt     time.Time `json:"createdAt"`
	Year          *int64    `json:"year"`
	Advertiser    *string   `json:"advertiser"`
	Niche         *string   `json:"niche"`
	Shares        *int64    `json:"shares"`
	MasterID      *int64    `json:"masterId"`
	VersionNo     int64     `json:"versionNo"`
	ThumbnailPath *string   `json:"thumbnailPath"`
}

func toAssetJSON(a *assets.Asset) assetJSON {
	return assetJSON{
		ID:            a.ID,
		Path:          a.Path,
		MimeType:      a.MimeType,
		Size:          a.Size,
		CreatedAt:     a.CreatedAt,
		Year:          a.Year,
		Advertiser:    a.Advertiser,
		Niche:         a.Niche,
		Shares:        a.Shares,
		MasterID:      a.MasterID,
		VersionNo:     a.VersionNo,
		ThumbnailPath: a.ThumbnailPath,
	}
}

func toAssetsJSON(list []*assets.Asset) []assetJSON {
	out := make([]assetJSON, 0, len(list))
	for _, a := range list {
		out = append(out, toAssetJSON(a))
	}
	return out
}

type versionRefJSON struct {
	ID        int64  `json:"id"`
	VersionNo int64  `json:"versionNo"`
	Path      string `json:"path"`
}

func toVersionRefJSON(ref *assets.VersionRef) versionRefJSON {
	return versionRefJSON{ID: ref.ID, VersionNo: ref.VersionNo, Path: ref.Path}
}

type bulkErrorJSON struct {
	ID     int64  `json:"id"`
	Reason string `json:"reason"`
}

type bulkResultJSON struct {
	UpdatedCount int             `json:"updatedCount"`
	Errors       []bulkErrorJSON `json:"errors"`
}

func toBulkResultJSON(r assets.BulkResult) bulkResultJSON {
	out := bulkResultJSON{UpdatedCount: r.UpdatedCount, Errors: make([]bulkErrorJSON, 0, len(r.Errors))}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, bulkErrorJSON{ID: e.ID, Reason: e.Reason})
	}
	return out
}

type customValueJSON struct {
	FieldID   int64   `json:"fieldId"`
	FieldName string  `json:"fieldName"`
	FieldType string  `json:"fieldType"`
	Value     *string `json:"value"`
}

type customFieldJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func toCustomFieldJSON(f assets.CustomField) customFieldJSON {
	return customFieldJSON{ID: f.ID, Name: f.Name, Type: string(f.Type)}
}
