package assets

import "time"

// Asset is a single library record. Masters carry a nil MasterID and
// VersionNo 1; versions point MasterID at their group root.
type Asset struct {
	ID            int64
	Path          string
	MimeType      string
	Size          int64
	CreatedAt     time.Time
	Year          *int64
	Advertiser    *string
	Niche         *string
	Shares        *int64
	MasterID      *int64
	VersionNo     int64
	ThumbnailPath *string
}

// IsMaster reports whether the asset is a group root.
func (a Asset) IsMaster() bool {
	return a.MasterID == nil
}

// GroupRoot returns the id of the master this asset belongs to, which is its
// own id for masters.
func (a Asset) GroupRoot() int64 {
	if a.MasterID != nil {
		return *a.MasterID
	}
	return a.ID
}

// NewAsset is the payload for CreateAsset.
type NewAsset struct {
	Path       string
	MimeType   string
	Size       int64
	Year       *int64
	Advertiser *string
	Niche      *string
	Shares     *int64
}

// VersionRef identifies a freshly created or attached group member.
type VersionRef struct {
	ID        int64
	VersionNo int64
	Path      string
}

// BulkError records why a single id in a bulk update was not applied.
type BulkError struct {
	ID     int64
	Reason string
}

// BulkResult is the outcome of BulkUpdate. A non-empty Errors slice is a
// partial failure; applied rows stay applied.
type BulkResult struct {
	UpdatedCount int
	Errors       []BulkError
}

// FieldType enumerates the value kinds a custom field can hold.
type FieldType string

const (
	FieldText    FieldType = "text"
	FieldNumber  FieldType = "number"
	FieldDate    FieldType = "date"
	FieldBoolean FieldType = "boolean"
)

// ParseFieldType converts a string into a known FieldType.
func ParseFieldType(value string) (FieldType, bool) {
	switch t := FieldType(value); t {
	case FieldText, FieldNumber, FieldDate, FieldBoolean:
		return t, true
	default:
		return "", false
	}
}

// CustomField is a user-defined metadata column.
type CustomField struct {
	ID   int64
	Name string
	Type FieldType
}

// CustomValue is one asset's value for a custom field.
type CustomValue struct {
	FieldID   int64
	FieldName string
	FieldType FieldType
	Value     *string
}

// Stats summarizes library contents.
type Stats struct {
	Assets        int
	Masters       int
	Versions      int
	Groups        int
	WithThumbnail int
	TotalBytes    int64
}

// GroupViolation describes one row that breaks the flat group rules.
type GroupViolation struct {
	AssetID int64
	Problem string
}

// DatabaseHealth captures diagnostic information about the library database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalAssets      int
	Error            string
}
