package assets

import (
	"fmt"
	"strings"
)

// SortField is the closed set of columns List can order by.
type SortField string

const (
	SortCreatedAt  SortField = "createdAt"
	SortYear       SortField = "year"
	SortAdvertiser SortField = "advertiser"
	SortNiche      SortField = "niche"
	SortShares     SortField = "shares"
	SortVersionNo  SortField = "versionNo"
)

var sortColumns = map[SortField]string{
	SortCreatedAt:  "created_at",
	SortYear:       "year",
	SortAdvertiser: "advertiser",
	SortNiche:      "niche",
	SortShares:     "shares",
	SortVersionNo:  "version_no",
}

// SortOrder is ascending or descending.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Filter narrows and orders List results. Zero values mean "no constraint";
// an empty SortBy sorts by creation time, newest first.
type Filter struct {
	Year             *int64
	Advertiser       string
	Niche            string
	SharesMin        *int64
	SharesMax        *int64
	Search           string
	MastersOnly      bool
	MissingThumbnail bool
	SortBy           SortField
	SortOrder        SortOrder
	Limit            int
	Offset           int
}

// ParseSortField converts user input into a SortField. Matching ignores case
// and accepts the snake_case column spelling.
func ParseSortField(value string) (SortField, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return SortCreatedAt, true
	}
	for field, column := range sortColumns {
		if strings.EqualFold(v, string(field)) || strings.EqualFold(v, column) {
			return field, true
		}
	}
	return "", false
}

// ParseSortOrder converts user input into a SortOrder.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "desc":
		return OrderDesc, true
	case "asc":
		return OrderAsc, true
	default:
		return "", false
	}
}

// build translates the filter into a WHERE clause, ORDER BY clause, and
// arguments. Column names come from sortColumns only.
func (f Filter) build() (string, []any, error) {
	var (
		where []string
		args  []any
	)
	if f.Year != nil {
		where = append(where, "year = ?")
		args = append(args, *f.Year)
	}
	if f.Advertiser != "" {
		where = append(where, "advertiser = ?")
		args = append(args, f.Advertiser)
	}
	if f.Niche != "" {
		where = append(where, "niche = ?")
		args = append(args, f.Niche)
	}
	if f.SharesMin != nil {
		where = append(where, "shares >= ?")
		args = append(args, *f.SharesMin)
	}
	if f.SharesMax != nil {
		where = append(where, "shares <= ?")
		args = append(args, *f.SharesMax)
	}
	if f.MastersOnly {
		where = append(where, "master_id IS NULL")
	}
	if f.MissingThumbnail {
		where = append(where, "(thumbnail_path IS NULL OR thumbnail_path = '')")
	}
	if match := ftsQuery(f.Search); match != "" {
		where = append(where, "id IN (SELECT rowid FROM assets_fts WHERE assets_fts MATCH ?)")
		args = append(args, match)
	}

	sortBy := f.SortBy
	if sortBy == "" {
		sortBy = SortCreatedAt
	}
	column, ok := sortColumns[sortBy]
	if !ok {
		return "", nil, wrap(ErrInvalidInput, "list assets", fmt.Sprintf("unknown sort field %q", f.SortBy), nil)
	}
	direction := "DESC"
	switch f.SortOrder {
	case "", OrderDesc:
	case OrderAsc:
		direction = "ASC"
	default:
		return "", nil, wrap(ErrInvalidInput, "list assets", fmt.Sprintf("unknown sort order %q", f.SortOrder), nil)
	}

	var b strings.Builder
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s", column, direction, direction)
	if f.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, f.Limit)
		if f.Offset > 0 {
			b.WriteString(" OFFSET ?")
			args = append(args, f.Offset)
		}
	}
	return b.String(), args, nil
}

// ftsQuery turns free text into an FTS5 prefix query. Each whitespace
// separated token is quoted so punctuation cannot reach the FTS parser.
func ftsQuery(search string) string {
	tokens := strings.Fields(search)
	if len(tokens) == 0 {
		return ""
	}
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		parts = append(parts, `"`+strings.ReplaceAll(tok, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " ")
}
