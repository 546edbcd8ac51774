package assets

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Field is one optional member of a Patch. The zero value leaves the column
// untouched; Set writes a value and Clear writes NULL.
type Field[T any] struct {
	set   bool
	null  bool
	value T
}

// Set returns a field that writes value.
func Set[T any](value T) Field[T] {
	return Field[T]{set: true, value: value}
}

// Clear returns a field that writes NULL.
func Clear[T any]() Field[T] {
	return Field[T]{set: true, null: true}
}

// IsSet reports whether the field takes part in the update.
func (f Field[T]) IsSet() bool { return f.set }

// Value returns the value to write and false when the field clears the column.
func (f Field[T]) Value() (T, bool) {
	return f.value, f.set && !f.null
}

func (f Field[T]) arg() any {
	if f.null {
		return nil
	}
	return f.value
}

// Patch lists the business metadata an update may touch. Provenance columns
// and group membership are deliberately absent.
type Patch struct {
	Year       Field[int64]
	Advertiser Field[string]
	Niche      Field[string]
	Shares     Field[int64]
}

// Column names a patch may write. SQL assignments are built from these
// constants only.
const (
	colYear       = "year"
	colAdvertiser = "advertiser"
	colNiche      = "niche"
	colShares     = "shares"
)

// PatchFields lists the keys PatchFromValues accepts.
var PatchFields = []string{colYear, colAdvertiser, colNiche, colShares}

// IsEmpty reports whether no field is set.
func (p Patch) IsEmpty() bool {
	return !p.Year.set && !p.Advertiser.set && !p.Niche.set && !p.Shares.set
}

// assignments returns "col = ?" fragments and their arguments in a fixed
// column order.
func (p Patch) assignments() ([]string, []any) {
	sets := make([]string, 0, 4)
	args := make([]any, 0, 4)
	if p.Year.set {
		sets = append(sets, colYear+" = ?")
		args = append(args, p.Year.arg())
	}
	if p.Advertiser.set {
		sets = append(sets, colAdvertiser+" = ?")
		args = append(args, p.Advertiser.arg())
	}
	if p.Niche.set {
		sets = append(sets, colNiche+" = ?")
		args = append(args, p.Niche.arg())
	}
	if p.Shares.set {
		sets = append(sets, colShares+" = ?")
		args = append(args, p.Shares.arg())
	}
	return sets, args
}

// PatchFromValues builds a Patch from loosely typed input such as CLI flags.
// Keys in values are set, keys in clear are nulled. Unknown keys are returned
// in ignored rather than rejected; only a malformed number or an empty result
// is an error.
func PatchFromValues(values map[string]string, clear []string) (Patch, []string, error) {
	var (
		patch   Patch
		ignored []string
	)
	for _, key := range clear {
		switch strings.ToLower(strings.TrimSpace(key)) {
		case colYear:
			patch.Year = Clear[int64]()
		case colAdvertiser:
			patch.Advertiser = Clear[string]()
		case colNiche:
			patch.Niche = Clear[string]()
		case colShares:
			patch.Shares = Clear[int64]()
		default:
			ignored = append(ignored, key)
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		raw := values[key]
		switch strings.ToLower(strings.TrimSpace(key)) {
		case colYear:
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return Patch{}, nil, wrap(ErrInvalidInput, "patch", fmt.Sprintf("year %q is not an integer", raw), nil)
			}
			patch.Year = Set(n)
		case colAdvertiser:
			patch.Advertiser = Set(raw)
		case colNiche:
			patch.Niche = Set(raw)
		case colShares:
			n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
			if err != nil {
				return Patch{}, nil, wrap(ErrInvalidInput, "patch", fmt.Sprintf("shares %q is not an integer", raw), nil)
			}
			patch.Shares = Set(n)
		default:
			ignored = append(ignored, key)
		}
	}

	if patch.IsEmpty() {
		return Patch{}, ignored, wrap(ErrInvalidInput, "patch", "no updatable fields supplied", nil)
	}
	return patch, ignored, nil
}
