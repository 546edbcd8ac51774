package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// maxFileNameRunes bounds the stem of a sanitized name; the extension is kept
// on top of it.
const maxFileNameRunes = 96

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// StripMarks decomposes s and drops combining marks, so "Café" becomes "Cafe".
// Input that fails to transform is returned unchanged.
func StripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// SanitizeFileName turns an arbitrary base name into one that is safe to
// store in the vault. Accents are stripped, unsafe characters are replaced or
// removed, whitespace runs become a single underscore, and the stem is capped
// in length. The extension is lowercased. Empty results become "file".
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(StripMarks(filepath.Base(strings.TrimSpace(name))))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	name = fileNameReplacer.Replace(name)

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	ext = strings.ToLower(collapse(ext))
	stem = strings.Trim(collapse(stem), "._-")

	if r := []rune(stem); len(r) > maxFileNameRunes {
		stem = strings.TrimRight(string(r[:maxFileNameRunes]), "._-")
	}
	if stem == "" {
		stem = "file"
	}
	if ext == "." {
		ext = ""
	}
	return stem + ext
}

// collapse drops control and non-printable runes and folds whitespace runs
// into one underscore.
func collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// NormalizeLabel trims a free-text label such as an advertiser or niche and
// folds internal whitespace to single spaces. Blank input yields "".
func NormalizeLabel(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
