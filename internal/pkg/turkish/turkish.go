// Package turkish provides text normalization for Turkish query matching.
package turkish

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Turkish letters fold to ASCII before generic lowercasing so that the
// dotted/dotless i pair does not round-trip through the wrong case.
var replacer = strings.NewReplacer(
	"ç", "c", "Ç", "c",
	"ğ", "g", "Ğ", "g",
	"ı", "i", "İ", "i", "I", "i",
	"ö", "o", "Ö", "o",
	"ş", "s", "Ş", "s",
	"ü", "u", "Ü", "u",
)

var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases text and folds Turkish characters to their ASCII
// counterparts. Any remaining combining marks are stripped as well, so
// inputs copied from other keyboards still compare equal.
func Normalize(text string) string {
	out := replacer.Replace(text)
	out = strings.ToLower(out)
	if folded, _, err := transform.String(foldTransform, out); err == nil {
		out = folded
	}
	return out
}

// NormalizeSpace collapses runs of whitespace into single spaces and trims
// the ends. It does not fold characters.
func NormalizeSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
