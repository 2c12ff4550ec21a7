package extract

import (
	"strconv"

	"raporbot/internal/pkg/turkish"
)

// limitPatterns capture an explicit row count. Tried in order; the
// first match wins.
var limitPatterns = []string{
	`ilk (\d+)`,
	`top ?(\d+)`,
	`en cok okunan (\d+)`,
	`en iyi (\d+)`,
	`(\d+) tane`,
	`(\d+) adet`,
	`(\d+) haber`,
	`(\d+) sayfa goster`,
	`(\d+) satir`,
	`(\d+) sonuc`,
}

// superlativePatterns imply a top-N question without naming a count.
var superlativePatterns = []string{
	`en cok`,
	`en fazla`,
	`en iyi`,
	`en populer`,
	`en yuksek`,
	`en basarili`,
	`en az`,
	`en dusuk`,
	`en kotu`,
}

// ExtractLimit returns the requested row count. Superlative phrasings
// without a number fall back to defaultLimit; anything else returns 0
// so callers keep their own default.
func ExtractLimit(text string, defaultLimit int) int {
	normalized := turkish.Normalize(text)

	for _, pattern := range limitPatterns {
		if m := findSubmatch(pattern, normalized); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
				return n
			}
		}
	}

	for _, pattern := range superlativePatterns {
		if matchPattern(pattern, normalized) {
			return defaultLimit
		}
	}
	return 0
}

// descPatterns are tried before ascPatterns.
var descPatterns = []string{
	`en cok`,
	`en fazla`,
	`en yuksek`,
	`en iyi`,
	`en populer`,
	`azalan`,
	`cok okunan`,
	`coktan aza`,
}

var ascPatterns = []string{
	`en az`,
	`en dusuk`,
	`en kotu`,
	`artan`,
	`az okunan`,
	`azdan coga`,
}

// ExtractSortOrder reports the requested direction. Descending wins
// when both would match; unspecified questions sort descending too.
func ExtractSortOrder(text string) bool {
	normalized := turkish.Normalize(text)
	for _, pattern := range descPatterns {
		if matchPattern(pattern, normalized) {
			return true
		}
	}
	for _, pattern := range ascPatterns {
		if matchPattern(pattern, normalized) {
			return false
		}
	}
	return true
}
