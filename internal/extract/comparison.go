package extract

import (
	"strings"

	"raporbot/internal/pkg/turkish"
)

// Comparison holds the two sides of a "compare X with Y" question.
type Comparison struct {
	First  string
	Second string
}

// comparisonPatterns capture both terms. Tried in order.
var comparisonPatterns = []string{
	`(.+?) ile (.+?)'?y[iu] (?:karsilastir|kiyasla)`,
	`(.+?) ile (.+?) (?:karsilastir|kiyasla)`,
	`(.+?) vs\.? (.+)`,
	`(.+?) mi (.+?) mi\b`,
	`(.+?) ve (.+?)'?y[iu] karsilastir`,
	`(.+?) ve (.+?) karsilastir`,
}

// comparisonCues mark a comparison question even when the two sides
// cannot be captured.
var comparisonCues = []string{
	`karsilastir`,
	`kiyasla`,
	`\bvs\b`,
	`arasindaki fark`,
	`hangisi daha`,
}

// ExtractComparison pulls the two compared terms out of the question.
// The second return value reports whether the question is a comparison
// at all; the terms may be empty when only a cue word matched.
func ExtractComparison(text string) (Comparison, bool) {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))

	for _, pattern := range comparisonPatterns {
		if m := findSubmatch(pattern, normalized); m != nil {
			return Comparison{
				First:  cleanTerm(m[1]),
				Second: cleanTerm(m[2]),
			}, true
		}
	}
	for _, cue := range comparisonCues {
		if matchPattern(cue, normalized) {
			return Comparison{}, true
		}
	}
	return Comparison{}, false
}

// cleanTerm strips filler words left on the captured sides.
func cleanTerm(term string) string {
	term = strings.TrimSpace(term)
	for _, prefix := range []string{"bana ", "peki ", "bu hafta ", "dun ", "bugun "} {
		term = strings.TrimPrefix(term, prefix)
	}
	return strings.TrimSpace(term)
}
