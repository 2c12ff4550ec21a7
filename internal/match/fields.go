package match

import (
	"sort"
	"strings"

	"raporbot/internal/config"
	"raporbot/internal/pkg/turkish"
)

// FieldMatch is one resolved field with its score.
type FieldMatch struct {
	Name  string
	Score float64
}

// Confidence grades a Suggest result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// FieldMatcher resolves Turkish phrases to canonical field names
// through an alias table.
type FieldMatcher struct {
	aliases map[string][]string
	cfg     *config.Config
}

func NewFieldMatcher(aliases map[string][]string, cfg *config.Config) *FieldMatcher {
	return &FieldMatcher{aliases: aliases, cfg: cfg}
}

// Find resolves a single phrase. Exact alias hits win, then
// containment, then fuzzy similarity over every alias.
func (m *FieldMatcher) Find(phrase string) (FieldMatch, bool) {
	normalized := turkish.NormalizeSpace(turkish.Normalize(phrase))
	if normalized == "" {
		return FieldMatch{}, false
	}

	for name, aliases := range m.aliases {
		for _, alias := range aliases {
			if alias == normalized {
				return FieldMatch{Name: name, Score: 1}, true
			}
		}
	}

	// Containment: the shorter side must still carry most of the longer
	// one or short aliases would match everywhere.
	best := FieldMatch{}
	for name, aliases := range m.aliases {
		for _, alias := range aliases {
			if len(alias) < 3 {
				continue
			}
			var score float64
			if strings.Contains(normalized, alias) {
				score = float64(len(alias)) / float64(len(normalized))
			} else if strings.Contains(alias, normalized) && len(normalized) >= 3 {
				score = float64(len(normalized)) / float64(len(alias))
			}
			if score >= m.cfg.ContainsScoreFloor && score > best.Score {
				best = FieldMatch{Name: name, Score: score}
			}
		}
	}
	if best.Name != "" {
		return best, true
	}

	for name, aliases := range m.aliases {
		for _, alias := range aliases {
			score := Ratio(normalized, alias)
			if score >= m.cfg.FuzzyThreshold && score > best.Score {
				best = FieldMatch{Name: name, Score: score}
			}
		}
	}
	if best.Name != "" {
		return best, true
	}
	return FieldMatch{}, false
}

// Extract finds every field whose alias appears inside the question.
// Aliases shorter than three characters are skipped. Results come back
// longest-alias-first so compound mentions outrank the single words
// they contain.
func (m *FieldMatcher) Extract(text string) []FieldMatch {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))
	if normalized == "" {
		return nil
	}

	type hit struct {
		name     string
		aliasLen int
	}
	bestHits := make(map[string]hit)
	for name, aliases := range m.aliases {
		for _, alias := range aliases {
			if len(alias) < 3 {
				continue
			}
			if !strings.Contains(normalized, alias) {
				continue
			}
			if existing, ok := bestHits[name]; !ok || len(alias) > existing.aliasLen {
				bestHits[name] = hit{name: name, aliasLen: len(alias)}
			}
		}
	}

	matches := make([]FieldMatch, 0, len(bestHits))
	for name := range bestHits {
		matches = append(matches, FieldMatch{Name: name, Score: 0.9})
	}
	sort.Slice(matches, func(i, j int) bool {
		if bestHits[matches[i].Name].aliasLen != bestHits[matches[j].Name].aliasLen {
			return bestHits[matches[i].Name].aliasLen > bestHits[matches[j].Name].aliasLen
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}

// Suggest retries a failed Find word by word with a relaxed threshold
// and grades how confident the combined result is.
func (m *FieldMatcher) Suggest(text string) ([]FieldMatch, Confidence) {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))

	var matches []FieldMatch
	seen := make(map[string]bool)
	for _, word := range strings.Fields(normalized) {
		if len(word) < 3 {
			continue
		}
		best := FieldMatch{}
		for name, aliases := range m.aliases {
			for _, alias := range aliases {
				score := Ratio(word, alias)
				if score >= m.cfg.WordRetryThreshold && score > best.Score {
					best = FieldMatch{Name: name, Score: score}
				}
			}
		}
		if best.Name != "" && !seen[best.Name] {
			seen[best.Name] = true
			matches = append(matches, best)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Name < matches[j].Name
	})

	// Only matches that clear the regular fuzzy threshold count toward
	// the grade: the relaxed per-word retry scores gibberish too.
	strong := 0
	for _, match := range matches {
		if match.Score >= m.cfg.FuzzyThreshold {
			strong++
		}
	}
	switch {
	case strong >= 2:
		return matches, ConfidenceHigh
	case strong == 1:
		return matches, ConfidenceMedium
	default:
		return nil, ConfidenceLow
	}
}
