package extract

import (
	"embed"
	"sync"

	"gopkg.in/yaml.v3"

	"raporbot/internal/pkg/turkish"
)

//go:embed database/categories.yml
//go:embed database/newstypes.yml
var databaseFiles embed.FS

// keywordFamily is one canonical value with the patterns that imply it.
type keywordFamily struct {
	Value    string   `yaml:"value"`
	Patterns []string `yaml:"patterns"`
}

var (
	categories   []keywordFamily
	newsTypes    []keywordFamily
	keywordsOnce sync.Once
)

func loadKeywords() {
	keywordsOnce.Do(func() {
		if data, err := databaseFiles.ReadFile("database/categories.yml"); err == nil {
			yaml.Unmarshal(data, &categories)
		}
		if data, err := databaseFiles.ReadFile("database/newstypes.yml"); err == nil {
			yaml.Unmarshal(data, &newsTypes)
		}
	})
}

func matchFamily(families []keywordFamily, normalized string) (string, bool) {
	for _, family := range families {
		for _, pattern := range family.Patterns {
			if matchPattern(pattern, normalized) {
				return family.Value, true
			}
		}
	}
	return "", false
}

// ExtractCategory finds a news category mention in the question.
func ExtractCategory(text string) (string, bool) {
	loadKeywords()
	return matchFamily(categories, turkish.Normalize(text))
}

// ExtractNewsType finds a content type mention in the question.
func ExtractNewsType(text string) (string, bool) {
	loadKeywords()
	return matchFamily(newsTypes, turkish.Normalize(text))
}
