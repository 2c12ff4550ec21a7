// Package catalog holds the static reporting vocabulary: the brand table,
// the canonical dimension and metric names with their Turkish display
// labels, and the alias tables used by the matchers.
package catalog

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"raporbot/internal/pkg/turkish"
)

//go:embed database/brands.yml
//go:embed database/fields.yml
//go:embed database/aliases.yml
var databaseFiles embed.FS

// Brand is one configured publication property.
type Brand struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	Prefix     string `yaml:"prefix"`
	PropertyID string `yaml:"property_id"`
	Domain     string `yaml:"domain"`
}

type fieldsFile struct {
	Dimensions map[string]string `yaml:"dimensions"`
	Metrics    map[string]string `yaml:"metrics"`
}

type aliasesFile struct {
	Dimensions map[string][]string `yaml:"dimensions"`
	Metrics    map[string][]string `yaml:"metrics"`
}

// customDimensions are the generic field names that become brand-scoped
// at query time (cat1 on the hurriyet property is hcat1, on vatan vcat1).
var customDimensions = map[string]bool{
	"cat1":          true,
	"cat2":          true,
	"editor":        true,
	"author":        true,
	"newstype":      true,
	"pagetype":      true,
	"tag":           true,
	"publisheddate": true,
	"newsid":        true,
}

type catalogData struct {
	brands        []Brand
	brandsByKey   map[string]Brand
	labels        map[string]string
	dimensionKeys []string
	metricKeys    []string
	dimAliases    map[string][]string
	metricAliases map[string][]string
}

var (
	data    *catalogData
	once    sync.Once
	loadErr error
)

func load() (*catalogData, error) {
	once.Do(func() {
		d := &catalogData{
			brandsByKey: make(map[string]Brand),
			labels:      make(map[string]string),
		}

		raw, err := databaseFiles.ReadFile("database/brands.yml")
		if err != nil {
			loadErr = fmt.Errorf("reading brands database: %w", err)
			return
		}
		var brands []Brand
		if err := yaml.Unmarshal(raw, &brands); err != nil {
			loadErr = fmt.Errorf("parsing brands database: %w", err)
			return
		}
		d.brands = brands
		for _, b := range brands {
			d.brandsByKey[b.Key] = b
		}

		raw, err = databaseFiles.ReadFile("database/fields.yml")
		if err != nil {
			loadErr = fmt.Errorf("reading fields database: %w", err)
			return
		}
		var ff fieldsFile
		if err := yaml.Unmarshal(raw, &ff); err != nil {
			loadErr = fmt.Errorf("parsing fields database: %w", err)
			return
		}
		for name, label := range ff.Dimensions {
			d.labels[name] = label
			d.dimensionKeys = append(d.dimensionKeys, name)
		}
		for name, label := range ff.Metrics {
			d.labels[name] = label
			d.metricKeys = append(d.metricKeys, name)
		}
		sort.Strings(d.dimensionKeys)
		sort.Strings(d.metricKeys)

		raw, err = databaseFiles.ReadFile("database/aliases.yml")
		if err != nil {
			loadErr = fmt.Errorf("reading aliases database: %w", err)
			return
		}
		var af aliasesFile
		if err := yaml.Unmarshal(raw, &af); err != nil {
			loadErr = fmt.Errorf("parsing aliases database: %w", err)
			return
		}
		d.dimAliases = af.Dimensions
		d.metricAliases = af.Metrics

		data = d
	})
	if loadErr != nil {
		return nil, loadErr
	}
	return data, nil
}

// Brands returns all configured brands in file order.
func Brands() []Brand {
	d, err := load()
	if err != nil {
		return nil
	}
	return d.brands
}

// BrandByKey looks a brand up by its short key (hurriyet, vatan, ...).
func BrandByKey(key string) (Brand, bool) {
	d, err := load()
	if err != nil {
		return Brand{}, false
	}
	b, ok := d.brandsByKey[strings.ToLower(strings.TrimSpace(key))]
	return b, ok
}

// DefaultBrand returns the first configured brand.
func DefaultBrand() Brand {
	brands := Brands()
	if len(brands) == 0 {
		return Brand{}
	}
	return brands[0]
}

// IsCustomDimension reports whether name is a brand-scoped field.
func IsCustomDimension(name string) bool {
	return customDimensions[StripBrandPrefix(name)]
}

// ScopeDimension turns a generic custom dimension into its brand-scoped
// form (cat1 + vatan -> vcat1). Standard dimensions pass through.
func ScopeDimension(name string, b Brand) string {
	if customDimensions[name] && b.Prefix != "" {
		return b.Prefix + name
	}
	return name
}

// StripBrandPrefix maps a brand-scoped dimension back to its generic
// name (vcat1 -> cat1). Names without a known prefix pass through.
func StripBrandPrefix(name string) string {
	if customDimensions[name] {
		return name
	}
	if len(name) > 1 && customDimensions[name[1:]] {
		return name[1:]
	}
	return name
}

// DisplayLabel returns the Turkish label for a canonical field name,
// falling back to the name itself. Brand-scoped custom dimensions
// resolve through their generic name.
func DisplayLabel(name string) string {
	d, err := load()
	if err != nil {
		return name
	}
	if label, ok := d.labels[name]; ok {
		return label
	}
	if label, ok := d.labels[StripBrandPrefix(name)]; ok {
		return label
	}
	return name
}

// DimensionNames returns all canonical dimension names, sorted.
func DimensionNames() []string {
	d, err := load()
	if err != nil {
		return nil
	}
	return d.dimensionKeys
}

// MetricNames returns all canonical metric names, sorted.
func MetricNames() []string {
	d, err := load()
	if err != nil {
		return nil
	}
	return d.metricKeys
}

// DimensionAliases returns the alias table for dimensions. Aliases are
// stored pre-normalized (lowercase, ASCII-folded Turkish).
func DimensionAliases() map[string][]string {
	d, err := load()
	if err != nil {
		return nil
	}
	return d.dimAliases
}

// MetricAliases returns the alias table for metrics.
func MetricAliases() map[string][]string {
	d, err := load()
	if err != nil {
		return nil
	}
	return d.metricAliases
}

// FindAlias does an exact lookup of a normalized phrase across an alias
// table, returning the canonical field name.
func FindAlias(table map[string][]string, phrase string) (string, bool) {
	phrase = turkish.Normalize(strings.TrimSpace(phrase))
	for name, aliases := range table {
		for _, alias := range aliases {
			if alias == phrase {
				return name, true
			}
		}
	}
	return "", false
}
