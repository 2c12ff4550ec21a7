package extract

import (
	"strings"
	"sync"

	"github.com/pariz/gountries"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"raporbot/internal/pkg/turkish"
)

var cityCaser = cases.Title(language.English)

// Filter is one extracted dimension constraint.
type Filter struct {
	Dimension string
	Value     string
}

var (
	countryQuery     *gountries.Query
	countryQueryOnce sync.Once
)

func countries() *gountries.Query {
	countryQueryOnce.Do(func() {
		countryQuery = gountries.New()
	})
	return countryQuery
}

// turkishCountryNames maps common Turkish country mentions to the
// English names stored in the country dimension. Türkiye gets special
// treatment because gountries does not know the endonym.
var turkishCountryNames = map[string]string{
	"turkiye":    "Turkey",
	"almanya":    "Germany",
	"fransa":     "France",
	"ingiltere":  "United Kingdom",
	"hollanda":   "Netherlands",
	"amerika":    "United States",
	"abd":        "United States",
	"rusya":      "Russia",
	"azerbaycan": "Azerbaijan",
	"yunanistan": "Greece",
	"italya":     "Italy",
	"ispanya":    "Spain",
	"belcika":    "Belgium",
	"avusturya":  "Austria",
	"isvicre":    "Switzerland",
	"isvec":      "Sweden",
}

var cityNames = []string{
	"istanbul", "ankara", "izmir", "bursa", "antalya", "adana",
	"konya", "gaziantep", "kayseri", "mersin", "eskisehir",
	"diyarbakir", "samsun", "trabzon", "denizli",
}

var devicePatterns = []struct {
	pattern string
	value   string
}{
	{`mobil|telefon|cep`, "mobile"},
	{`masaustu|desktop|bilgisayar`, "desktop"},
	{`tablet`, "tablet"},
}

var channelPatterns = []struct {
	pattern string
	value   string
}{
	{`organik|organic|aramadan gelen`, "Organic Search"},
	{`direkt|direct|dogrudan`, "Direct"},
	{`sosyal medya|social`, "Organic Social"},
	{`referans|referral|baska siteden`, "Referral"},
	{`e-?posta|mail`, "Email"},
	{`reklamdan|ucretli|paid`, "Paid Search"},
}

var browserPatterns = []struct {
	pattern string
	value   string
}{
	{`chrome`, "Chrome"},
	{`safari`, "Safari"},
	{`firefox`, "Firefox"},
	{`\bedge\b`, "Edge"},
	{`opera`, "Opera"},
	{`samsung internet`, "Samsung Internet"},
}

var osPatterns = []struct {
	pattern string
	value   string
}{
	{`android`, "Android"},
	{`\bios\b|iphone|ipad`, "iOS"},
	{`windows`, "Windows"},
	{`macos|\bmac\b`, "Macintosh"},
	{`linux`, "Linux"},
}

// ExtractFilters finds every dimension constraint mentioned in the
// question. Each family contributes at most one filter; within a
// family the first matching pattern wins.
func ExtractFilters(text string) []Filter {
	normalized := turkish.Normalize(text)
	var filters []Filter

	if value, ok := ExtractCategory(text); ok {
		filters = append(filters, Filter{Dimension: "cat1", Value: value})
	}
	if value, ok := ExtractNewsType(text); ok {
		filters = append(filters, Filter{Dimension: "newstype", Value: value})
	}
	if value, ok := extractCountry(normalized); ok {
		filters = append(filters, Filter{Dimension: "country", Value: value})
	}
	if value, ok := extractCity(normalized); ok {
		filters = append(filters, Filter{Dimension: "city", Value: value})
	}
	for _, dp := range devicePatterns {
		if matchPattern(dp.pattern, normalized) {
			filters = append(filters, Filter{Dimension: "deviceCategory", Value: dp.value})
			break
		}
	}
	for _, cp := range channelPatterns {
		if matchPattern(cp.pattern, normalized) {
			filters = append(filters, Filter{Dimension: "sessionDefaultChannelGroup", Value: cp.value})
			break
		}
	}
	for _, bp := range browserPatterns {
		if matchPattern(bp.pattern, normalized) {
			filters = append(filters, Filter{Dimension: "browser", Value: bp.value})
			break
		}
	}
	for _, op := range osPatterns {
		if matchPattern(op.pattern, normalized) {
			filters = append(filters, Filter{Dimension: "operatingSystem", Value: op.value})
			break
		}
	}

	return filters
}

func extractCountry(normalized string) (string, bool) {
	for mention, name := range turkishCountryNames {
		if strings.Contains(normalized, mention) {
			return name, true
		}
	}
	// Country mentions sometimes come through in English already.
	for _, word := range strings.Fields(normalized) {
		if len(word) < 5 {
			continue
		}
		if country, err := countries().FindCountryByName(word); err == nil {
			return country.Name.Common, true
		}
	}
	return "", false
}

func extractCity(normalized string) (string, bool) {
	for _, city := range cityNames {
		if strings.Contains(normalized, city) {
			// Stored city names keep their English spelling.
			return cityCaser.String(city), true
		}
	}
	return "", false
}
