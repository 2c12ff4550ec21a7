package analyze

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raporbot/internal/config"
	"raporbot/internal/extract"
	"raporbot/internal/pkg/clock"
)

var frozenClock = &clock.FixedTimeProvider{
	CurrentTime: time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC),
}

func newAnalyzer() *Analyzer {
	cfg := &config.Config{DefaultRowLimit: 10}
	a := NewAnalyzer(cfg, time.UTC, frozenClock)
	// Stand-in for the roster name index the session provides.
	known := map[string]bool{
		"cem koca": true, "cem": true, "koca": true,
		"ayse": true, "ahmet yilmaz": true,
	}
	a.Verify = func(term string) bool { return known[term] }
	return a
}

func TestAnalyzeMetrics(t *testing.T) {
	a := newAnalyzer()

	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{"page views", "dün kaç görüntüleme oldu", []string{"screenPageViews"}},
		{"users", "bugün kaç kullanıcı geldi", []string{"totalUsers"}},
		{"new users beat bare users", "dün kaç yeni kullanıcı geldi", []string{"newUsers", "totalUsers"}},
		{"sessions", "geçen hafta oturum sayısı", []string{"sessions"}},
		{"bounce", "hemen çıkma oranı nedir", []string{"bounceRate"}},
		{"multiple", "kullanıcı ve oturum sayıları", []string{"totalUsers", "sessions"}},
		{"none", "en iyi sayfalar hangileri", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			assert.Equal(t, tt.expected, analysis.Metrics)
		})
	}
}

func TestAnalyzeDatesAndLimits(t *testing.T) {
	a := newAnalyzer()

	analysis := a.Analyze("geçen hafta en çok okunan 5 haber")
	assert.Equal(t, extract.DateRange{Start: "2025-12-08", End: "2025-12-14"}, analysis.Dates)
	assert.Equal(t, 5, analysis.Limit)
	assert.True(t, analysis.Desc)

	analysis = a.Analyze("en az okunan haberler")
	assert.Equal(t, extract.DateRange{Start: "yesterday", End: "yesterday"}, analysis.Dates)
	assert.Equal(t, 10, analysis.Limit)
	assert.False(t, analysis.Desc)
}

func TestAnalyzePersonDetection(t *testing.T) {
	a := newAnalyzer()

	tests := []struct {
		name          string
		text          string
		expectedClass string
		expectedTerm  string
	}{
		{"editor with full name", "editör cem koca performansı", "editor", "cem koca"},
		{"author cue", "yazar mehmet demir'in haberleri", "author", "mehmet demir"},
		{"possessive before cue", "ayşe'nin editör istatistikleri", "editor", "ayse"},
		{"plural editors is not a person", "en çok okunan editörler", "", ""},
		{"known leading name without cue", "cem koca haberleri", "editor", "cem koca"},
		{"known leading name with period", "ahmet yılmaz'ın son 7 gün haberleri", "editor", "ahmet yilmaz"},
		{"unknown leading words are not a person", "falanca filanca haberleri", "", ""},
		{"date range before cue is not a name", "1-7 aralık en popüler editör", "", ""},
		{"cue followed by stop words", "editör performansı dün nasıldı", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := a.Analyze(tt.text)
			assert.Equal(t, tt.expectedClass, analysis.PersonClass)
			assert.Equal(t, tt.expectedTerm, analysis.PersonTerm)
		})
	}
}

func TestAnalyzePublishOverride(t *testing.T) {
	a := newAnalyzer()

	analysis := a.Analyze("bugün yayınlanan haberlerin okunması")
	assert.Equal(t, extract.PublishRange{Start: "20251215", End: "20251215"}, analysis.Publish)
	// The reporting period follows the publish window.
	assert.Equal(t, extract.DateRange{Start: "2025-12-15", End: "2025-12-15"}, analysis.Dates)

	analysis = a.Analyze("20251210 tarihli yayınlanan haberler nasıl performans gösterdi")
	assert.Equal(t, extract.PublishRange{Start: "20251210", End: "20251210"}, analysis.Publish)
	assert.Equal(t, extract.DateRange{Start: "2025-12-10", End: "2025-12-10"}, analysis.Dates)

	analysis = a.Analyze("1-7 aralık yayınlanan haberler kaç görüntüleme aldı")
	assert.Equal(t, extract.PublishRange{Start: "20251201", End: "20251207"}, analysis.Publish)
	assert.Equal(t, extract.DateRange{Start: "2025-12-01", End: "2025-12-07"}, analysis.Dates)
}

func TestAnalyzeFiltersAndComparison(t *testing.T) {
	a := newAnalyzer()

	analysis := a.Analyze("mobilden gelen spor haberleri")
	require.Len(t, analysis.Filters, 2)

	analysis = a.Analyze("spor ile ekonomi karşılaştır")
	require.NotNil(t, analysis.Comparison)
	assert.Equal(t, "spor", analysis.Comparison.First)
	assert.Equal(t, "ekonomi", analysis.Comparison.Second)
}
