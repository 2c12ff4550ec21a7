package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raporbot/internal/pkg/clock"
)

func TestFindSubmatchNoMatchIsNil(t *testing.T) {
	// pcre hands back an empty slice on a miss; callers index the
	// captures after a nil check, so the miss must come back as nil.
	assert.Nil(t, findSubmatch(`(\d{1,2}) ?[-–] ?(\d{1,2}) aralik`, "dun kac kullanici geldi"))
	require.NotNil(t, findSubmatch(`(\d{1,2}) aralik`, "5 aralik trafigi"))
}

func TestExtractCategory(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{"plain category word", "spor haberleri nasıl gitti", "spor", true},
		{"football implies sports", "futbol haberleri kaç okundu", "spor", true},
		{"economy via dolar", "dolar haberleri dün kaç görüntülendi", "ekonomi", true},
		{"gundem", "gündem kategorisi performansı", "gundem", true},
		{"travel", "tatil haberleri dün kaç okundu", "seyahat", true},
		{"no category", "dün kaç kullanıcı geldi", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ExtractCategory(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestExtractNewsType(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
		found    bool
	}{
		{"compound type beats generic", "foto galeri haberleri", "fotogaleri", true},
		{"video galeri", "video galeri içerikleri kaç izlendi", "videogaleri", true},
		{"plain video", "video haberler dün", "video", true},
		{"live coverage", "canlı yayın sayfaları", "canliyayin", true},
		{"exclusive beats generic", "özel haber performansı", "ozelhaber", true},
		{"wire news", "ajans haberleri kaç görüntülendi", "ajanshaberi", true},
		{"no type", "dün en çok okunanlar", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ExtractNewsType(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestExtractLimit(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"ilk N", "ilk 20 haberi göster", 20},
		{"top N", "top 5 sayfa", 5},
		{"N tane", "3 tane örnek ver", 3},
		{"superlative defaults", "en çok okunan haberler", 10},
		{"no limit", "dün kaç kullanıcı geldi", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractLimit(tt.text, 10))
		})
	}
}

func TestExtractSortOrder(t *testing.T) {
	assert.True(t, ExtractSortOrder("en çok okunan haberler"))
	assert.True(t, ExtractSortOrder("en popüler sayfalar"))
	assert.False(t, ExtractSortOrder("en az okunan haberler"))
	assert.False(t, ExtractSortOrder("en düşük trafikli sayfalar"))
	assert.True(t, ExtractSortOrder("dünkü haber listesi"))
}

func TestExtractFilters(t *testing.T) {
	t.Run("category and device", func(t *testing.T) {
		filters := ExtractFilters("mobilden gelen spor haberleri")
		require.Len(t, filters, 2)
		assert.Contains(t, filters, Filter{Dimension: "cat1", Value: "spor"})
		assert.Contains(t, filters, Filter{Dimension: "deviceCategory", Value: "mobile"})
	})

	t.Run("country via turkish name", func(t *testing.T) {
		filters := ExtractFilters("Almanya'dan gelen kullanıcılar")
		require.Len(t, filters, 1)
		assert.Equal(t, Filter{Dimension: "country", Value: "Germany"}, filters[0])
	})

	t.Run("city", func(t *testing.T) {
		filters := ExtractFilters("İstanbul'dan kaç oturum geldi")
		require.Len(t, filters, 1)
		assert.Equal(t, Filter{Dimension: "city", Value: "Istanbul"}, filters[0])
	})

	t.Run("channel", func(t *testing.T) {
		filters := ExtractFilters("organik aramadan gelen trafik")
		require.Len(t, filters, 1)
		assert.Equal(t, Filter{Dimension: "sessionDefaultChannelGroup", Value: "Organic Search"}, filters[0])
	})

	t.Run("browser and os", func(t *testing.T) {
		filters := ExtractFilters("android chrome kullanıcıları")
		require.Len(t, filters, 2)
		assert.Contains(t, filters, Filter{Dimension: "browser", Value: "Chrome"})
		assert.Contains(t, filters, Filter{Dimension: "operatingSystem", Value: "Android"})
	})

	t.Run("nothing to filter", func(t *testing.T) {
		assert.Empty(t, ExtractFilters("dün kaç kullanıcı geldi"))
	})
}

func TestExtractComparison(t *testing.T) {
	t.Run("ile karsilastir", func(t *testing.T) {
		cmp, ok := ExtractComparison("spor ile ekonomi karşılaştır")
		require.True(t, ok)
		assert.Equal(t, "spor", cmp.First)
		assert.Equal(t, "ekonomi", cmp.Second)
	})

	t.Run("accusative second term keeps its stem", func(t *testing.T) {
		cmp, ok := ExtractComparison("spor ile ekonomiyi karşılaştır")
		require.True(t, ok)
		assert.Equal(t, "spor", cmp.First)
		assert.Equal(t, "ekonomi", cmp.Second)
	})

	t.Run("vs", func(t *testing.T) {
		cmp, ok := ExtractComparison("mobil vs desktop")
		require.True(t, ok)
		assert.Equal(t, "mobil", cmp.First)
		assert.Equal(t, "desktop", cmp.Second)
	})

	t.Run("cue only", func(t *testing.T) {
		cmp, ok := ExtractComparison("bunları karşılaştırır mısın")
		require.True(t, ok)
		assert.Empty(t, cmp.First)
	})

	t.Run("not a comparison", func(t *testing.T) {
		_, ok := ExtractComparison("dün kaç kullanıcı geldi")
		assert.False(t, ok)
	})
}

func TestPublishDateExtractor(t *testing.T) {
	frozen := &clock.FixedTimeProvider{
		CurrentTime: time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC),
	}
	extractor := NewPublishDateExtractor(time.UTC, frozen)

	tests := []struct {
		name     string
		text     string
		expected PublishRange
		found    bool
	}{
		{"compact date with cue", "20251210 tarihinde yayınlanan haberler", PublishRange{Start: "20251210", End: "20251210"}, true},
		{"published today", "bugün yayınlanan haberlerin okunması", PublishRange{Start: "20251215", End: "20251215"}, true},
		{"published yesterday", "dün yayınlanan haberler", PublishRange{Start: "20251214", End: "20251214"}, true},
		{"day month with cue", "10 aralık tarihinde yayınlanan içerikler", PublishRange{Start: "20251210", End: "20251210"}, true},
		{"day range with cue", "1-7 aralık yayınlanan haberler", PublishRange{Start: "20251201", End: "20251207"}, true},
		{"yazdigi cue with week window", "geçen hafta yazdığı haberler", PublishRange{Start: "20251208", End: "20251214"}, true},
		{"paylastigi cue", "dün paylaştığı içerikler", PublishRange{Start: "20251214", End: "20251214"}, true},
		{"no cue means no publish filter", "10 aralık trafiği", PublishRange{}, false},
		{"cue without date", "yayınlanan haberler listesi", PublishRange{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := extractor.Extract(tt.text)
			assert.Equal(t, tt.found, ok)
			assert.Equal(t, tt.expected, value)
		})
	}
}

func TestPublishRangeContains(t *testing.T) {
	r := PublishRange{Start: "20251201", End: "20251207"}
	assert.True(t, r.Contains("20251201"))
	assert.True(t, r.Contains("20251207"))
	assert.False(t, r.Contains("20251208"))
	assert.False(t, r.Contains("(not set)"))
	assert.False(t, r.Single())
	assert.True(t, PublishRange{Start: "20251201", End: "20251201"}.Single())
}
