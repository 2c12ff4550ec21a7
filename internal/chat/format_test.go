package chat

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"raporbot/internal/report"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{1234.6, "1.235"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatNumber(tt.value))
	}
}

func TestFormatMetricValue(t *testing.T) {
	assert.Equal(t, "%42.5", formatMetricValue("bounceRate", 0.425))
	assert.Equal(t, "%80.0", formatMetricValue("engagementRate", 0.8))
	assert.Equal(t, "2:05", formatMetricValue("averageSessionDuration", 125))
	assert.Equal(t, "1.500", formatMetricValue("screenPageViews", 1500))
	assert.Equal(t, "1.85", formatMetricValue("sessionsPerUser", 1.851))
}

func TestFormatPublishDate(t *testing.T) {
	assert.Equal(t, "10.12.2025", formatPublishDate("20251210"))
	assert.Equal(t, "bozuk", formatPublishDate("bozuk"))
}

func TestRenderTable(t *testing.T) {
	rows := []report.Row{
		{Dimensions: map[string]string{"pagePath": "/gundem/a"}, Metrics: map[string]float64{"screenPageViews": 1500}},
		{Dimensions: map[string]string{"pagePath": "/spor/b"}, Metrics: map[string]float64{"screenPageViews": 900}},
		{Dimensions: map[string]string{"pagePath": "(not set)"}, Metrics: map[string]float64{"screenPageViews": 50}},
	}

	out := renderTable("Icerikler - Dun", []string{"pagePath"}, []string{"screenPageViews"}, rows, 20)
	assert.Contains(t, out, "Icerikler - Dun")
	assert.Contains(t, out, "/gundem/a")
	assert.Contains(t, out, "1.500")
	// "(not set)" rows are dropped and the total reflects that.
	assert.NotContains(t, out, "(not set)")
	assert.Contains(t, out, "Toplam: 2 satir")
}

func TestRenderTableOverflow(t *testing.T) {
	rows := make([]report.Row, 25)
	for i := range rows {
		rows[i] = report.Row{
			Dimensions: map[string]string{"pagePath": "/x"},
			Metrics:    map[string]float64{"screenPageViews": float64(i)},
		}
	}
	out := renderTable("Icerikler", []string{"pagePath"}, []string{"screenPageViews"}, rows, 20)
	assert.Contains(t, out, "... ve 5 satir daha")
	assert.Contains(t, out, "Toplam: 25 satir")
}

func TestRenderTableEmpty(t *testing.T) {
	out := renderTable("Icerikler", []string{"pagePath"}, []string{"screenPageViews"}, nil, 20)
	assert.Contains(t, out, "Veri bulunamadi.")
}

func TestRenderTableTruncatesLongValues(t *testing.T) {
	long := strings.Repeat("a", 60)
	rows := []report.Row{
		{Dimensions: map[string]string{"pagePath": long}, Metrics: map[string]float64{"screenPageViews": 1}},
	}
	out := renderTable("Icerikler", []string{"pagePath"}, []string{"screenPageViews"}, rows, 20)
	assert.NotContains(t, out, long)
	assert.Contains(t, out, strings.Repeat("a", 37)+"...")
}

func TestPeriodLabel(t *testing.T) {
	assert.Equal(t, "Bugun", periodLabel("today", "today"))
	assert.Equal(t, "Dun", periodLabel("yesterday", "yesterday"))
	assert.Equal(t, "Son 7 Gun", periodLabel("7daysAgo", "yesterday"))
	assert.Equal(t, "2025-12-01 / 2025-12-15", periodLabel("2025-12-01", "2025-12-15"))
	assert.Equal(t, "2025-12-10", periodLabel("2025-12-10", "2025-12-10"))
}
