package chat

import (
	"fmt"
	"strings"

	"raporbot/internal/catalog"
	"raporbot/internal/report"
)

const maxColumnWidth = 40

// rateMetrics render as percentages.
var rateMetrics = map[string]bool{
	"bounceRate":     true,
	"engagementRate": true,
}

// durationMetrics render as minutes and seconds.
var durationMetrics = map[string]bool{
	"averageSessionDuration": true,
	"averageDuration":        true,
	"userEngagementDuration": true,
}

// formatNumber prints an integer value with dots as thousand
// separators, the way Turkish reports write them.
func formatNumber(value float64) string {
	n := int64(value + 0.5)
	if value < 0 {
		n = int64(value - 0.5)
	}
	s := fmt.Sprintf("%d", n)
	negative := strings.HasPrefix(s, "-")
	if negative {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, ".")
	if negative {
		out = "-" + out
	}
	return out
}

func formatMetricValue(metric string, value float64) string {
	switch {
	case rateMetrics[metric]:
		return fmt.Sprintf("%%%.1f", value*100)
	case durationMetrics[metric]:
		total := int64(value + 0.5)
		return fmt.Sprintf("%d:%02d", total/60, total%60)
	case metric == "sessionsPerUser" || metric == "screenPageViewsPerSession":
		return fmt.Sprintf("%.2f", value)
	default:
		return formatNumber(value)
	}
}

// formatPublishDate rewrites the compact YYYYMMDD form as DD.MM.YYYY.
func formatPublishDate(value string) string {
	if len(value) != 8 {
		return value
	}
	return value[6:8] + "." + value[4:6] + "." + value[0:4]
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width-3]) + "..."
}

// renderTable prints rows as a fixed-width text table with a banner
// title. Rows beyond maxRows collapse into a trailer line; rows whose
// every dimension is "(not set)" are dropped.
func renderTable(title string, dims, metrics []string, rows []report.Row, maxRows int) string {
	var filtered []report.Row
	for _, row := range rows {
		allUnset := len(dims) > 0
		for _, dim := range dims {
			if v := row.Dimensions[dim]; v != "(not set)" && v != "" {
				allUnset = false
				break
			}
		}
		if !allUnset {
			filtered = append(filtered, row)
		}
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))))
	b.WriteString("\n")

	if len(filtered) == 0 {
		b.WriteString("Veri bulunamadi.")
		return b.String()
	}

	headers := make([]string, 0, len(dims)+len(metrics))
	for _, dim := range dims {
		headers = append(headers, catalog.DisplayLabel(dim))
	}
	for _, metric := range metrics {
		headers = append(headers, catalog.DisplayLabel(metric))
	}

	shown := filtered
	if maxRows > 0 && len(shown) > maxRows {
		shown = shown[:maxRows]
	}

	cells := make([][]string, 0, len(shown))
	for _, row := range shown {
		line := make([]string, 0, len(headers))
		for _, dim := range dims {
			value := row.Dimensions[dim]
			if catalog.StripBrandPrefix(dim) == "publisheddate" {
				value = formatPublishDate(value)
			}
			line = append(line, truncate(value, maxColumnWidth))
		}
		for _, metric := range metrics {
			line = append(line, formatMetricValue(metric, row.Metrics[metric]))
		}
		cells = append(cells, line)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len([]rune(h))
	}
	for _, line := range cells {
		for i, cell := range line {
			if l := len([]rune(cell)); l > widths[i] {
				widths[i] = l
			}
		}
	}

	writeLine := func(line []string) {
		for i, cell := range line {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(cell)
			b.WriteString(strings.Repeat(" ", widths[i]-len([]rune(cell))))
		}
		b.WriteString("\n")
	}

	writeLine(headers)
	for _, line := range cells {
		writeLine(line)
	}

	if len(filtered) > len(shown) {
		b.WriteString(fmt.Sprintf("... ve %d satir daha\n", len(filtered)-len(shown)))
	}
	b.WriteString(fmt.Sprintf("Toplam: %d satir", len(filtered)))
	return b.String()
}

// renderScorecard prints one person's numbers as label/value pairs.
func renderScorecard(title string, metrics []string, row report.Row) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("=", len([]rune(title))))
	b.WriteString("\n")
	for _, metric := range metrics {
		b.WriteString(fmt.Sprintf("%-22s %s\n", catalog.DisplayLabel(metric), formatMetricValue(metric, row.Metrics[metric])))
	}
	return strings.TrimRight(b.String(), "\n")
}

// periodLabel describes a date range for table titles.
func periodLabel(start, end string) string {
	switch {
	case start == "today" && end == "today":
		return "Bugun"
	case start == "yesterday" && end == "yesterday":
		return "Dun"
	case start == end:
		return start
	case strings.HasSuffix(start, "daysAgo") && end == "yesterday":
		return "Son " + strings.TrimSuffix(start, "daysAgo") + " Gun"
	default:
		return start + " / " + end
	}
}
