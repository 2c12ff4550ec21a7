package chat

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"raporbot/internal/analyze"
	"raporbot/internal/catalog"
	"raporbot/internal/extract"
	"raporbot/internal/report"
)

// intent is one recognized question family. The table is ordered:
// specific phrasings sit above the generic ones they contain.
type intent struct {
	name    string
	matches func(a analyze.Analysis) bool
	handle  func(ctx context.Context, a analyze.Analysis) (string, error)
}

func contains(a analyze.Analysis, patterns ...string) bool {
	for _, p := range patterns {
		if extract.MatchPattern(p, a.Normalized) {
			return true
		}
	}
	return false
}

func (s *Session) intents() []intent {
	return []intent{
		{
			name: "simple_metric",
			matches: func(a analyze.Analysis) bool {
				return len(a.Metrics) > 0 &&
					a.Limit == 0 &&
					contains(a, `\bkac\b|ne kadar|toplam`) &&
					!contains(a, `su an|anlik|aktif`)
			},
			handle: s.handleSimpleMetric,
		},
		{
			name: "popular_editors",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `okunan editor|populer editor|basarili editor|editorler kimler`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Editorler", []string{"editor"}, nil)
			},
		},
		{
			name: "top_pages",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `okunan haber|okunan sayfa|okunan icerik|populer haber|populer sayfa|hangi haberler|top sayfa|en cok okunan`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Icerikler", []string{"pagePath", "pageTitle"}, nil)
			},
		},
		{
			name: "traffic_sources",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `trafik kayna|nereden geliyor|nereden geldi|kanal dagilim|hangi kanal`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Trafik Kaynaklari", []string{"sessionDefaultChannelGroup"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "category_performance",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `kategori performans|kategori dagilim|hangi kategori|kategoriler`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Kategoriler", []string{"cat1"}, nil)
			},
		},
		{
			name: "editor_performance",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `editor performans|editor dagilim|editor siralama`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Editor Performansi", []string{"editor"}, nil)
			},
		},
		{
			name: "device_breakdown",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `cihaz dagilim|cihaz kirilim|hangi cihaz|cihazlara gore`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Cihazlar", []string{"deviceCategory"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "city_breakdown",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `sehir dagilim|hangi sehir|sehirlere gore|illere gore|sehirler`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Sehirler", []string{"city"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "country_breakdown",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `ulke dagilim|hangi ulke|ulkelere gore|yurtdisi trafik`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Ulkeler", []string{"country"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "hourly_traffic",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `saatlik|hangi saat|saat dagilim`)
			},
			handle: s.handleHourlyTraffic,
		},
		{
			name: "daily_trend",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `gunluk trend|gunluk dagilim|gune gore|gun gun`)
			},
			handle: s.handleDailyTrend,
		},
		{
			name: "summary",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `\bozet\b|genel ozet|genel durum|genel tablo`)
			},
			handle: s.handleSummary,
		},
		{
			name: "compare",
			matches: func(a analyze.Analysis) bool {
				return a.Comparison != nil
			},
			handle: s.handleCompare,
		},
		{
			name: "author_performance",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `yazar performans|yazar dagilim|yazarlar`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Yazar Performansi", []string{"author"}, nil)
			},
		},
		{
			name: "news_type",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `haber tipi|icerik tipi|tip dagilim|haber turu`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Haber Tipleri", []string{"newstype"}, nil)
			},
		},
		{
			name: "tag_analysis",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `etiket`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Etiketler", []string{"tag"}, nil)
			},
		},
		{
			name: "content_age",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `icerik yasi|yayin tarihine gore|eski haberler`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Yayin Tarihine Gore", []string{"publisheddate"}, nil)
			},
		},
		{
			name: "browser_analysis",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `tarayici|browser dagilim`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Tarayicilar", []string{"browser"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "os_analysis",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `isletim sistemi|os dagilim`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Isletim Sistemleri", []string{"operatingSystem"}, []string{"sessions", "totalUsers"})
			},
		},
		{
			name: "landing_pages",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `giris sayfa|landing|nereden girdi`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Giris Sayfalari", []string{"landingPage"}, []string{"sessions", "screenPageViews"})
			},
		},
		{
			name: "exit_pages",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `cikis sayfa|nereden cikti|terk ettigi`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.breakdown(ctx, a, "Cikis Sayfalari", []string{"exitPage"}, []string{"sessions", "screenPageViews"})
			},
		},
		{
			name: "new_vs_returning",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `yeni ve geri donen|yeni mi eski|geri donen|yeni ve eski kullanici`)
			},
			handle: s.handleNewVsReturning,
		},
		{
			name: "real_time",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `su an|suan|anlik|aktif kullanici`)
			},
			handle: s.handleRealTime,
		},
		{
			name: "daily_users",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `gunluk kullanici`)
			},
			handle: s.handleDailyTrend,
		},
		{
			name: "weekly_trend",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `haftalik trend|haftalik dagilim|haftalik rapor`)
			},
			handle: s.handleWeeklyTrend,
		},
		{
			name: "newsletter_traffic",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `bulten|newsletter`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.channelReport(ctx, a, "Bulten Trafigi", "Email")
			},
		},
		{
			name: "push_traffic",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `push bildirim|bildirim trafigi|push trafigi`)
			},
			handle: func(ctx context.Context, a analyze.Analysis) (string, error) {
				return s.channelReport(ctx, a, "Push Trafigi", "Push")
			},
		},
		{
			name: "weekend_summary",
			matches: func(a analyze.Analysis) bool {
				// A filtered weekend question is a regular filtered
				// query over the weekend period, not a summary.
				return len(a.Filters) == 0 && contains(a, `hafta sonu`)
			},
			handle: s.handleSummary,
		},
		{
			name: "device_ratio",
			matches: func(a analyze.Analysis) bool {
				return contains(a, `mobil orani|mobil yuzde|desktop orani`)
			},
			handle: s.handleDeviceRatio,
		},
	}
}

// scopedFilters turns extracted filters into report filters with the
// brand prefix applied to custom dimensions. A single publish day
// filters directly; multi-day windows go through runScoped instead.
func (s *Session) scopedFilters(a analyze.Analysis) map[string]string {
	if len(a.Filters) == 0 && a.Publish.IsZero() {
		return nil
	}
	filters := make(map[string]string, len(a.Filters)+1)
	for _, f := range a.Filters {
		filters[catalog.ScopeDimension(f.Dimension, s.brand)] = f.Value
	}
	if !a.Publish.IsZero() && a.Publish.Single() {
		filters[catalog.ScopeDimension("publisheddate", s.brand)] = a.Publish.Start
	}
	return filters
}

// runScoped runs a query honoring the publish window. A multi-day
// window cannot be an equality filter: the query instead groups on the
// publish date dimension and the rows inside the window are merged
// back onto the caller's dimensions.
func (s *Session) runScoped(ctx context.Context, a analyze.Analysis, q report.Query) ([]report.Row, error) {
	if a.Publish.IsZero() || a.Publish.Single() {
		return s.runner.RunReport(ctx, q)
	}

	dim := catalog.ScopeDimension("publisheddate", s.brand)
	grouped := q
	grouped.Dimensions = append(append([]string{}, q.Dimensions...), dim)
	grouped.Limit = s.cfg.CandidateFetchLimit

	rows, err := s.runner.RunReport(ctx, grouped)
	if err != nil {
		return nil, err
	}

	var merged []report.Row
	index := make(map[string]int)
	for _, row := range rows {
		if !a.Publish.Contains(row.Dimensions[dim]) {
			continue
		}
		keyParts := make([]string, len(q.Dimensions))
		dims := make(map[string]string, len(q.Dimensions))
		for i, d := range q.Dimensions {
			dims[d] = row.Dimensions[d]
			keyParts[i] = row.Dimensions[d]
		}
		key := strings.Join(keyParts, "\x00")
		at, ok := index[key]
		if !ok {
			at = len(merged)
			index[key] = at
			merged = append(merged, report.Row{Dimensions: dims, Metrics: make(map[string]float64)})
		}
		for name, value := range row.Metrics {
			merged[at].Metrics[name] += value
		}
	}

	if q.OrderBy != "" {
		sort.SliceStable(merged, func(i, j int) bool {
			if q.Desc {
				return merged[i].Metrics[q.OrderBy] > merged[j].Metrics[q.OrderBy]
			}
			return merged[i].Metrics[q.OrderBy] < merged[j].Metrics[q.OrderBy]
		})
	}
	if q.Limit > 0 && len(merged) > q.Limit {
		merged = merged[:q.Limit]
	}
	return merged, nil
}

func (s *Session) metricsOrDefault(a analyze.Analysis, fallback []string) []string {
	if len(a.Metrics) > 0 {
		return a.Metrics
	}
	if len(fallback) > 0 {
		return fallback
	}
	return []string{"screenPageViews", "totalUsers", "sessions"}
}

func (s *Session) limitOrDefault(a analyze.Analysis) int {
	if a.Limit > 0 {
		return a.Limit
	}
	return s.cfg.DefaultRowLimit
}

// breakdown is the shared list handler: group by dims, order by the
// first metric, render a table.
func (s *Session) breakdown(ctx context.Context, a analyze.Analysis, title string, dims, metrics []string) (string, error) {
	metrics = s.metricsOrDefault(a, metrics)
	scopedDims := make([]string, len(dims))
	for i, d := range dims {
		scopedDims[i] = catalog.ScopeDimension(d, s.brand)
	}

	rows, err := s.runScoped(ctx, a, report.Query{
		Dimensions: scopedDims,
		Metrics:    metrics,
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		Filters:    s.scopedFilters(a),
		OrderBy:    metrics[0],
		Desc:       a.Desc,
		Limit:      s.limitOrDefault(a),
	})
	if err != nil {
		return "", fmt.Errorf("%s report: %w", strings.ToLower(title), err)
	}

	fullTitle := fmt.Sprintf("%s - %s", title, periodLabel(a.Dates.Start, a.Dates.End))
	return renderTable(fullTitle, scopedDims, metrics, rows, s.cfg.MaxTableRows), nil
}

// channelReport lists the top pages reached through one acquisition
// channel.
func (s *Session) channelReport(ctx context.Context, a analyze.Analysis, title, channel string) (string, error) {
	filters := s.scopedFilters(a)
	if filters == nil {
		filters = make(map[string]string, 1)
	}
	filters["sessionDefaultChannelGroup"] = channel

	metrics := s.metricsOrDefault(a, []string{"sessions", "screenPageViews"})
	rows, err := s.runScoped(ctx, a, report.Query{
		Dimensions: []string{"pagePath", "pageTitle"},
		Metrics:    metrics,
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		Filters:    filters,
		OrderBy:    metrics[0],
		Desc:       true,
		Limit:      s.limitOrDefault(a),
	})
	if err != nil {
		return "", fmt.Errorf("channel report: %w", err)
	}
	fullTitle := fmt.Sprintf("%s - %s", title, periodLabel(a.Dates.Start, a.Dates.End))
	return renderTable(fullTitle, []string{"pagePath", "pageTitle"}, metrics, rows, s.cfg.MaxTableRows), nil
}

func (s *Session) handleSimpleMetric(ctx context.Context, a analyze.Analysis) (string, error) {
	rows, err := s.runScoped(ctx, a, report.Query{
		Metrics:   a.Metrics,
		StartDate: a.Dates.Start,
		EndDate:   a.Dates.End,
		Filters:   s.scopedFilters(a),
	})
	if err != nil {
		return "", fmt.Errorf("metric report: %w", err)
	}
	if len(rows) == 0 {
		return "Veri bulunamadi.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", periodLabel(a.Dates.Start, a.Dates.End))
	for _, metric := range a.Metrics {
		fmt.Fprintf(&b, "  %s: %s\n", catalog.DisplayLabel(metric), formatMetricValue(metric, rows[0].Metrics[metric]))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Session) handleHourlyTraffic(ctx context.Context, a analyze.Analysis) (string, error) {
	metrics := s.metricsOrDefault(a, []string{"screenPageViews", "sessions"})
	rows, err := s.runScoped(ctx, a, report.Query{
		Dimensions: []string{"hour"},
		Metrics:    metrics,
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		Filters:    s.scopedFilters(a),
		OrderBy:    "hour",
		Limit:      24,
	})
	if err != nil {
		return "", fmt.Errorf("hourly report: %w", err)
	}
	title := fmt.Sprintf("Saatlik Trafik - %s", periodLabel(a.Dates.Start, a.Dates.End))
	return renderTable(title, []string{"hour"}, metrics, rows, 24), nil
}

func (s *Session) handleDailyTrend(ctx context.Context, a analyze.Analysis) (string, error) {
	dates := a.Dates
	// A single-day period has no trend; widen to a week.
	if dates.Start == dates.End {
		dates = extract.DateRange{Start: "7daysAgo", End: "yesterday"}
	}
	metrics := s.metricsOrDefault(a, []string{"screenPageViews", "totalUsers"})
	rows, err := s.runScoped(ctx, a, report.Query{
		Dimensions: []string{"date"},
		Metrics:    metrics,
		StartDate:  dates.Start,
		EndDate:    dates.End,
		Filters:    s.scopedFilters(a),
		OrderBy:    "date",
		Limit:      366,
	})
	if err != nil {
		return "", fmt.Errorf("daily trend report: %w", err)
	}
	title := fmt.Sprintf("Gunluk Trend - %s", periodLabel(dates.Start, dates.End))
	return renderTable(title, []string{"date"}, metrics, rows, 31), nil
}

func (s *Session) handleWeeklyTrend(ctx context.Context, a analyze.Analysis) (string, error) {
	dates := a.Dates
	if dates.Start == dates.End {
		dates = extract.DateRange{Start: "30daysAgo", End: "yesterday"}
	}
	a.Dates = dates
	return s.handleDailyTrend(ctx, a)
}

func (s *Session) handleSummary(ctx context.Context, a analyze.Analysis) (string, error) {
	metrics := []string{"screenPageViews", "totalUsers", "sessions", "newUsers"}
	totals, err := s.runScoped(ctx, a, report.Query{
		Metrics:   metrics,
		StartDate: a.Dates.Start,
		EndDate:   a.Dates.End,
		Filters:   s.scopedFilters(a),
	})
	if err != nil {
		return "", fmt.Errorf("summary totals: %w", err)
	}

	title := fmt.Sprintf("Genel Ozet - %s", periodLabel(a.Dates.Start, a.Dates.End))
	if len(totals) == 0 {
		return title + "\nVeri bulunamadi.", nil
	}

	var b strings.Builder
	b.WriteString(renderScorecard(title, metrics, totals[0]))

	pages, err := s.runScoped(ctx, a, report.Query{
		Dimensions: []string{"pagePath", "pageTitle"},
		Metrics:    []string{"screenPageViews"},
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		Filters:    s.scopedFilters(a),
		OrderBy:    "screenPageViews",
		Desc:       true,
		Limit:      5,
	})
	if err != nil {
		return "", fmt.Errorf("summary pages: %w", err)
	}
	if len(pages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(renderTable("En Cok Okunanlar", []string{"pagePath", "pageTitle"}, []string{"screenPageViews"}, pages, 5))
	}
	return b.String(), nil
}

// handleCompare answers "X ile Y karsilastir" style questions when both
// sides resolve to a value of the same dimension.
func (s *Session) handleCompare(ctx context.Context, a analyze.Analysis) (string, error) {
	cmp := a.Comparison
	if cmp == nil || cmp.First == "" || cmp.Second == "" {
		return "Neyi neyle karsilastirmak istediginizi yazin, ornegin: spor ile ekonomi karsilastir", nil
	}

	firstFilters := extract.ExtractFilters(cmp.First)
	secondFilters := extract.ExtractFilters(cmp.Second)
	if len(firstFilters) != 1 || len(secondFilters) != 1 || firstFilters[0].Dimension != secondFilters[0].Dimension {
		return fmt.Sprintf("%q ile %q ayni turden degil, karsilastiramadim.", cmp.First, cmp.Second), nil
	}

	dim := catalog.ScopeDimension(firstFilters[0].Dimension, s.brand)
	metrics := s.metricsOrDefault(a, []string{"screenPageViews", "totalUsers", "sessions"})

	var b strings.Builder
	fmt.Fprintf(&b, "Karsilastirma - %s\n", periodLabel(a.Dates.Start, a.Dates.End))
	for _, side := range []extract.Filter{firstFilters[0], secondFilters[0]} {
		rows, err := s.runner.RunReport(ctx, report.Query{
			Metrics:   metrics,
			StartDate: a.Dates.Start,
			EndDate:   a.Dates.End,
			Filters:   map[string]string{dim: side.Value},
		})
		if err != nil {
			return "", fmt.Errorf("compare report: %w", err)
		}
		fmt.Fprintf(&b, "\n%s:\n", side.Value)
		if len(rows) == 0 {
			b.WriteString("  Veri bulunamadi.\n")
			continue
		}
		for _, metric := range metrics {
			fmt.Fprintf(&b, "  %s: %s\n", catalog.DisplayLabel(metric), formatMetricValue(metric, rows[0].Metrics[metric]))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *Session) handleNewVsReturning(ctx context.Context, a analyze.Analysis) (string, error) {
	rows, err := s.runScoped(ctx, a, report.Query{
		Metrics:   []string{"totalUsers", "newUsers", "returningUsers"},
		StartDate: a.Dates.Start,
		EndDate:   a.Dates.End,
		Filters:   s.scopedFilters(a),
	})
	if err != nil {
		return "", fmt.Errorf("new vs returning report: %w", err)
	}
	title := fmt.Sprintf("Yeni / Geri Donen - %s", periodLabel(a.Dates.Start, a.Dates.End))
	if len(rows) == 0 {
		return title + "\nVeri bulunamadi.", nil
	}

	total := rows[0].Metrics["totalUsers"]
	newUsers := rows[0].Metrics["newUsers"]
	returning := rows[0].Metrics["returningUsers"]
	var b strings.Builder
	b.WriteString(title + "\n")
	if total > 0 {
		fmt.Fprintf(&b, "  Yeni: %s (%%%.1f)\n", formatNumber(newUsers), 100*newUsers/total)
		fmt.Fprintf(&b, "  Geri Donen: %s (%%%.1f)", formatNumber(returning), 100*returning/total)
	} else {
		b.WriteString("  Veri bulunamadi.")
	}
	return b.String(), nil
}

func (s *Session) handleRealTime(ctx context.Context, a analyze.Analysis) (string, error) {
	rows, err := s.runner.RunReport(ctx, report.Query{
		Metrics:   []string{"activeUsers", "screenPageViews"},
		StartDate: "today",
		EndDate:   "today",
		Filters:   s.scopedFilters(a),
	})
	if err != nil {
		return "", fmt.Errorf("realtime report: %w", err)
	}
	if len(rows) == 0 {
		return "Su an icin veri bulunamadi.", nil
	}
	return fmt.Sprintf("Su an: %s aktif kullanici, bugun %s goruntuleme",
		formatNumber(rows[0].Metrics["activeUsers"]),
		formatNumber(rows[0].Metrics["screenPageViews"])), nil
}

func (s *Session) handleDeviceRatio(ctx context.Context, a analyze.Analysis) (string, error) {
	rows, err := s.runner.RunReport(ctx, report.Query{
		Dimensions: []string{"deviceCategory"},
		Metrics:    []string{"sessions"},
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		OrderBy:    "sessions",
		Desc:       true,
		Limit:      10,
	})
	if err != nil {
		return "", fmt.Errorf("device ratio report: %w", err)
	}
	title := fmt.Sprintf("Cihaz Oranlari - %s", periodLabel(a.Dates.Start, a.Dates.End))
	if len(rows) == 0 {
		return title + "\nVeri bulunamadi.", nil
	}

	var total float64
	for _, row := range rows {
		total += row.Metrics["sessions"]
	}
	var b strings.Builder
	b.WriteString(title + "\n")
	for _, row := range rows {
		share := 0.0
		if total > 0 {
			share = 100 * row.Metrics["sessions"] / total
		}
		fmt.Fprintf(&b, "  %s: %s (%%%.1f)\n", row.Dimensions["deviceCategory"], formatNumber(row.Metrics["sessions"]), share)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
