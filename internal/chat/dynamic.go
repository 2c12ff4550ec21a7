package chat

import (
	"context"
	"fmt"

	"raporbot/internal/analyze"
	"raporbot/internal/catalog"
	"raporbot/internal/match"
	"raporbot/internal/report"
)

const (
	maxDynamicDimensions = 3
	maxDynamicMetrics    = 4
)

// answerDynamic is the last resort before giving up: build a query from
// whatever the matchers can recognize in the question.
func (s *Session) answerDynamic(ctx context.Context, a analyze.Analysis) (string, bool) {
	dims := s.dynamicDimensions(a)
	metrics := s.dynamicMetrics(a)

	// Nothing recognized and nothing filtered: no basis for a query.
	if len(a.Metrics) == 0 && len(a.Filters) == 0 && a.Publish.IsZero() {
		dimMatches := s.dimMatcher.Extract(a.Text)
		if len(dimMatches) == 0 {
			_, confidence := s.metricMatcher.Suggest(a.Text)
			if confidence == match.ConfidenceLow {
				return "", false
			}
		}
	}

	rows, err := s.runScoped(ctx, a, report.Query{
		Dimensions: dims,
		Metrics:    metrics,
		StartDate:  a.Dates.Start,
		EndDate:    a.Dates.End,
		Filters:    s.scopedFilters(a),
		OrderBy:    metrics[0],
		Desc:       a.Desc,
		Limit:      s.limitOrDefault(a),
	})
	if err != nil {
		s.log.WithError(err).Debug("dynamic query failed")
		return "", false
	}

	title := fmt.Sprintf("Sonuclar - %s", periodLabel(a.Dates.Start, a.Dates.End))
	return renderTable(title, dims, metrics, rows, s.cfg.MaxTableRows), true
}

// dynamicDimensions picks grouping dimensions from the question, or
// derives them from the filters when the question names none.
func (s *Session) dynamicDimensions(a analyze.Analysis) []string {
	var dims []string
	seen := make(map[string]bool)
	add := func(name string) {
		scoped := catalog.ScopeDimension(name, s.brand)
		if !seen[scoped] && len(dims) < maxDynamicDimensions {
			seen[scoped] = true
			dims = append(dims, scoped)
		}
	}

	for _, m := range s.dimMatcher.Extract(a.Text) {
		add(m.Name)
	}
	if len(dims) > 0 {
		return dims
	}

	// Group by something sensible for the filter at hand.
	for _, f := range a.Filters {
		switch f.Dimension {
		case "cat1":
			add("pagePath")
			add("pageTitle")
		case "country", "city":
			add("sessionDefaultChannelGroup")
		case "deviceCategory":
			add("pagePath")
		default:
			add("pagePath")
		}
		break
	}
	if len(dims) == 0 {
		add("pagePath")
	}
	return dims
}

func (s *Session) dynamicMetrics(a analyze.Analysis) []string {
	metrics := a.Metrics
	if len(metrics) == 0 {
		for _, m := range s.metricMatcher.Extract(a.Text) {
			metrics = append(metrics, m.Name)
		}
	}
	if len(metrics) == 0 {
		metrics = []string{"screenPageViews", "totalUsers", "sessions"}
	}
	if len(metrics) > maxDynamicMetrics {
		metrics = metrics[:maxDynamicMetrics]
	}
	return metrics
}
