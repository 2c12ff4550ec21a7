package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"raporbot/internal/catalog"
	"raporbot/internal/pkg/clock"
)

// ContentStat is one pre-aggregated daily row of traffic per page and
// content attributes. The seeder and ingest tooling fill this table.
type ContentStat struct {
	ID              uint   `gorm:"primaryKey;autoIncrement"`
	Brand           string `gorm:"index:idx_brand_date;not null"`
	Date            string `gorm:"index:idx_brand_date;not null"` // 2006-01-02
	Hour            int
	PagePath        string `gorm:"index"`
	PageTitle       string
	Category        string `gorm:"index"`
	SubCategory     string
	NewsType        string
	PageType        string
	Editor          string `gorm:"index"`
	Author          string `gorm:"index"`
	Tag             string
	PublishedDate   string // 20060102
	NewsID          string
	Country         string
	City            string
	DeviceCategory  string
	Channel         string
	Source          string
	Browser         string
	OperatingSystem string
	NewVsReturning  string
	PageViews       int64
	Users           int64
	Sessions        int64
	NewUsers        int64
	EngagedSessions int64
	TotalDuration   float64 // seconds, summed over hits
	ScrollDepth     float64
}

// dimensionColumns maps canonical dimension names to table columns.
// Brand-scoped custom dimensions are stripped back to their generic
// names before lookup.
var dimensionColumns = map[string]string{
	"pagePath":                   "page_path",
	"pageTitle":                  "page_title",
	"landingPage":                "page_path",
	"exitPage":                   "page_path",
	"hostname":                   "brand",
	"date":                       "date",
	"hour":                       "hour",
	"country":                    "country",
	"city":                       "city",
	"deviceCategory":             "device_category",
	"sessionDefaultChannelGroup": "channel",
	"source":                     "source",
	"browser":                    "browser",
	"operatingSystem":            "operating_system",
	"newVsReturning":             "new_vs_returning",
	"cat1":                       "category",
	"cat2":                       "sub_category",
	"newstype":                   "news_type",
	"pagetype":                   "page_type",
	"editor":                     "editor",
	"author":                     "author",
	"tag":                        "tag",
	"publisheddate":              "published_date",
	"newsid":                     "news_id",
}

// metricColumns maps canonical metric names to SUM expressions. Ratio
// metrics are derived from the summed columns.
var metricColumns = map[string]string{
	"screenPageViews":           "SUM(page_views)",
	"totalUsers":                "SUM(users)",
	"activeUsers":               "SUM(users)",
	"sessions":                  "SUM(sessions)",
	"newUsers":                  "SUM(new_users)",
	"returningUsers":            "SUM(users) - SUM(new_users)",
	"engagedSessions":           "SUM(engaged_sessions)",
	"engagementRate":            "CAST(SUM(engaged_sessions) AS REAL) / MAX(SUM(sessions), 1)",
	"bounceRate":                "1.0 - CAST(SUM(engaged_sessions) AS REAL) / MAX(SUM(sessions), 1)",
	"averageSessionDuration":    "SUM(total_duration) / MAX(SUM(sessions), 1)",
	"averageDuration":           "SUM(total_duration) / MAX(SUM(page_views), 1)",
	"userEngagementDuration":    "SUM(total_duration)",
	"sessionsPerUser":           "CAST(SUM(sessions) AS REAL) / MAX(SUM(users), 1)",
	"screenPageViewsPerSession": "CAST(SUM(page_views) AS REAL) / MAX(SUM(sessions), 1)",
	"entrances":                 "SUM(sessions)",
	"exits":                     "SUM(sessions)",
	"eventCount":                "SUM(page_views)",
	"conversions":               "SUM(engaged_sessions)",
	"maxScroll":                 "MAX(scroll_depth)",
}

// LocalRunner executes report queries against the local SQLite store.
type LocalRunner struct {
	db       *gorm.DB
	brand    catalog.Brand
	timeProv clock.TimeProvider
	location *time.Location
}

func NewLocalRunner(db *gorm.DB, brand catalog.Brand, loc *time.Location, timeProvider ...clock.TimeProvider) *LocalRunner {
	var provider clock.TimeProvider = &clock.DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.Local
	}
	return &LocalRunner{db: db, brand: brand, timeProv: provider, location: loc}
}

func (r *LocalRunner) RunReport(ctx context.Context, q Query) ([]Row, error) {
	today := r.timeProv.Now(r.location)

	start, err := ResolveDate(q.StartDate, today)
	if err != nil {
		return nil, fmt.Errorf("resolving start date: %w", err)
	}
	end, err := ResolveDate(q.EndDate, today)
	if err != nil {
		return nil, fmt.Errorf("resolving end date: %w", err)
	}

	var selects []string
	var groups []string
	for _, dim := range q.Dimensions {
		col, err := r.dimensionColumn(dim)
		if err != nil {
			return nil, err
		}
		selects = append(selects, fmt.Sprintf("%s AS %q", col, dim))
		groups = append(groups, col)
	}
	for _, metric := range q.Metrics {
		expr, ok := metricColumns[metric]
		if !ok {
			return nil, fmt.Errorf("unknown metric %q", metric)
		}
		selects = append(selects, fmt.Sprintf("%s AS %q", expr, metric))
	}
	if len(selects) == 0 {
		return nil, fmt.Errorf("query needs at least one dimension or metric")
	}

	tx := r.db.WithContext(ctx).Model(&ContentStat{}).
		Select(strings.Join(selects, ", ")).
		Where("brand = ?", r.brand.Key).
		Where("date >= ? AND date <= ?", start.Format("2006-01-02"), end.Format("2006-01-02"))

	for name, value := range q.Filters {
		col, err := r.dimensionColumn(name)
		if err != nil {
			return nil, err
		}
		if strings.ContainsAny(value, "%_") {
			tx = tx.Where(fmt.Sprintf("%s LIKE ?", col), value)
		} else {
			tx = tx.Where(fmt.Sprintf("%s = ?", col), value)
		}
	}

	if len(groups) > 0 {
		tx = tx.Group(strings.Join(groups, ", "))
	}

	orderBy := q.OrderBy
	if orderBy == "" && len(q.Metrics) > 0 {
		orderBy = q.Metrics[0]
	}
	if orderBy != "" {
		direction := "ASC"
		if q.Desc {
			direction = "DESC"
		}
		tx = tx.Order(fmt.Sprintf("%q %s", orderBy, direction))
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	raw, err := runRows(tx)
	if err != nil {
		return nil, fmt.Errorf("running report: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for _, record := range raw {
		row := Row{
			Dimensions: make(map[string]string, len(q.Dimensions)),
			Metrics:    make(map[string]float64, len(q.Metrics)),
		}
		for _, dim := range q.Dimensions {
			row.Dimensions[dim] = toString(record[dim])
		}
		for _, metric := range q.Metrics {
			row.Metrics[metric] = toFloat(record[metric])
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (r *LocalRunner) dimensionColumn(name string) (string, error) {
	col, ok := dimensionColumns[catalog.StripBrandPrefix(name)]
	if !ok {
		return "", fmt.Errorf("unknown dimension %q", name)
	}
	return col, nil
}

func runRows(tx *gorm.DB) ([]map[string]interface{}, error) {
	var records []map[string]interface{}
	if err := tx.Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func toString(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []byte:
		return string(value)
	case int64:
		return fmt.Sprintf("%d", value)
	case float64:
		return fmt.Sprintf("%g", value)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func toFloat(v interface{}) float64 {
	switch value := v.(type) {
	case float64:
		return value
	case float32:
		return float64(value)
	case int64:
		return float64(value)
	case int:
		return float64(value)
	case []byte:
		var f float64
		fmt.Sscanf(string(value), "%g", &f)
		return f
	case string:
		var f float64
		fmt.Sscanf(value, "%g", &f)
		return f
	default:
		return 0
	}
}
