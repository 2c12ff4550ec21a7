// Package report defines the reporting query model and the Runner
// interface the rest of the application builds queries against.
package report

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Query describes one aggregated report request. StartDate and EndDate
// accept ISO dates (2025-01-31) or the symbolic values "today",
// "yesterday" and "NdaysAgo"; a Runner resolves symbolic dates against
// its clock before executing.
type Query struct {
	Dimensions []string
	Metrics    []string
	StartDate  string
	EndDate    string
	Filters    map[string]string
	OrderBy    string
	Desc       bool
	Limit      int
}

// Row is one aggregated result row.
type Row struct {
	Dimensions map[string]string
	Metrics    map[string]float64
}

// Runner executes report queries against a data backend.
type Runner interface {
	RunReport(ctx context.Context, q Query) ([]Row, error)
}

var daysAgoPattern = regexp.MustCompile(`^(\d+)daysAgo$`)

// ResolveDate turns a symbolic or ISO date into a concrete day.
func ResolveDate(value string, today time.Time) (time.Time, error) {
	switch value {
	case "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}
	if m := daysAgoPattern.FindStringSubmatch(value); m != nil {
		n, _ := strconv.Atoi(m[1])
		return today.AddDate(0, 0, -n), nil
	}
	t, err := time.ParseInLocation("2006-01-02", value, today.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("unsupported date value %q: %w", value, err)
	}
	return t, nil
}
