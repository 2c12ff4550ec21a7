package extract

import (
	"strconv"
	"time"

	"raporbot/internal/pkg/clock"
	"raporbot/internal/pkg/turkish"
)

// publishCues gate the publish date extraction: a bare date in the
// question is a reporting period, not a publish constraint, unless one
// of these patterns appears.
var publishCues = []string{
	`yayinla`,
	`yayimla`,
	`yayin tarihli`,
	`yayina giren`,
	`girilen haber`,
	`yazdigi`,
	`girdigi`,
	`ekledigi`,
	`paylastigi`,
}

// PublishRange is a publish date window in the compact YYYYMMDD form
// the publisheddate dimension stores. A single day has Start == End.
type PublishRange struct {
	Start string
	End   string
}

func (r PublishRange) IsZero() bool { return r.Start == "" }

func (r PublishRange) Single() bool { return r.Start == r.End }

// Contains reports whether a compact dimension value falls inside the
// window. Malformed values, "(not set)" included, never match.
func (r PublishRange) Contains(day string) bool {
	return len(day) == 8 && day >= r.Start && day <= r.End
}

// PublishDateExtractor finds publish date constraints.
type PublishDateExtractor struct {
	timeProv clock.TimeProvider
	location *time.Location
}

func NewPublishDateExtractor(loc *time.Location, timeProvider ...clock.TimeProvider) *PublishDateExtractor {
	var provider clock.TimeProvider = &clock.DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.Local
	}
	return &PublishDateExtractor{timeProv: provider, location: loc}
}

// Extract returns the publish window the question asks about. The
// question must carry a publish cue; otherwise nothing is extracted.
func (e *PublishDateExtractor) Extract(text string) (PublishRange, bool) {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))

	cued := false
	for _, cue := range publishCues {
		if matchPattern(cue, normalized) {
			cued = true
			break
		}
	}
	if !cued {
		return PublishRange{}, false
	}

	// An explicit compact date wins over symbolic phrasing.
	if m := findSubmatch(`\b(20\d{6})\b`, normalized); m != nil {
		if _, err := time.Parse("20060102", m[1]); err == nil {
			return PublishRange{Start: m[1], End: m[1]}, true
		}
	}

	today := e.timeProv.Now(e.location)

	// "1-7 aralik" style spans.
	if m := findSubmatch(`(\d{1,2}) ?[-–] ?(\d{1,2}) (`+monthAlternation+`)`, normalized); m != nil {
		firstDay, _ := strconv.Atoi(m[1])
		lastDay, _ := strconv.Atoi(m[2])
		month := monthNumbers[m[3]]
		year := inferYear(month, today)
		start, okStart := validDate(year, month, firstDay, e.location)
		end, okEnd := validDate(year, month, lastDay, e.location)
		if okStart && okEnd {
			if end.Before(start) {
				start, end = end, start
			}
			return compactRange(start, end), true
		}
	}

	switch {
	case matchPattern(`bugun`, normalized):
		return compactRange(today, today), true
	case matchPattern(`dun\b`, normalized):
		yesterday := today.AddDate(0, 0, -1)
		return compactRange(yesterday, yesterday), true
	case matchPattern(`evvelki gun`, normalized):
		day := today.AddDate(0, 0, -2)
		return compactRange(day, day), true
	}

	// A day-month mention also works when cued.
	if m := findSubmatch(`(\d{1,2}) (`+monthAlternation+`)`, normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month := monthNumbers[m[2]]
		year := inferYear(month, today)
		if month == today.Month() && day > today.Day() {
			year--
		}
		if date, ok := validDate(year, month, day, e.location); ok {
			return compactRange(date, date), true
		}
	}

	switch {
	case matchPattern(`gecen hafta|gectigimiz hafta|son 7 gun|son bir hafta|son hafta`, normalized):
		end := today.AddDate(0, 0, -1)
		return compactRange(end.AddDate(0, 0, -6), end), true
	case matchPattern(`son 30 gun|son bir ay|son ay|gecen ay`, normalized):
		end := today.AddDate(0, 0, -1)
		return compactRange(end.AddDate(0, 0, -29), end), true
	}

	return PublishRange{}, false
}

func compactRange(start, end time.Time) PublishRange {
	return PublishRange{
		Start: start.Format("20060102"),
		End:   end.Format("20060102"),
	}
}
