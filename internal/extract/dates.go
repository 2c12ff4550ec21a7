package extract

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"raporbot/internal/pkg/clock"
	"raporbot/internal/pkg/turkish"
)

// DateRange holds a reporting period. Start and End are ISO dates or
// the symbolic values "today", "yesterday" and "NdaysAgo".
type DateRange struct {
	Start string
	End   string
}

// DefaultDateRange is used when a question carries no period at all.
var DefaultDateRange = DateRange{Start: "yesterday", End: "yesterday"}

var monthNumbers = map[string]time.Month{
	"ocak":    time.January,
	"subat":   time.February,
	"mart":    time.March,
	"nisan":   time.April,
	"mayis":   time.May,
	"haziran": time.June,
	"temmuz":  time.July,
	"agustos": time.August,
	"eylul":   time.September,
	"ekim":    time.October,
	"kasim":   time.November,
	"aralik":  time.December,
}

var numberWords = map[string]int{
	"bir":   1,
	"iki":   2,
	"uc":    3,
	"dort":  4,
	"bes":   5,
	"alti":  6,
	"yedi":  7,
	"sekiz": 8,
	"dokuz": 9,
	"on":    10,
	"yirmi": 20,
	"otuz":  30,
}

const monthAlternation = `ocak|subat|mart|nisan|mayis|haziran|temmuz|agustos|eylul|ekim|kasim|aralik`
const countAlternation = `\d+|bir|iki|uc|dort|bes|alti|yedi|sekiz|dokuz|on|yirmi|otuz`

// periodMarker binds a pattern to a symbolic period. Patterns are tried
// in order so specific phrasings win over generic ones: weekend phrases
// before week phrases, counted periods before bare "son hafta".
type periodMarker struct {
	pattern string
	marker  string
}

var periodMarkers = []periodMarker{
	{`gecen hafta ?sonu`, "last_weekend"},
	{`bu hafta ?sonu`, "this_weekend"},
	{`hafta ?sonu`, "last_weekend"},
	{`bugun|su an|suan|simdi|anlik|gun icinde`, "today"},
	{`dun\b|bir gun once|gecen gun`, "yesterday"},
	{`evvelki gun|evvelsi gun`, "2daysAgo"},
	{`(` + countAlternation + `) gun once`, "days_ago"},
	{`(` + countAlternation + `) hafta once`, "weeks_ago"},
	{`(` + countAlternation + `) ay once`, "months_ago"},
	{`son (` + countAlternation + `) gun`, "last_n_days"},
	{`son (` + countAlternation + `) hafta`, "last_n_weeks"},
	{`son (` + countAlternation + `) ay`, "last_n_months"},
	{`son (` + countAlternation + `) yil`, "last_n_years"},
	{`son hafta\b`, "last_week"},
	{`son ay\b`, "last_month"},
	{`son yil\b`, "last_year"},
	{`gecen hafta|onceki hafta|gectigimiz hafta`, "last_week"},
	{`gecen ay|onceki ay|gectigimiz ay`, "last_month"},
	{`bu hafta|icinde bulundugumuz hafta|mevcut hafta|haftanin basindan`, "this_week"},
	{`bu ay|icinde bulundugumuz ay|mevcut ay|ayin basindan`, "this_month"},
	{`bu yil|ocaktan beri|yilbasindan beri|yilin basindan`, "this_year"},
	{`gecen yil|onceki yil|gectigimiz yil`, "last_year"},
	{`bu ceyrek|icinde bulundugumuz ceyrek`, "this_quarter"},
	{`gecen ceyrek|onceki ceyrek|son ceyrek`, "last_quarter"},
	{`ilk ceyrek|birinci ceyrek|1\. ?ceyrek`, "q1"},
	{`ikinci ceyrek|2\. ?ceyrek`, "q2"},
	{`ucuncu ceyrek|3\. ?ceyrek`, "q3"},
	{`dorduncu ceyrek|4\. ?ceyrek`, "q4"},
	{`\bq1\b`, "q1"},
	{`\bq2\b`, "q2"},
	{`\bq3\b`, "q3"},
	{`\bq4\b`, "q4"},
	{`\b(` + monthAlternation + `)( ayi)?\b`, "month"},
	{`yeni yil|yilbasi`, "new_year"},
}

// DateExtractor finds the reporting period in a Turkish question.
type DateExtractor struct {
	timeProv clock.TimeProvider
	location *time.Location
}

func NewDateExtractor(loc *time.Location, timeProvider ...clock.TimeProvider) *DateExtractor {
	var provider clock.TimeProvider = &clock.DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.Local
	}
	return &DateExtractor{timeProv: provider, location: loc}
}

// Extract returns the period the question asks about, falling back to
// yesterday when nothing matches.
func (e *DateExtractor) Extract(text string) DateRange {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))
	today := e.timeProv.Now(e.location)

	if r, ok := e.explicitDayRange(normalized, today); ok {
		return r
	}
	if r, ok := e.explicitSingleDay(normalized, today); ok {
		return r
	}

	for _, pm := range periodMarkers {
		m := findSubmatch(pm.pattern, normalized)
		if m == nil {
			continue
		}
		if r, ok := e.resolveMarker(pm.marker, m, today); ok {
			return r
		}
	}

	return DefaultDateRange
}

// explicitDayRange handles "5-10 aralik" style spans.
func (e *DateExtractor) explicitDayRange(text string, today time.Time) (DateRange, bool) {
	m := findSubmatch(`(\d{1,2}) ?[-–] ?(\d{1,2}) (`+monthAlternation+`)`, text)
	if m == nil {
		return DateRange{}, false
	}
	firstDay, _ := strconv.Atoi(m[1])
	lastDay, _ := strconv.Atoi(m[2])
	month := monthNumbers[m[3]]

	year := inferYear(month, today)
	start, ok := validDate(year, month, firstDay, e.location)
	if !ok {
		return DateRange{}, false
	}
	end, ok := validDate(year, month, lastDay, e.location)
	if !ok {
		return DateRange{}, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	return isoRange(start, end), true
}

// explicitSingleDay handles "15 aralik" style single days.
func (e *DateExtractor) explicitSingleDay(text string, today time.Time) (DateRange, bool) {
	m := findSubmatch(`(\d{1,2}) (`+monthAlternation+`)`, text)
	if m == nil {
		return DateRange{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month := monthNumbers[m[2]]

	year := inferYear(month, today)
	if month == today.Month() && day > today.Day() {
		year--
	}
	date, ok := validDate(year, month, day, e.location)
	if !ok {
		return DateRange{}, false
	}
	return isoRange(date, date), true
}

func (e *DateExtractor) resolveMarker(marker string, m []string, today time.Time) (DateRange, bool) {
	switch marker {
	case "today":
		return DateRange{Start: "today", End: "today"}, true
	case "yesterday":
		return DateRange{Start: "yesterday", End: "yesterday"}, true
	case "2daysAgo":
		return DateRange{Start: "2daysAgo", End: "2daysAgo"}, true
	case "days_ago", "weeks_ago", "months_ago":
		n, ok := parseCount(m[1])
		if !ok {
			return DateRange{}, false
		}
		switch marker {
		case "weeks_ago":
			n *= 7
		case "months_ago":
			n *= 30
		}
		token := fmt.Sprintf("%ddaysAgo", n)
		return DateRange{Start: token, End: token}, true
	case "last_n_days", "last_n_weeks", "last_n_months", "last_n_years":
		n, ok := parseCount(m[1])
		if !ok {
			return DateRange{}, false
		}
		switch marker {
		case "last_n_weeks":
			n *= 7
		case "last_n_months":
			n *= 30
		case "last_n_years":
			n *= 365
		}
		return DateRange{Start: fmt.Sprintf("%ddaysAgo", n), End: "yesterday"}, true
	case "last_week":
		weekday := int(today.Weekday()+6) % 7 // Monday = 0
		monday := today.AddDate(0, 0, -weekday-7)
		return isoRange(monday, monday.AddDate(0, 0, 6)), true
	case "this_week":
		weekday := int(today.Weekday()+6) % 7
		monday := today.AddDate(0, 0, -weekday)
		return isoRange(monday, today), true
	case "last_month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, e.location).AddDate(0, -1, 0)
		return isoRange(first, first.AddDate(0, 1, -1)), true
	case "this_month":
		first := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, e.location)
		return isoRange(first, today), true
	case "this_year":
		first := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, e.location)
		return isoRange(first, today), true
	case "last_year":
		first := time.Date(today.Year()-1, time.January, 1, 0, 0, 0, 0, e.location)
		return isoRange(first, time.Date(today.Year()-1, time.December, 31, 0, 0, 0, 0, e.location)), true
	case "this_quarter":
		return e.quarterRange(currentQuarter(today), today.Year(), today), true
	case "last_quarter":
		q := currentQuarter(today) - 1
		year := today.Year()
		if q < 1 {
			q = 4
			year--
		}
		return e.quarterRange(q, year, today), true
	case "q1", "q2", "q3", "q4":
		q := int(marker[1] - '0')
		year := today.Year()
		// A quarter that has not started yet refers to last year's.
		if q > currentQuarter(today) {
			year--
		}
		return e.quarterRange(q, year, today), true
	case "month":
		month := monthNumbers[m[1]]
		year := inferYear(month, today)
		first := time.Date(year, month, 1, 0, 0, 0, 0, e.location)
		end := first.AddDate(0, 1, -1)
		if end.After(today) {
			end = today
		}
		return isoRange(first, end), true
	case "new_year":
		year := today.Year()
		if today.Month() == time.January && today.Day() == 1 {
			year--
		}
		day := time.Date(year, time.January, 1, 0, 0, 0, 0, e.location)
		return isoRange(day, day), true
	case "last_weekend":
		sunday := today.AddDate(0, 0, -((int(today.Weekday()) + 7) % 7))
		if today.Weekday() == time.Sunday {
			// Mid-weekend the phrase still means the ongoing one.
			return isoRange(today.AddDate(0, 0, -1), today), true
		}
		return isoRange(sunday.AddDate(0, 0, -1), sunday), true
	case "this_weekend":
		weekday := int(today.Weekday()+6) % 7
		saturday := today.AddDate(0, 0, 5-weekday)
		end := saturday.AddDate(0, 0, 1)
		if end.After(today) && saturday.After(today) {
			// The weekend has not started; report up to today anyway.
			return isoRange(saturday, end), true
		}
		if end.After(today) {
			end = today
		}
		return isoRange(saturday, end), true
	}
	return DateRange{}, false
}

func (e *DateExtractor) quarterRange(q, year int, today time.Time) DateRange {
	first := time.Date(year, time.Month((q-1)*3+1), 1, 0, 0, 0, 0, e.location)
	end := first.AddDate(0, 3, -1)
	if end.After(today) {
		end = today
	}
	return isoRange(first, end)
}

func currentQuarter(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}

// inferYear picks the most recent occurrence of a month: a month later
// than the current one must belong to last year.
func inferYear(month time.Month, today time.Time) int {
	if month > today.Month() {
		return today.Year() - 1
	}
	return today.Year()
}

func validDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Month() != month || t.Day() != day {
		return time.Time{}, false
	}
	return t, true
}

func parseCount(raw string) (int, bool) {
	if n, err := strconv.Atoi(raw); err == nil {
		return n, n > 0
	}
	n, ok := numberWords[strings.TrimSpace(raw)]
	return n, ok
}

func isoRange(start, end time.Time) DateRange {
	return DateRange{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}
}
