package match

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"raporbot/internal/config"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/pkg/turkish"
	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// MatchStatus is the outcome of an entity resolution.
type MatchStatus string

const (
	StatusSingle   MatchStatus = "single"
	StatusMultiple MatchStatus = "multiple"
	StatusNotFound MatchStatus = "not_found"
	StatusError    MatchStatus = "error"
)

// Candidate is one scored person code.
type Candidate struct {
	Code  string
	Name  string
	Score float64
}

// MatchResult is what Match returns. Candidates is populated on
// StatusMultiple so the caller can run a disambiguation round.
type MatchResult struct {
	Status     MatchStatus
	Best       Candidate
	Candidates []Candidate
}

// EntityMatcher resolves a person mention to the codes that actually
// appear in a reporting dimension. Class is the generic dimension name,
// "editor" or "author".
type EntityMatcher struct {
	Class string

	cfg      *config.Config
	log      *logrus.Logger
	runner   report.Runner
	store    *roster.Store
	timeProv clock.TimeProvider
	location *time.Location

	// nameIndex maps normalized full names, first names and last names
	// to roster codes. Keys shared by several people are dropped at
	// build time.
	nameIndex map[string]string

	cacheMu    sync.Mutex
	cacheDay   string
	candidates []string
}

func NewEntityMatcher(class string, people []roster.Person, runner report.Runner, store *roster.Store, cfg *config.Config, log *logrus.Logger, loc *time.Location, timeProvider ...clock.TimeProvider) *EntityMatcher {
	var provider clock.TimeProvider = &clock.DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		provider = timeProvider[0]
	}
	if loc == nil {
		loc = time.Local
	}
	m := &EntityMatcher{
		Class:     class,
		cfg:       cfg,
		log:       log,
		runner:    runner,
		store:     store,
		timeProv:  provider,
		location:  loc,
		nameIndex: make(map[string]string),
	}
	m.buildNameIndex(people)
	return m
}

func (m *EntityMatcher) buildNameIndex(people []roster.Person) {
	// A bare first or last name shared by two people pins nobody; those
	// keys are dropped so the scoring path can offer both.
	conflicted := make(map[string]bool)
	put := func(key, code string) {
		key = strings.TrimSpace(key)
		if key == "" {
			return
		}
		if existing, exists := m.nameIndex[key]; exists {
			if existing != code {
				conflicted[key] = true
			}
			return
		}
		m.nameIndex[key] = code
	}
	for _, p := range people {
		full := turkish.NormalizeSpace(turkish.Normalize(p.Name))
		code := turkish.Normalize(p.Code)
		put(full, code)
		words := strings.Fields(full)
		if len(words) > 1 {
			put(words[0], code)
			put(words[len(words)-1], code)
		}
		// Dot variants work in both directions: a stored cem.koca is
		// reachable as cemkoca and a stored ckoca as c.koca.
		if strings.Contains(code, ".") {
			put(strings.ReplaceAll(code, ".", ""), code)
		} else if len(code) > 2 {
			put(code[:1]+"."+code[1:], code)
		}
	}
	for key := range conflicted {
		delete(m.nameIndex, key)
	}
}

// Match resolves term against the roster and the codes seen in the
// reporting data for the given period.
func (m *EntityMatcher) Match(ctx context.Context, term string, dates report.Query, forceRefresh bool) MatchResult {
	normalized := turkish.NormalizeSpace(turkish.Normalize(term))
	if normalized == "" {
		return MatchResult{Status: StatusNotFound}
	}

	// A known roster name pins the code before any data is fetched, so
	// a reporting outage cannot break a name the roster already knows.
	if code, ok := m.nameIndex[normalized]; ok {
		return MatchResult{Status: StatusSingle, Best: m.candidate(code, 1)}
	}

	codes, err := m.candidateCodes(ctx, dates, forceRefresh)
	if err != nil {
		m.log.WithError(err).WithField("class", m.Class).Warn("candidate fetch failed")
		return MatchResult{Status: StatusError}
	}

	// Exact code hit ends the search.
	for _, code := range codes {
		if code == normalized {
			return MatchResult{Status: StatusSingle, Best: m.candidate(code, 1)}
		}
	}

	scored := make([]Candidate, 0, 8)
	for _, code := range codes {
		score := m.scoreCode(code, normalized)
		if score >= m.cfg.EntityScoreFloor {
			scored = append(scored, m.candidate(code, score))
		}
	}
	if len(scored) == 0 {
		return MatchResult{Status: StatusNotFound}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Code < scored[j].Code
	})
	if len(scored) > m.cfg.MaxMatchCandidates {
		scored = scored[:m.cfg.MaxMatchCandidates]
	}

	if len(scored) == 1 {
		return MatchResult{Status: StatusSingle, Best: scored[0]}
	}
	if scored[0].Score >= m.cfg.SingleMatchScore && scored[0].Score-scored[1].Score >= m.cfg.SingleMatchMargin {
		return MatchResult{Status: StatusSingle, Best: scored[0], Candidates: scored}
	}
	return MatchResult{Status: StatusMultiple, Candidates: scored}
}

// scoreCode compares one reporting code against the normalized term.
// Codes come in two shapes: dotted name.surname and compact
// initial+surname.
func (m *EntityMatcher) scoreCode(code, term string) float64 {
	words := strings.Fields(term)
	compact := strings.ReplaceAll(term, " ", "")

	var best float64
	consider := func(score float64) {
		if score > best {
			best = score
		}
	}

	if dot := strings.Index(code, "."); dot > 0 {
		first := code[:dot]
		last := code[dot+1:]
		if len(words) >= 2 {
			simFirst := Ratio(first, words[0])
			simLast := Ratio(last, words[len(words)-1])
			if simFirst > 0.7 && simLast > 0.7 {
				consider((simFirst + simLast) / 2)
			}
		} else if len(words) == 1 {
			if sim := Ratio(last, words[0]); sim > 0.7 {
				consider(sim * 0.85)
			}
			if sim := Ratio(first, words[0]); sim > 0.7 {
				consider(sim * 0.75)
			}
		}
	} else if len(code) > 1 {
		initial := code[:1]
		rest := code[1:]
		if len(words) >= 2 {
			if strings.HasPrefix(words[0], initial) {
				if sim := Ratio(rest, words[len(words)-1]); sim > 0.7 {
					consider(0.5 + 0.5*sim)
				}
			}
		} else if len(words) == 1 {
			if sim := Ratio(rest, words[0]); sim > 0.7 {
				consider(sim * 0.85)
			}
		}
	}

	plain := strings.ReplaceAll(code, ".", "")
	if strings.Contains(compact, plain) {
		consider(0.65)
	} else if strings.Contains(plain, compact) && len(compact) >= 3 {
		consider(0.6)
	}

	consider(Ratio(plain, compact) * 0.8)

	return best
}

// KnownName reports whether the roster name index alone resolves term.
func (m *EntityMatcher) KnownName(term string) bool {
	normalized := turkish.NormalizeSpace(turkish.Normalize(term))
	if normalized == "" {
		return false
	}
	_, ok := m.nameIndex[normalized]
	return ok
}

func (m *EntityMatcher) candidate(code string, score float64) Candidate {
	return Candidate{Code: code, Name: m.store.LookupDisplayName(code), Score: score}
}

// candidateCodes returns the distinct codes present in the reporting
// data, cached per day.
func (m *EntityMatcher) candidateCodes(ctx context.Context, dates report.Query, forceRefresh bool) ([]string, error) {
	day := m.timeProv.Now(m.location).Format("2006-01-02")

	m.cacheMu.Lock()
	defer m.cacheMu.Unlock()
	if !forceRefresh && m.cacheDay == day && m.candidates != nil {
		return m.candidates, nil
	}

	q := report.Query{
		Dimensions: []string{m.Class},
		Metrics:    []string{"screenPageViews"},
		StartDate:  dates.StartDate,
		EndDate:    dates.EndDate,
		Desc:       true,
		Limit:      m.cfg.CandidateFetchLimit,
	}
	if q.StartDate == "" {
		q.StartDate = "30daysAgo"
	}
	if q.EndDate == "" {
		q.EndDate = "yesterday"
	}

	rows, err := m.runner.RunReport(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("fetching %s candidates: %w", m.Class, err)
	}

	codes := make([]string, 0, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		code := turkish.Normalize(strings.TrimSpace(row.Dimensions[m.Class]))
		if code == "" || code == "(not set)" || seen[code] {
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	m.cacheDay = day
	m.candidates = codes
	return codes, nil
}

// cancelWords abort a pending disambiguation.
var cancelWords = map[string]bool{
	"iptal":   true,
	"cancel":  true,
	"vazgec":  true,
	"vazgect": true,
	"bosver":  true,
}

// SelectionStatus is the outcome of a disambiguation answer.
type SelectionStatus string

const (
	SelectionPicked    SelectionStatus = "picked"
	SelectionCancelled SelectionStatus = "cancelled"
	SelectionInvalid   SelectionStatus = "invalid"
)

// ResolveSelection interprets the user's answer to a "which one did you
// mean" prompt: a 1-based number or one of the offered codes.
func ResolveSelection(input string, candidates []Candidate) (Candidate, SelectionStatus) {
	normalized := turkish.NormalizeSpace(turkish.Normalize(input))
	if normalized == "" {
		return Candidate{}, SelectionInvalid
	}

	for word := range cancelWords {
		if strings.Contains(normalized, word) {
			return Candidate{}, SelectionCancelled
		}
	}

	if n, err := strconv.Atoi(normalized); err == nil {
		if n >= 1 && n <= len(candidates) {
			return candidates[n-1], SelectionPicked
		}
		return Candidate{}, SelectionInvalid
	}

	for _, c := range candidates {
		if strings.EqualFold(c.Code, normalized) {
			return c, SelectionPicked
		}
	}
	return Candidate{}, SelectionInvalid
}
