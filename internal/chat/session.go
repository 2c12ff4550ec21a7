// Package chat dispatches Turkish analytics questions: it analyzes the
// text, picks an intent, runs the report and renders the answer.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"raporbot/internal/analyze"
	"raporbot/internal/catalog"
	"raporbot/internal/config"
	"raporbot/internal/match"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/pkg/turkish"
	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// pendingDisambiguation keeps the state between a "which one did you
// mean" prompt and the user's answer.
type pendingDisambiguation struct {
	class      string
	candidates []match.Candidate
	analysis   analyze.Analysis
}

// Session is one conversation. It is not safe for concurrent use; the
// API layer keeps one session per token.
type Session struct {
	cfg    *config.Config
	log    *logrus.Logger
	brand  catalog.Brand
	runner report.Runner

	analyzer      *analyze.Analyzer
	editorMatcher *match.EntityMatcher
	authorMatcher *match.EntityMatcher
	dimMatcher    *match.FieldMatcher
	metricMatcher *match.FieldMatcher
	rosterStore   *roster.Store

	pending  *pendingDisambiguation
	location *time.Location
}

func NewSession(cfg *config.Config, log *logrus.Logger, brand catalog.Brand, runner report.Runner, store *roster.Store, people []roster.Person, loc *time.Location, timeProvider ...clock.TimeProvider) *Session {
	if loc == nil {
		loc = time.Local
	}
	s := &Session{
		cfg:           cfg,
		log:           log,
		brand:         brand,
		runner:        runner,
		analyzer:      analyze.NewAnalyzer(cfg, loc, timeProvider...),
		editorMatcher: match.NewEntityMatcher("editor", people, runner, store, cfg, log, loc, timeProvider...),
		// Author codes have no roster table; resolution goes straight
		// to candidate scoring.
		authorMatcher: match.NewEntityMatcher("author", nil, runner, store, cfg, log, loc, timeProvider...),
		dimMatcher:    match.NewFieldMatcher(catalog.DimensionAliases(), cfg),
		metricMatcher: match.NewFieldMatcher(catalog.MetricAliases(), cfg),
		rosterStore:   store,
		location:      loc,
	}
	s.analyzer.Verify = s.editorMatcher.KnownName
	return s
}

// Process answers one input line. The second return value reports that
// the user asked to leave.
func (s *Session) Process(ctx context.Context, input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "Bir soru yazin. Menu icin: yardim", false
	}
	normalized := turkish.NormalizeSpace(turkish.Normalize(trimmed))

	if s.pending != nil {
		return s.resolvePending(ctx, trimmed), false
	}

	if question, ok := quickCommands[normalized]; ok {
		return s.answer(ctx, question), false
	}
	if exitWords[normalized] {
		return "Gorusmek uzere.", true
	}
	if helpWords[normalized] {
		return helpText(s.brand.Name), false
	}

	return s.answer(ctx, trimmed), false
}

func (s *Session) answer(ctx context.Context, question string) string {
	analysis := s.analyzer.Analyze(question)
	s.log.WithFields(logrus.Fields{
		"metrics": analysis.Metrics,
		"dates":   analysis.Dates,
		"person":  analysis.PersonTerm,
	}).Debug("question analyzed")

	if analysis.PersonClass != "" && analysis.PersonTerm != "" {
		return s.answerPerson(ctx, analysis)
	}

	for _, in := range s.intents() {
		if !in.matches(analysis) {
			continue
		}
		reply, err := in.handle(ctx, analysis)
		if err != nil {
			s.log.WithError(err).WithField("intent", in.name).Error("intent handler failed")
			return "Rapor alinamadi, lutfen tekrar deneyin."
		}
		return reply
	}

	if reply, ok := s.answerDynamic(ctx, analysis); ok {
		return reply
	}
	return capabilityText()
}

// answerPerson resolves the mentioned person and renders the scorecard,
// or starts a disambiguation round.
func (s *Session) answerPerson(ctx context.Context, analysis analyze.Analysis) string {
	matcher := s.editorMatcher
	if analysis.PersonClass == "author" {
		matcher = s.authorMatcher
	}

	result := matcher.Match(ctx, analysis.PersonTerm, report.Query{
		StartDate: analysis.Dates.Start,
		EndDate:   analysis.Dates.End,
	}, false)

	switch result.Status {
	case match.StatusSingle:
		reply, err := s.personScorecard(ctx, analysis, result.Best)
		if err != nil {
			s.log.WithError(err).Error("person scorecard failed")
			return "Rapor alinamadi, lutfen tekrar deneyin."
		}
		return reply
	case match.StatusMultiple:
		s.pending = &pendingDisambiguation{
			class:      analysis.PersonClass,
			candidates: result.Candidates,
			analysis:   analysis,
		}
		return disambiguationPrompt(analysis.PersonTerm, result.Candidates)
	case match.StatusError:
		return "Rapor alinamadi, lutfen tekrar deneyin."
	default:
		return fmt.Sprintf("%q icin kayit bulamadim. Ismi ya da kodu kontrol eder misiniz?", analysis.PersonTerm)
	}
}

func disambiguationPrompt(term string, candidates []match.Candidate) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%q icin birden fazla kisi buldum:\n", term)
	for i, c := range candidates {
		fmt.Fprintf(&b, "  %d) %s (%s)\n", i+1, c.Name, c.Code)
	}
	b.WriteString("Numara ya da kod yazin, iptal icin: iptal")
	return b.String()
}

// resolvePending handles the answer to a disambiguation prompt. The
// replay reuses the original question's period and limit.
func (s *Session) resolvePending(ctx context.Context, input string) string {
	pending := s.pending
	picked, status := match.ResolveSelection(input, pending.candidates)
	switch status {
	case match.SelectionPicked:
		s.pending = nil
		reply, err := s.personScorecard(ctx, pending.analysis, picked)
		if err != nil {
			s.log.WithError(err).Error("person scorecard failed")
			return "Rapor alinamadi, lutfen tekrar deneyin."
		}
		return reply
	case match.SelectionCancelled:
		s.pending = nil
		return "Iptal edildi."
	default:
		return "Anlayamadim. " + disambiguationPrompt(pending.analysis.PersonTerm, pending.candidates)
	}
}

// personScorecard renders one person's totals plus their top pages.
func (s *Session) personScorecard(ctx context.Context, analysis analyze.Analysis, person match.Candidate) (string, error) {
	class := analysis.PersonClass
	if class == "" {
		class = s.pendingClassFallback()
	}
	dim := catalog.ScopeDimension(class, s.brand)

	metrics := []string{"screenPageViews", "totalUsers", "sessions"}
	totals, err := s.runScoped(ctx, analysis, report.Query{
		Metrics:   metrics,
		StartDate: analysis.Dates.Start,
		EndDate:   analysis.Dates.End,
		Filters:   s.withPersonFilter(analysis, dim, person.Code),
	})
	if err != nil {
		return "", fmt.Errorf("person totals: %w", err)
	}

	title := fmt.Sprintf("%s (%s) - %s", person.Name, person.Code, periodLabel(analysis.Dates.Start, analysis.Dates.End))
	if len(totals) == 0 {
		return title + "\nVeri bulunamadi.", nil
	}

	limit := analysis.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultRowLimit
	}
	pages, err := s.runScoped(ctx, analysis, report.Query{
		Dimensions: []string{"pagePath", "pageTitle"},
		Metrics:    []string{"screenPageViews"},
		StartDate:  analysis.Dates.Start,
		EndDate:    analysis.Dates.End,
		Filters:    s.withPersonFilter(analysis, dim, person.Code),
		OrderBy:    "screenPageViews",
		Desc:       true,
		Limit:      limit,
	})
	if err != nil {
		return "", fmt.Errorf("person pages: %w", err)
	}

	var b strings.Builder
	b.WriteString(renderScorecard(title, metrics, totals[0]))
	if len(pages) > 0 {
		b.WriteString("\n\n")
		b.WriteString(renderTable("En Cok Okunan Icerikler", []string{"pagePath", "pageTitle"}, []string{"screenPageViews"}, pages, s.cfg.MaxTableRows))
	}
	return b.String(), nil
}

// withPersonFilter merges the question's extracted filters with the
// person code.
func (s *Session) withPersonFilter(a analyze.Analysis, dim, code string) map[string]string {
	filters := s.scopedFilters(a)
	if filters == nil {
		filters = make(map[string]string, 1)
	}
	filters[dim] = code
	return filters
}

func (s *Session) pendingClassFallback() string {
	if s.pending != nil && s.pending.class != "" {
		return s.pending.class
	}
	return "editor"
}
