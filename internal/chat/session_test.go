package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raporbot/internal/catalog"
	"raporbot/internal/config"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/report"
	"raporbot/internal/roster"
	"raporbot/internal/testsupport"
)

var sessionClock = &clock.FixedTimeProvider{
	CurrentTime: time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC),
}

func sessionConfig() *config.Config {
	return &config.Config{
		FuzzyThreshold:      0.6,
		ContainsScoreFloor:  0.7,
		EntityScoreFloor:    0.5,
		SingleMatchScore:    0.85,
		SingleMatchMargin:   0.15,
		WordRetryThreshold:  0.5,
		MaxMatchCandidates:  5,
		CandidateFetchLimit: 1000,
		DefaultRowLimit:     10,
		MaxTableRows:        20,
	}
}

func newTestSession(t *testing.T, runner report.Runner, people []roster.Person) *Session {
	t.Helper()
	db := testsupport.SetupTestDB(t)
	store := roster.NewStore(db)
	if len(people) > 0 {
		testsupport.SeedPeople(t, db, people)
	}
	brand, _ := catalog.BrandByKey("vatan")
	return NewSession(sessionConfig(), testsupport.GetLogger(), brand, runner, store, people, time.UTC, sessionClock)
}

func TestSessionHelpAndExit(t *testing.T) {
	s := newTestSession(t, &testsupport.CannedRunner{}, nil)

	reply, exit := s.Process(context.Background(), "yardım")
	assert.False(t, exit)
	assert.Contains(t, reply, "Hizli komutlar")
	assert.Contains(t, reply, "Vatan")

	reply, exit = s.Process(context.Background(), "çıkış")
	assert.True(t, exit)
	assert.Contains(t, reply, "Gorusmek uzere")

	reply, exit = s.Process(context.Background(), "  ")
	assert.False(t, exit)
	assert.Contains(t, reply, "yardim")
}

func TestSessionSimpleMetric(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Metrics: map[string]float64{"totalUsers": 12345}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "dün kaç kullanıcı geldi")
	assert.Contains(t, reply, "Dun")
	assert.Contains(t, reply, "Kullanici: 12.345")

	require.Len(t, runner.Queries, 1)
	q := runner.Queries[0]
	assert.Equal(t, []string{"totalUsers"}, q.Metrics)
	assert.Equal(t, "yesterday", q.StartDate)
	assert.Empty(t, q.Dimensions)
}

func TestSessionTopPages(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/gundem/a", "pageTitle": "Haber A"}, Metrics: map[string]float64{"screenPageViews": 1500, "totalUsers": 900, "sessions": 1000}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "dün en çok okunan 5 haber")
	assert.Contains(t, reply, "Icerikler - Dun")
	assert.Contains(t, reply, "/gundem/a")

	require.Len(t, runner.Queries, 1)
	q := runner.Queries[0]
	assert.Equal(t, []string{"pagePath", "pageTitle"}, q.Dimensions)
	assert.Equal(t, 5, q.Limit)
	assert.True(t, q.Desc)
}

func TestSessionQuickCommand(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/a", "pageTitle": "A"}, Metrics: map[string]float64{"screenPageViews": 10}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "1")
	assert.Contains(t, reply, "Icerikler")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, 10, runner.Queries[0].Limit)
}

func TestSessionCategoryFilterScoping(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/spor/a", "pageTitle": "A"}, Metrics: map[string]float64{"screenPageViews": 10, "totalUsers": 5, "sessions": 7}},
	}}
	s := newTestSession(t, runner, nil)

	s.Process(context.Background(), "dün en çok okunan spor haberleri")
	require.Len(t, runner.Queries, 1)
	// The generic category filter gets the brand prefix.
	assert.Equal(t, "spor", runner.Queries[0].Filters["vcat1"])
}

func TestSessionDisambiguationFlow(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"editor": "ayilmaz"}, Metrics: map[string]float64{"screenPageViews": 100, "totalUsers": 50, "sessions": 70}},
		{Dimensions: map[string]string{"editor": "myilmaz"}, Metrics: map[string]float64{"screenPageViews": 90, "totalUsers": 40, "sessions": 60}},
	}}
	people := []roster.Person{
		{Name: "Ayşe Yılmaz", Code: "ayilmaz"},
		{Name: "Mehmet Yılmaz", Code: "myilmaz"},
	}
	s := newTestSession(t, runner, people)

	reply, _ := s.Process(context.Background(), "editör yılmaz performansı")
	assert.Contains(t, reply, "birden fazla kisi")
	assert.Contains(t, reply, "ayilmaz")
	assert.Contains(t, reply, "myilmaz")
	require.NotNil(t, s.pending)

	reply, _ = s.Process(context.Background(), "1")
	assert.Contains(t, reply, "Ayşe Yılmaz")
	assert.Nil(t, s.pending)
}

func TestSessionDisambiguationCancel(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"editor": "ayilmaz"}, Metrics: map[string]float64{"screenPageViews": 100}},
		{Dimensions: map[string]string{"editor": "myilmaz"}, Metrics: map[string]float64{"screenPageViews": 90}},
	}}
	s := newTestSession(t, runner, nil)

	s.Process(context.Background(), "editör yılmaz istatistikleri")
	require.NotNil(t, s.pending)

	reply, _ := s.Process(context.Background(), "iptal")
	assert.Contains(t, reply, "Iptal edildi")
	assert.Nil(t, s.pending)
}

func TestSessionPersonNotFound(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"editor": "ckoca"}, Metrics: map[string]float64{"screenPageViews": 100}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "editör zzqqw istatistikleri")
	assert.Contains(t, reply, "kayit bulamadim")
}

func TestSessionUnknownQuestion(t *testing.T) {
	s := newTestSession(t, &testsupport.CannedRunner{}, nil)

	reply, _ := s.Process(context.Background(), "fgh jklm qwerty")
	assert.Contains(t, reply, "anlayamadim")
}

func TestSessionRealTime(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Metrics: map[string]float64{"activeUsers": 250, "screenPageViews": 4000}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "şu an kaç aktif kullanıcı var")
	assert.Contains(t, reply, "250 aktif kullanici")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "today", runner.Queries[0].StartDate)
}

func TestSessionCountryBreakdown(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"country": "Turkey"}, Metrics: map[string]float64{"sessions": 9000, "totalUsers": 7000}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "ülkelere göre dağılım")
	assert.Contains(t, reply, "Ulkeler")
	assert.Contains(t, reply, "Turkey")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, []string{"country"}, runner.Queries[0].Dimensions)
}

func TestSessionNewsletterTraffic(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/gundem/a", "pageTitle": "A"}, Metrics: map[string]float64{"sessions": 300, "screenPageViews": 450}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "dün bülten trafiği nasıldı")
	assert.Contains(t, reply, "Bulten Trafigi")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "Email", runner.Queries[0].Filters["sessionDefaultChannelGroup"])
}

func TestSessionWeekendSummary(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Metrics: map[string]float64{"screenPageViews": 100000, "totalUsers": 40000, "sessions": 60000, "newUsers": 10000}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "hafta sonu nasıl geçti")
	assert.Contains(t, reply, "Genel Ozet")
	require.NotEmpty(t, runner.Queries)
	assert.Equal(t, "2025-12-13", runner.Queries[0].StartDate)
	assert.Equal(t, "2025-12-14", runner.Queries[0].EndDate)
}

func TestSessionLeadingNameWithoutCue(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/gundem/a", "pageTitle": "A"}, Metrics: map[string]float64{"screenPageViews": 300, "totalUsers": 120, "sessions": 180}},
	}}
	people := []roster.Person{{Name: "Ahmet Yılmaz", Code: "ayilmaz"}}
	s := newTestSession(t, runner, people)

	reply, _ := s.Process(context.Background(), "ahmet yılmaz'ın son 7 gün haberleri")
	assert.Contains(t, reply, "Ahmet Yılmaz")
	require.NotEmpty(t, runner.Queries)
	assert.Equal(t, "ayilmaz", runner.Queries[0].Filters["veditor"])
	assert.Equal(t, "7daysAgo", runner.Queries[0].StartDate)
}

func TestSessionDateRangeBeforeEditorCue(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"veditor": "ayilmaz"}, Metrics: map[string]float64{"screenPageViews": 900, "totalUsers": 400, "sessions": 600}},
	}}
	people := []roster.Person{{Name: "Ahmet Yılmaz", Code: "ayilmaz"}}
	s := newTestSession(t, runner, people)

	reply, _ := s.Process(context.Background(), "1-7 aralık en popüler editör")
	assert.Contains(t, reply, "Editorler")
	assert.NotContains(t, reply, "kayit bulamadim")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "2025-12-01", runner.Queries[0].StartDate)
	assert.Equal(t, "2025-12-07", runner.Queries[0].EndDate)
}

func TestSessionPublishWindowMergesRows(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/spor/a", "pageTitle": "A", "vpublisheddate": "20251203"}, Metrics: map[string]float64{"screenPageViews": 10}},
		{Dimensions: map[string]string{"pagePath": "/spor/a", "pageTitle": "A", "vpublisheddate": "20251220"}, Metrics: map[string]float64{"screenPageViews": 99}},
		{Dimensions: map[string]string{"pagePath": "/spor/b", "pageTitle": "B", "vpublisheddate": "20251205"}, Metrics: map[string]float64{"screenPageViews": 5}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "1-7 aralık yayınlanan en çok okunan haberler")
	assert.Contains(t, reply, "/spor/a")
	assert.Contains(t, reply, "/spor/b")
	// The row published outside the window must not leak into the total.
	assert.NotContains(t, reply, "109")

	require.Len(t, runner.Queries, 1)
	q := runner.Queries[0]
	assert.Contains(t, q.Dimensions, "vpublisheddate")
	assert.Equal(t, "2025-12-01", q.StartDate)
	assert.Equal(t, "2025-12-07", q.EndDate)
}

func TestSessionSingleDayPublishFilter(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/a", "pageTitle": "A"}, Metrics: map[string]float64{"screenPageViews": 40}},
	}}
	s := newTestSession(t, runner, nil)

	s.Process(context.Background(), "dün yayınlanan en çok okunan haberler")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "20251214", runner.Queries[0].Filters["vpublisheddate"])
	assert.NotContains(t, runner.Queries[0].Dimensions, "vpublisheddate")
}

func TestSessionWeekendWithFilterGoesDynamic(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"pagePath": "/spor/a", "pageTitle": "A"}, Metrics: map[string]float64{"screenPageViews": 10, "totalUsers": 5, "sessions": 7}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "hafta sonu spor görüntülemeleri")
	assert.NotContains(t, reply, "Genel Ozet")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "spor", runner.Queries[0].Filters["vcat1"])
	assert.Equal(t, "2025-12-13", runner.Queries[0].StartDate)
	assert.Equal(t, "2025-12-14", runner.Queries[0].EndDate)
}

func TestSessionFilteredFallthroughUsesDynamicQuery(t *testing.T) {
	runner := &testsupport.CannedRunner{Rows: []report.Row{
		{Dimensions: map[string]string{"vcat1": "spor"}, Metrics: map[string]float64{"screenPageViews": 10}},
	}}
	s := newTestSession(t, runner, nil)

	reply, _ := s.Process(context.Background(), "spor kategorisi görüntülemeleri")
	assert.Contains(t, reply, "Sonuclar")
	require.Len(t, runner.Queries, 1)
	assert.Equal(t, "spor", runner.Queries[0].Filters["vcat1"])
}
