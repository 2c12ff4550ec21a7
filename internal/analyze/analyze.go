// Package analyze turns a raw Turkish question into a structured
// request: period, metrics, filters, person mentions, limits.
package analyze

import (
	"strings"
	"time"

	"raporbot/internal/config"
	"raporbot/internal/extract"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/pkg/turkish"
)

// Analysis is the structured form of one question.
type Analysis struct {
	Text       string
	Normalized string

	Dates   extract.DateRange
	Metrics []string
	Filters []extract.Filter
	Limit   int
	Desc    bool
	Publish extract.PublishRange

	// PersonTerm carries the detected name; PersonClass is the generic
	// dimension it belongs to, "editor" or "author".
	PersonTerm  string
	PersonClass string

	Comparison *extract.Comparison
}

// metricPattern binds a phrasing to a canonical metric. Order matters:
// "yeni kullanici" must resolve before the bare "kullanici" inside it.
type metricPattern struct {
	pattern string
	metric  string
}

var metricPatterns = []metricPattern{
	{`yeni kullanici|yeni ziyaretci|ilk kez gelen|kac yeni`, "newUsers"},
	{`geri donen|tekrar gelen|sadik kullanici|donen kullanici`, "returningUsers"},
	{`etkilesim orani|engagement|baglilik`, "engagementRate"},
	{`ortalama sure|oturum suresi|ne kadar kal|kac dakika|kalma suresi`, "averageSessionDuration"},
	{`hemen cikma|bounce|tek sayfa birakma`, "bounceRate"},
	{`kullanici|kac kisi|ziyaretci|\buser\b`, "totalUsers"},
	{`oturum|ziyaret|session`, "sessions"},
	{`goruntuleme|goruntulenme|okunma|izlenme|tiklama|\bhit\b|pageview`, "screenPageViews"},
}

// editorCues and authorCues signal which dimension a detected person
// belongs to. Editor phrasing wins when both appear.
var editorCues = []string{"editor", "editoru", "kim girdi", "kim hazirladi"}
var authorCues = []string{"yazar", "yazari", "kose yazari", "muhabir", "kim yazdi"}

// skipWords never start a person name.
var skipWords = map[string]bool{
	"en": true, "cok": true, "kac": true, "kim": true, "hangi": true,
	"dun": true, "bugun": true, "gecen": true, "son": true, "bu": true,
	"ilk": true, "ile": true, "icin": true, "gibi": true, "daha": true,
	"ne": true, "nasil": true, "nasildi": true, "neler": true,
	"mi": true, "mu": true, "geldi": true, "oldu": true, "aldi": true,
	"kadar": true, "kimin": true, "kimler": true, "nerede": true,
	"view": true, "views": true, "top": true,
}

// nonNameWords are domain words that look like name tokens but never
// are one.
var nonNameWords = map[string]bool{
	"haber": true, "haberler": true, "haberleri": true, "sayfa": true,
	"editor": true, "editoru": true, "editorun": true, "editorler": true,
	"editorleri": true, "yazar": true, "yazari": true, "yazarin": true,
	"yazarlar": true, "yazarlari": true, "performans": true, "performansi": true,
	"istatistik": true, "istatistikleri": true, "rapor": true, "raporu": true,
	"okunma": true, "okunan": true, "izlenen": true, "goruntulenen": true,
	"goruntuleme": true, "kullanici": true, "oturum": true,
	"analiz": true, "analizi": true, "detay": true, "detayi": true,
	"hafta": true, "gun": true, "ay": true, "yil": true, "ayi": true,
	"trafik": true, "trafigi": true, "sayisi": true, "listesi": true,
	"girdigi": true, "yazdigi": true, "hazirladigi": true,
	"yayinladigi": true, "yayimladigi": true, "paylastigi": true,
	"ekledigi": true, "gectigimiz": true, "gosterdi": true,
	"icerik": true, "icerikler": true, "session": true,
	"kisi": true, "ziyaretci": true, "muhabir": true, "muhabiri": true,
	"video": true, "videolar": true, "galeri": true, "galeriler": true,
	"makale": true, "makaleler": true, "canli": true, "podcast": true,
	"interaktif": true,
	"populer": true, "basarili": true, "toplam": true,
	"liste": true, "siralama": true, "tablo": true,
	"gunluk": true, "haftalik": true, "aylik": true,
	"kategori": true, "kategorisi": true, "ceyrek": true,
	"once": true, "sonra": true, "arasi": true, "arasinda": true,
	"tarihinde": true, "tarihli": true, "yayinlanan": true,
	"ocak": true, "subat": true, "mart": true, "nisan": true,
	"mayis": true, "haziran": true, "temmuz": true, "agustos": true,
	"eylul": true, "ekim": true, "kasim": true, "aralik": true,
}

// NameVerifier confirms that a phrase is a known person. The session
// backs it with the roster name index.
type NameVerifier func(term string) bool

// Analyzer runs every extractor over a question.
type Analyzer struct {
	cfg      *config.Config
	dates    *extract.DateExtractor
	publish  *extract.PublishDateExtractor
	location *time.Location

	// Verify gates cue-less person detection: the leading words of a
	// question only count as a name when the roster knows them. Without
	// a verifier only cue-anchored names are detected.
	Verify NameVerifier
}

func NewAnalyzer(cfg *config.Config, loc *time.Location, timeProvider ...clock.TimeProvider) *Analyzer {
	if loc == nil {
		loc = time.Local
	}
	return &Analyzer{
		cfg:      cfg,
		dates:    extract.NewDateExtractor(loc, timeProvider...),
		publish:  extract.NewPublishDateExtractor(loc, timeProvider...),
		location: loc,
	}
}

// Analyze extracts everything the dispatcher needs from one question.
func (a *Analyzer) Analyze(text string) Analysis {
	normalized := turkish.NormalizeSpace(turkish.Normalize(text))

	analysis := Analysis{
		Text:       text,
		Normalized: normalized,
		Dates:      a.dates.Extract(text),
		Filters:    extract.ExtractFilters(text),
		Limit:      extract.ExtractLimit(text, a.cfg.DefaultRowLimit),
		Desc:       extract.ExtractSortOrder(text),
	}

	analysis.Metrics = extractMetrics(normalized)

	if pub, ok := a.publish.Extract(text); ok {
		analysis.Publish = pub
		// The reporting period follows the publish window: "1-7 aralik
		// yayinlanan" means both the articles and the traffic of those
		// days.
		if r, err := isoWindow(pub); err == nil {
			analysis.Dates = r
		}
	}

	if cmp, ok := extract.ExtractComparison(text); ok {
		analysis.Comparison = &cmp
	}

	analysis.PersonClass, analysis.PersonTerm = a.detectPerson(normalized)

	return analysis
}

// isoWindow converts a compact publish window to a reporting period.
func isoWindow(pub extract.PublishRange) (extract.DateRange, error) {
	start, err := time.Parse("20060102", pub.Start)
	if err != nil {
		return extract.DateRange{}, err
	}
	end, err := time.Parse("20060102", pub.End)
	if err != nil {
		return extract.DateRange{}, err
	}
	return extract.DateRange{
		Start: start.Format("2006-01-02"),
		End:   end.Format("2006-01-02"),
	}, nil
}

func extractMetrics(normalized string) []string {
	var metrics []string
	seen := make(map[string]bool)
	for _, mp := range metricPatterns {
		if !seen[mp.metric] && matchMetric(mp.pattern, normalized) {
			seen[mp.metric] = true
			metrics = append(metrics, mp.metric)
		}
	}
	return metrics
}

// detectPerson looks for an editor or author mention. A cue word
// anchors the name right after it; without one the leading words of
// the question count when the roster verifier confirms them.
func (a *Analyzer) detectPerson(normalized string) (class, term string) {
	class = personClass(normalized)
	if class != "" {
		if name := nameAfterCue(normalized); name != "" {
			return class, name
		}
		// A cue with nothing usable after it ("en populer editor") is a
		// breakdown question, not a person query. The name may still
		// sit in front of the cue; the leading-word check covers that.
	}

	if a.Verify == nil {
		return "", ""
	}

	var lead []string
	for _, raw := range strings.Fields(normalized) {
		word := trimNameToken(raw)
		if !plausibleNameWord(word) {
			break
		}
		lead = append(lead, word)
		if len(lead) == 2 {
			break
		}
	}
	fallback := "editor"
	if class != "" {
		fallback = class
	}
	if len(lead) == 2 && a.Verify(lead[0]+" "+lead[1]) {
		return fallback, lead[0] + " " + lead[1]
	}
	if len(lead) >= 1 && len(lead[0]) > 2 && a.Verify(lead[0]) {
		return fallback, lead[0]
	}
	return "", ""
}

// nameAfterCue takes up to two name words directly after the first
// editor/yazar token, the way "editor ahmet kara son 7 gun" carries the
// name. Digits and domain words end the capture.
func nameAfterCue(normalized string) string {
	words := strings.Fields(normalized)
	for i, raw := range words {
		if !cueToken(raw) {
			continue
		}
		var name []string
		for _, rest := range words[i+1:] {
			word := trimNameToken(rest)
			if !plausibleNameWord(word) {
				break
			}
			name = append(name, word)
			if len(name) == 2 {
				break
			}
		}
		return strings.Join(name, " ")
	}
	return ""
}

func cueToken(word string) bool {
	word = trimNameToken(word)
	return strings.HasPrefix(word, "editor") ||
		strings.HasPrefix(word, "yazar") ||
		strings.HasPrefix(word, "muhabir")
}

// trimNameToken drops punctuation and the possessive tail: "ahmet'in"
// stays ahmet.
func trimNameToken(word string) string {
	word = strings.Trim(word, "'\",.?!")
	if idx := strings.IndexByte(word, '\''); idx > 0 {
		word = word[:idx]
	}
	return word
}

func plausibleNameWord(word string) bool {
	if len(word) < 2 || strings.ContainsAny(word, "0123456789") {
		return false
	}
	if skipWords[word] || nonNameWords[word] {
		return false
	}
	return !isExtractorWord(word)
}

func personClass(normalized string) string {
	for _, cue := range editorCues {
		if strings.Contains(normalized, cue) {
			return "editor"
		}
	}
	for _, cue := range authorCues {
		if strings.Contains(normalized, cue) {
			return "author"
		}
	}
	return ""
}

// isExtractorWord filters words already claimed by the date, metric and
// filter extractors so they cannot leak into a name.
func isExtractorWord(word string) bool {
	if _, ok := extract.ExtractCategory(word); ok {
		return true
	}
	for _, mp := range metricPatterns {
		if matchMetric(mp.pattern, word) {
			return true
		}
	}
	return false
}

func matchMetric(pattern, text string) bool {
	return extract.MatchPattern(pattern, text)
}
