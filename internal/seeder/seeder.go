// Package seeder fills the database with realistic demo traffic so the
// assistant can be exercised without a production export.
package seeder

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"raporbot/internal/catalog"
	"raporbot/internal/pkg/async"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// Seeder handles the demo data generation process.
type Seeder struct {
	DB       *gorm.DB
	Logger   *logrus.Logger
	RowCount int
	timeProv clock.TimeProvider
}

// NewSeeder creates a new seeder instance. RowCount is the approximate
// number of content stat rows to generate per brand.
func NewSeeder(db *gorm.DB, logger *logrus.Logger, rowCount int, timeProvider ...clock.TimeProvider) *Seeder {
	var tp clock.TimeProvider = &clock.DefaultTimeProvider{}
	if len(timeProvider) > 0 && timeProvider[0] != nil {
		tp = timeProvider[0]
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Seeder{
		DB:       db,
		Logger:   logger,
		RowCount: rowCount,
		timeProv: tp,
	}
}

// Run seeds every brand plus a demo roster.
func (s *Seeder) Run(ctx context.Context) error {
	start := time.Now()
	s.Logger.WithField("rowCount", s.RowCount).Info("Starting database seeding...")

	if err := s.seedRoster(); err != nil {
		return fmt.Errorf("failed to seed roster: %w", err)
	}

	var tasks []async.Task
	for _, brand := range catalog.Brands() {
		brand := brand
		tasks = append(tasks, async.Task{
			Name: brand.Key,
			Run: func() (any, error) {
				return nil, s.SeedBrand(ctx, brand)
			},
		})
	}

	pool := async.NewPool(4)
	for name, result := range pool.Execute(ctx, tasks) {
		if result.Err != nil {
			return fmt.Errorf("failed to generate data for %s: %w", name, result.Err)
		}
	}

	s.Logger.WithField("elapsed", time.Since(start)).Info("Seeding completed successfully")
	return nil
}

// SeedBrand generates content stat rows for a single brand over the
// last 30 days.
func (s *Seeder) SeedBrand(ctx context.Context, brand catalog.Brand) error {
	today := s.timeProv.Now(time.UTC)
	people := s.demoPeople()

	target := s.RowCount
	if target < len(seedSections)*30 {
		target = len(seedSections) * 30
	}
	perDay := target / 30
	if perDay < 1 {
		perDay = 1
	}

	var rows []report.ContentStat
	for dayOffset := 1; dayOffset <= 30; dayOffset++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		day := today.AddDate(0, 0, -dayOffset)
		date := day.Format("2006-01-02")

		for i := 0; i < perDay; i++ {
			section := seedSections[rand.Intn(len(seedSections))]
			person := people[rand.Intn(len(people))]
			newsType := seedNewsTypes[rand.Intn(len(seedNewsTypes))]
			slug := fmt.Sprintf("haber-%d", rand.Intn(90000)+10000)

			views := rand.Intn(4500) + 50
			users := views * (rand.Intn(40) + 40) / 100
			sessions := users + rand.Intn(users/4+1)
			newUsers := users * (rand.Intn(50) + 20) / 100

			rows = append(rows, report.ContentStat{
				Brand:           brand.Key,
				Date:            date,
				Hour:            rand.Intn(24),
				PagePath:        fmt.Sprintf("/%s/%s", section.path, slug),
				PageTitle:       fmt.Sprintf("%s %s", section.title, slug),
				Category:        section.category,
				SubCategory:     section.subCategory,
				NewsType:        newsType,
				PageType:        "haberdetay",
				Editor:          person.Code,
				Author:          person.Code,
				Tag:             section.tag,
				PublishedDate:   day.AddDate(0, 0, -rand.Intn(3)).Format("20060102"),
				NewsID:          fmt.Sprintf("%d", rand.Intn(9000000)+1000000),
				Country:         seedCountries[rand.Intn(len(seedCountries))],
				City:            seedCities[rand.Intn(len(seedCities))],
				DeviceCategory:  seedDevices[rand.Intn(len(seedDevices))],
				Channel:         seedChannels[rand.Intn(len(seedChannels))],
				Source:          seedSources[rand.Intn(len(seedSources))],
				Browser:         seedBrowsers[rand.Intn(len(seedBrowsers))],
				OperatingSystem: seedOperatingSystems[rand.Intn(len(seedOperatingSystems))],
				NewVsReturning:  seedUserTypes[rand.Intn(len(seedUserTypes))],
				PageViews:       int64(views),
				Users:           int64(users),
				Sessions:        int64(sessions),
				NewUsers:        int64(newUsers),
				EngagedSessions: int64(sessions * (rand.Intn(40) + 40) / 100),
				TotalDuration:   float64(views * (rand.Intn(90) + 30)),
				ScrollDepth:     float64(rand.Intn(60) + 40),
			})
		}
	}

	if err := s.DB.CreateInBatches(&rows, 200).Error; err != nil {
		return fmt.Errorf("failed to insert content stats: %w", err)
	}

	s.Logger.WithFields(logrus.Fields{
		"brand": brand.Key,
		"rows":  len(rows),
	}).Info("Generated content stats for brand")
	return nil
}

// seedRoster inserts the demo editors and authors.
func (s *Seeder) seedRoster() error {
	store := roster.NewStore(s.DB)
	people := s.demoPeople()
	n, err := store.Seed(people)
	if err != nil {
		return err
	}
	s.Logger.WithField("people", n).Info("Roster seeded")
	return nil
}

func (s *Seeder) demoPeople() []roster.Person {
	names := []string{
		"Ayse Yilmaz", "Mehmet Demir", "Fatma Kaya", "Ali Celik",
		"Zeynep Arslan", "Mustafa Sahin", "Elif Koc", "Ahmet Aydin",
		"Merve Ozturk", "Emre Yildiz", "Selin Aksoy", "Burak Polat",
	}
	people := make([]roster.Person, 0, len(names))
	for _, name := range names {
		parts := strings.Fields(strings.ToLower(name))
		code := parts[0][:1] + parts[1]
		people = append(people, roster.Person{
			Name: name,
			Code: code,
			Site: "haber",
		})
	}
	return people
}

type seedSection struct {
	path        string
	title       string
	category    string
	subCategory string
	tag         string
}

var seedSections = []seedSection{
	{path: "gundem", title: "Gundem", category: "gundem", subCategory: "turkiye", tag: "gundem"},
	{path: "spor", title: "Spor", category: "spor", subCategory: "futbol", tag: "futbol"},
	{path: "ekonomi", title: "Ekonomi", category: "ekonomi", subCategory: "piyasalar", tag: "dolar"},
	{path: "dunya", title: "Dunya", category: "dunya", subCategory: "avrupa", tag: "dunya"},
	{path: "magazin", title: "Magazin", category: "magazin", subCategory: "unluler", tag: "magazin"},
	{path: "teknoloji", title: "Teknoloji", category: "teknoloji", subCategory: "mobil", tag: "teknoloji"},
	{path: "saglik", title: "Saglik", category: "saglik", subCategory: "beslenme", tag: "saglik"},
}

var seedNewsTypes = []string{"haber", "video", "fotogaleri", "sondakika", "analiz"}

var seedCountries = []string{"Turkey", "Turkey", "Turkey", "Germany", "Netherlands", "France", "United States"}

var seedCities = []string{"Istanbul", "Istanbul", "Ankara", "Izmir", "Bursa", "Antalya", "(not set)"}

var seedDevices = []string{"mobile", "mobile", "mobile", "desktop", "tablet"}

var seedChannels = []string{"Organic Search", "Direct", "Organic Social", "Referral", "Email"}

var seedSources = []string{"google", "(direct)", "facebook.com", "twitter.com", "news.google.com"}

var seedBrowsers = []string{"Chrome", "Chrome", "Safari", "Samsung Internet", "Firefox", "Edge"}

var seedOperatingSystems = []string{"Android", "Android", "iOS", "Windows", "Macintosh"}

var seedUserTypes = []string{"new", "returning"}
