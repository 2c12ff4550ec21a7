package seeder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"raporbot/internal/catalog"
	"raporbot/internal/pkg/clock"
	"raporbot/internal/report"
	"raporbot/internal/roster"
	"raporbot/internal/testsupport"
)

func TestSeedBrand(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	frozen := &clock.FixedTimeProvider{CurrentTime: time.Date(2025, 12, 15, 10, 0, 0, 0, time.UTC)}
	s := NewSeeder(db, testsupport.GetLogger(), 300, frozen)

	brand, ok := catalog.BrandByKey("vatan")
	require.True(t, ok)
	require.NoError(t, s.SeedBrand(context.Background(), brand))

	var count int64
	require.NoError(t, db.Model(&report.ContentStat{}).Count(&count).Error)
	assert.Greater(t, count, int64(0))

	var minDate, maxDate string
	require.NoError(t, db.Model(&report.ContentStat{}).Select("MIN(date)").Scan(&minDate).Error)
	require.NoError(t, db.Model(&report.ContentStat{}).Select("MAX(date)").Scan(&maxDate).Error)
	assert.Equal(t, "2025-11-15", minDate)
	assert.Equal(t, "2025-12-14", maxDate)

	var brands []string
	require.NoError(t, db.Model(&report.ContentStat{}).Distinct("brand").Pluck("brand", &brands).Error)
	assert.Equal(t, []string{"vatan"}, brands)

	var bad int64
	require.NoError(t, db.Model(&report.ContentStat{}).Where("users > page_views").Count(&bad).Error)
	assert.Zero(t, bad)
}

func TestSeedRoster(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	s := NewSeeder(db, testsupport.GetLogger(), 0)

	require.NoError(t, s.seedRoster())

	store := roster.NewStore(db)
	people, err := store.All()
	require.NoError(t, err)
	assert.NotEmpty(t, people)
	assert.Equal(t, "Ayse Yilmaz", store.LookupDisplayName("ayilmaz"))

	// Seeding twice keeps codes unique
	require.NoError(t, s.seedRoster())
	again, err := store.All()
	require.NoError(t, err)
	assert.Len(t, again, len(people))
}
