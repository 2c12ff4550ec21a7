// Package testsupport provides shared helpers for package tests: an
// in-memory SQLite database with all models migrated, a silent logger,
// and a canned report runner.
package testsupport

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"raporbot/internal/report"
	"raporbot/internal/roster"
)

// testDBCache caches test databases by test name so multiple calls
// within the same test share the same database.
var testDBCache = make(map[string]*gorm.DB)
var testDBCacheMu sync.Mutex

func allModels() []any {
	return []any{
		&report.ContentStat{},
		&roster.Person{},
	}
}

// SetupTestDB creates a test database with all models migrated. Uses a
// named in-memory database with cache=shared so multiple connections
// within a test see the same data.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	testName := t.Name()

	// Cache by root test name so subtests share the outer database
	rootName := testName
	if idx := strings.Index(testName, "/"); idx > 0 {
		rootName = testName[:idx]
	}

	testDBCacheMu.Lock()
	if db, exists := testDBCache[rootName]; exists {
		testDBCacheMu.Unlock()
		return db
	}
	testDBCacheMu.Unlock()

	sanitizedName := strings.ReplaceAll(rootName, "/", "_")
	dsn := fmt.Sprintf("file:test_%s_%d?mode=memory&cache=shared", sanitizedName, time.Now().UnixNano())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("testsupport: failed to open test database: %v", err)
	}

	db.Exec("PRAGMA foreign_keys = ON")

	if err := db.AutoMigrate(allModels()...); err != nil {
		t.Fatalf("testsupport: failed to migrate models: %v", err)
	}

	testDBCacheMu.Lock()
	testDBCache[rootName] = db
	testDBCacheMu.Unlock()

	t.Cleanup(func() {
		testDBCacheMu.Lock()
		delete(testDBCache, rootName)
		testDBCacheMu.Unlock()
		sqlDB, err := db.DB()
		if err == nil {
			sqlDB.Close()
		}
	})

	return db
}

// GetLogger returns a logger that discards all output.
func GetLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// CannedRunner returns fixed rows for every report query and records
// the queries it receives.
type CannedRunner struct {
	Rows    []report.Row
	Err     error
	Queries []report.Query
}

func (r *CannedRunner) RunReport(_ context.Context, q report.Query) ([]report.Row, error) {
	r.Queries = append(r.Queries, q)
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Rows, nil
}

// SeedContentStats inserts rows into the content stats table.
func SeedContentStats(t *testing.T, db *gorm.DB, stats []report.ContentStat) {
	t.Helper()
	if err := db.Create(&stats).Error; err != nil {
		t.Fatalf("testsupport: failed to seed content stats: %v", err)
	}
}

// SeedPeople inserts people into the roster table.
func SeedPeople(t *testing.T, db *gorm.DB, people []roster.Person) {
	t.Helper()
	if err := db.Create(&people).Error; err != nil {
		t.Fatalf("testsupport: failed to seed roster: %v", err)
	}
}
