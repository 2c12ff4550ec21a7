// Package roster stores the newsroom staff directory: the people whose
// short codes appear in the editor and author reporting dimensions.
package roster

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"raporbot/internal/pkg/turkish"
)

// Person is one staff member. Code is the short identifier used in the
// reporting dimensions, typically first-name initial plus surname
// (ckoca) or name.surname (cem.koca).
type Person struct {
	ID   uint   `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"not null"`
	Code string `gorm:"uniqueIndex;not null"`
	Site string `gorm:"index"`
}

// Store reads and writes the staff directory.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// All returns every person, ordered by code.
func (s *Store) All() ([]Person, error) {
	var people []Person
	if err := s.db.Order("code").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}
	return people, nil
}

// BySite returns the people registered for one site.
func (s *Store) BySite(site string) ([]Person, error) {
	var people []Person
	if err := s.db.Where("site = ?", site).Order("code").Find(&people).Error; err != nil {
		return nil, fmt.Errorf("loading roster for %s: %w", site, err)
	}
	return people, nil
}

// LookupDisplayName resolves a reporting code back to the person's full
// name. Unknown codes return the code unchanged.
func (s *Store) LookupDisplayName(code string) string {
	normalized := turkish.Normalize(strings.TrimSpace(code))
	if normalized == "" {
		return code
	}
	var person Person
	err := s.db.Where("code = ?", normalized).First(&person).Error
	if err != nil {
		// Codes sometimes carry a name.surname variant of the stored code.
		compact := strings.ReplaceAll(normalized, ".", "")
		if compact != normalized {
			if err := s.db.Where("code = ?", compact).First(&person).Error; err == nil {
				return person.Name
			}
		}
		return code
	}
	return person.Name
}

// SeedFromCSV loads a name,code[,site] CSV file into the store. Existing
// codes are updated in place. A missing file is not an error so a fresh
// install can start with an empty roster.
func (s *Store) SeedFromCSV(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("opening roster file: %w", err)
	}
	defer f.Close()

	people, err := parseCSV(f)
	if err != nil {
		return 0, fmt.Errorf("parsing roster file %s: %w", path, err)
	}
	return s.Seed(people)
}

// Seed upserts people by code.
func (s *Store) Seed(people []Person) (int, error) {
	if len(people) == 0 {
		return 0, nil
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "code"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "site"}),
	}).Create(&people).Error
	if err != nil {
		return 0, fmt.Errorf("seeding roster: %w", err)
	}
	return len(people), nil
}

func parseCSV(r io.Reader) ([]Person, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var people []Person
	seen := make(map[string]bool)
	for line := 0; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		name := strings.TrimSpace(record[0])
		code := turkish.Normalize(strings.TrimSpace(record[1]))
		if name == "" || code == "" {
			continue
		}
		// Header row
		if line == 0 && (code == "kod" || code == "code") {
			continue
		}
		if seen[code] {
			continue
		}
		seen[code] = true

		person := Person{Name: name, Code: code}
		if len(record) > 2 {
			person.Site = strings.TrimSpace(record[2])
		}
		people = append(people, person)
	}
	return people, nil
}
