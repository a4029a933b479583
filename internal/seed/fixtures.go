package seed

import (
	_ "embed"
	"fmt"
	"time"

	"alumnet/internal/models"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/listings.yaml
var listingsYAML []byte

type jobFixture struct {
	Title         string `yaml:"title"`
	Company       string `yaml:"company"`
	Location      string `yaml:"location"`
	Type          string `yaml:"type"`
	Experience    string `yaml:"experience"`
	Salary        string `yaml:"salary"`
	PostedDaysAgo int    `yaml:"posted_days_ago"`
	URL           string `yaml:"url"`
	Description   string `yaml:"description"`
}

type internshipFixture struct {
	Title        string `yaml:"title"`
	Company      string `yaml:"company"`
	StartsInDays int    `yaml:"starts_in_days"`
	EndsInDays   int    `yaml:"ends_in_days"`
	URL          string `yaml:"url"`
	Description  string `yaml:"description"`
}

type eventFixture struct {
	Name         string `yaml:"name"`
	Location     string `yaml:"location"`
	StartsInDays int    `yaml:"starts_in_days"`
	Theme        string `yaml:"theme"`
	PrizePool    string `yaml:"prize_pool"`
	URL          string `yaml:"url"`
	Description  string `yaml:"description"`
}

// ListingFixtures is the decoded form of the embedded listings file.
type ListingFixtures struct {
	Jobs        []jobFixture        `yaml:"jobs"`
	Internships []internshipFixture `yaml:"internships"`
	CareerFairs []eventFixture      `yaml:"career_fairs"`
	Hackathons  []eventFixture      `yaml:"hackathons"`
}

// LoadListingFixtures decodes the embedded listing fixtures.
func LoadListingFixtures() (*ListingFixtures, error) {
	var f ListingFixtures
	if err := yaml.Unmarshal(listingsYAML, &f); err != nil {
		return nil, fmt.Errorf("decode listing fixtures: %w", err)
	}
	return &f, nil
}

// Items materializes the fixtures as verified listings dated relative to today.
func (f *ListingFixtures) Items(today time.Time) []models.VerifiedItem {
	day := func(offset int) models.Date { return models.NewDate(today.AddDate(0, 0, offset)) }

	items := make([]models.VerifiedItem, 0, len(f.Jobs)+len(f.Internships)+len(f.CareerFairs)+len(f.Hackathons))
	for _, j := range f.Jobs {
		items = append(items, &models.Job{JobFields: models.JobFields{
			Title:       j.Title,
			Company:     j.Company,
			Location:    j.Location,
			Type:        j.Type,
			Experience:  j.Experience,
			Salary:      j.Salary,
			DatePosted:  day(-j.PostedDaysAgo),
			URL:         j.URL,
			Description: j.Description,
		}})
	}
	for _, in := range f.Internships {
		start, end := day(in.StartsInDays), day(in.EndsInDays)
		items = append(items, &models.Internship{InternshipFields: models.InternshipFields{
			Title:       in.Title,
			Company:     in.Company,
			StartDate:   &start,
			EndDate:     &end,
			URL:         in.URL,
			Description: in.Description,
		}})
	}
	for _, e := range f.CareerFairs {
		items = append(items, &models.CareerFair{CareerFairFields: models.CareerFairFields{
			Name:        e.Name,
			Location:    e.Location,
			StartDate:   day(e.StartsInDays),
			URL:         e.URL,
			Description: e.Description,
		}})
	}
	for _, e := range f.Hackathons {
		items = append(items, &models.Hackathon{HackathonFields: models.HackathonFields{
			Name:        e.Name,
			Location:    e.Location,
			StartDate:   day(e.StartsInDays),
			Theme:       e.Theme,
			PrizePool:   e.PrizePool,
			URL:         e.URL,
			Description: e.Description,
		}})
	}
	return items
}

// Listings inserts the embedded fixtures into every listing table that is
// still empty and reports how many rows were written.
func Listings(db *gorm.DB) (int, error) {
	fixtures, err := LoadListingFixtures()
	if err != nil {
		return 0, err
	}

	empty := map[models.ItemType]bool{}
	for _, t := range models.ItemTypes {
		model, err := models.NewVerifiedItem(t)
		if err != nil {
			return 0, err
		}
		var n int64
		if err := db.Model(model).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("count %s: %w", t.Plural(), err)
		}
		empty[t] = n == 0
	}

	written := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for _, item := range fixtures.Items(time.Now().UTC()) {
			if !empty[item.ItemType()] {
				continue
			}
			if err := tx.Create(item).Error; err != nil {
				return fmt.Errorf("insert %s %q: %w", item.ItemType(), item.DisplayName(), err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}
