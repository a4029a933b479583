package seed

import (
	"fmt"
	"log"
	"strings"
	"time"

	"alumnet/internal/database"
	"alumnet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configure a seeding run.
type Options struct {
	NumUsers           int
	ConnectionsPerUser int
	GemReward          int
	SparkDays          int
	SkipBcrypt         bool
	ShouldClean        bool
}

// Report summarizes what a run created.
type Report struct {
	Users          int
	Connections    int
	Listings       int
	SparkQuestions int
}

// Seeder populates a database with a connected alumni network.
type Seeder struct {
	db      *gorm.DB
	opts    Options
	factory *Factory
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 50
	}
	if opts.ConnectionsPerUser < 0 {
		opts.ConnectionsPerUser = 0
	}
	if opts.GemReward <= 0 {
		opts.GemReward = 10
	}
	f, err := NewFactory(db, opts.SkipBcrypt)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, opts: opts, factory: f}, nil
}

// Run seeds users, connections, listing fixtures and spark questions.
func (s *Seeder) Run() (*Report, error) {
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return nil, err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	log.Printf("✓ %d users created", len(users))

	conns, err := s.SeedConnections(users, s.opts.ConnectionsPerUser)
	if err != nil {
		return nil, fmt.Errorf("seed connections: %w", err)
	}
	log.Printf("✓ %d connections created", conns)

	listings, err := Listings(s.db)
	if err != nil {
		return nil, err
	}
	log.Printf("✓ %d listings created", listings)

	sparks, err := s.SeedSparkQuestions(users, s.opts.SparkDays)
	if err != nil {
		return nil, fmt.Errorf("seed daily spark: %w", err)
	}
	log.Printf("✓ %d daily spark questions created", sparks)

	return &Report{Users: len(users), Connections: conns, Listings: listings, SparkQuestions: sparks}, nil
}

// ClearAll empties every application table.
func (s *Seeder) ClearAll() error {
	log.Println("🗑️  Clearing existing data...")
	all := database.PersistentModels()

	if s.db.Dialector.Name() == "postgres" {
		tables := make([]string, 0, len(all))
		for _, m := range all {
			if t, ok := m.(interface{ TableName() string }); ok {
				tables = append(tables, t.TableName())
			}
		}
		return s.db.Exec("TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE").Error
	}

	for i := len(all) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(all[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", all[i], err)
		}
	}
	return nil
}

// SeedUsers creates count users. The first three accounts are fixed so demo
// logins stay stable across runs: an alumna, a student and an admin.
func (s *Seeder) SeedUsers(count int) ([]*models.User, error) {
	fixed := []func(*models.User){
		func(u *models.User) {
			u.Username, u.Email = "ada", "ada@example.com"
			u.IsAlumni, u.IsStudent = true, false
			u.Profession, u.CurrentCompany = "Principal Engineer", "Analytical Engines"
		},
		func(u *models.User) {
			u.Username, u.Email = "sam", "sam@example.com"
			u.IsAlumni, u.IsStudent = false, true
			u.Profession, u.CurrentCompany = "Student", ""
		},
		func(u *models.User) {
			u.Username, u.Email = "admin", "admin@example.com"
			u.IsAdmin = true
		},
	}

	users := make([]*models.User, 0, count)
	for i := 0; i < count; i++ {
		var overrides []func(*models.User)
		if i < len(fixed) {
			overrides = append(overrides, fixed[i])
		}
		u, err := s.factory.CreateUser(overrides...)
		if err != nil {
			log.Printf("skipping user %d: %v", i, err)
			continue
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedConnections links each user to up to perUser random others. Every
// pair gets at most one row. Roughly 60% of rows are accepted, 30% pending
// and 10% ignored.
func (s *Seeder) SeedConnections(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 || perUser == 0 {
		return 0, nil
	}

	seen := map[models.UserPair]bool{}
	created := 0
	for _, requester := range users {
		for n := 0; n < perUser; n++ {
			receiver := users[gofakeit.Number(0, len(users)-1)]
			if receiver.ID == requester.ID {
				continue
			}
			pair := models.NewUserPair(requester.ID, receiver.ID)
			if seen[pair] {
				continue
			}
			seen[pair] = true

			status := models.ConnectionStatusAccepted
			switch roll := gofakeit.Number(1, 10); {
			case roll == 10:
				status = models.ConnectionStatusIgnored
			case roll >= 7:
				status = models.ConnectionStatusPending
			}
			if _, err := s.factory.CreateConnection(requester, receiver, status, s.opts.GemReward); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// SeedSparkQuestions posts one question per day for the last days days,
// each from a random alumnus.
func (s *Seeder) SeedSparkQuestions(users []*models.User, days int) (int, error) {
	var alumni []*models.User
	for _, u := range users {
		if u.IsAlumni {
			alumni = append(alumni, u)
		}
	}
	if len(alumni) == 0 {
		return 0, nil
	}

	today := time.Now().UTC()
	created := 0
	for d := 0; d < days; d++ {
		author := alumni[gofakeit.Number(0, len(alumni)-1)]
		if _, err := s.factory.CreateSparkQuestion(author, today.AddDate(0, 0, -d)); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}
