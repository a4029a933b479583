// Package seed provides helpers to create demo data for development
// databases and tests.
package seed

import (
	"fmt"
	"strings"
	"time"

	"alumnet/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is the password every seeded account is created with.
const DefaultPassword = "Alumnet#2025"

var departments = []string{
	"Computer Science", "Electrical Engineering", "Mechanical Engineering",
	"Business Administration", "Economics", "Biology", "Physics", "Design",
}

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db           *gorm.DB
	passwordHash string
}

// NewFactory creates a Factory bound to db. With skipBcrypt the stored
// password is a placeholder that can never be used to log in.
func NewFactory(db *gorm.DB, skipBcrypt bool) (*Factory, error) {
	gofakeit.Seed(time.Now().UnixNano())

	hash := "seed-placeholder"
	if !skipBcrypt {
		h, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash seed password: %w", err)
		}
		hash = string(h)
	}
	return &Factory{db: db, passwordHash: hash}, nil
}

// BuildUser returns an unsaved user. Roughly two thirds are alumni with a
// current employer; the rest are students.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	username := strings.ToLower(fmt.Sprintf("%s_%s%d",
		gofakeit.FirstName(), gofakeit.LastName(), gofakeit.Number(10, 999)))
	if len(username) > 50 {
		username = username[:50]
	}

	u := &models.User{
		Username:   username,
		Email:      username + "@example.com",
		Password:   f.passwordHash,
		IsActive:   true,
		Department: gofakeit.RandomString(departments),
		AlmaMater:  "State University",
		Bio:        gofakeit.Sentence(12),
	}
	if gofakeit.Number(1, 3) > 1 {
		u.IsAlumni = true
		u.Profession = gofakeit.JobTitle()
		u.CurrentCompany = gofakeit.Company()
		u.Achievements = gofakeit.Sentence(8)
	} else {
		u.IsStudent = true
		u.Profession = "Student"
	}

	for _, override := range overrides {
		override(u)
	}
	return u
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	u := f.BuildUser(overrides...)
	if err := f.db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

// CreateConnection persists a connection row between requester and receiver.
// Accepted connections also credit both users with reward gems so seeded
// balances match what the live flow would produce.
func (f *Factory) CreateConnection(requester, receiver *models.User, status models.ConnectionStatus, reward int) (*models.Connection, error) {
	conn := &models.Connection{
		RequesterID: requester.ID,
		ReceiverID:  receiver.ID,
		Status:      status,
	}
	err := f.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(conn).Error; err != nil {
			return err
		}
		if status != models.ConnectionStatusAccepted || reward <= 0 {
			return nil
		}
		return tx.Model(&models.User{}).
			Where("id IN ?", []uint{requester.ID, receiver.ID}).
			UpdateColumn("alumni_gems", gorm.Expr("alumni_gems + ?", reward)).Error
	})
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// CreateSparkQuestion persists a daily spark question posted by an alumnus on day.
func (f *Factory) CreateSparkQuestion(author *models.User, day time.Time) (*models.DailySparkQuestion, error) {
	q := &models.DailySparkQuestion{
		Company:        author.CurrentCompany,
		Role:           author.Profession,
		Question:       gofakeit.Question(),
		PostedByUserID: author.ID,
		PostedDate:     models.NewDate(day),
	}
	if err := f.db.Create(q).Error; err != nil {
		return nil, err
	}
	return q, nil
}
