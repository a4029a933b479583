// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered student, alumnus or administrator.
type User struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	Username       string         `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email          string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password       string         `gorm:"not null" json:"-"`
	IsStudent      bool           `gorm:"not null;default:false" json:"is_student"`
	IsAlumni       bool           `gorm:"not null;default:false;index" json:"is_alumni"`
	IsAdmin        bool           `gorm:"not null;default:false" json:"is_admin"`
	IsActive       bool           `gorm:"not null" json:"is_active"`
	ActivityScore  int            `gorm:"not null;default:0" json:"activity_score"`
	AlumniGems     int            `gorm:"not null;default:0" json:"alumni_gems"`
	Likes          int            `gorm:"not null;default:0" json:"likes"`
	Department     string         `gorm:"size:120;index" json:"department"`
	Profession     string         `gorm:"size:120" json:"profession"`
	AlmaMater      string         `gorm:"size:120" json:"alma_mater"`
	CurrentCompany string         `gorm:"size:120" json:"current_company"`
	Bio            string         `gorm:"type:text" json:"bio"`
	Achievements   string         `gorm:"type:text" json:"achievements"`
	Links          string         `gorm:"type:text" json:"links"`
	AvatarURL      string         `gorm:"size:255" json:"avatar_url"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// PublicProfile is the subset of a user shown to other members.
type PublicProfile struct {
	ID             uint   `json:"id"`
	Username       string `json:"username"`
	IsStudent      bool   `json:"is_student"`
	IsAlumni       bool   `json:"is_alumni"`
	ActivityScore  int    `json:"activity_score"`
	AlumniGems     int    `json:"alumni_gems"`
	Likes          int    `json:"likes"`
	Department     string `json:"department"`
	Profession     string `json:"profession"`
	AlmaMater      string `json:"alma_mater"`
	CurrentCompany string `json:"current_company"`
	Bio            string `json:"bio"`
	Achievements   string `json:"achievements"`
	Links          string `json:"links"`
	AvatarURL      string `json:"avatar_url"`
}

// Public strips private fields (email, flags) from the user.
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:             u.ID,
		Username:       u.Username,
		IsStudent:      u.IsStudent,
		IsAlumni:       u.IsAlumni,
		ActivityScore:  u.ActivityScore,
		AlumniGems:     u.AlumniGems,
		Likes:          u.Likes,
		Department:     u.Department,
		Profession:     u.Profession,
		AlmaMater:      u.AlmaMater,
		CurrentCompany: u.CurrentCompany,
		Bio:            u.Bio,
		Achievements:   u.Achievements,
		Links:          u.Links,
		AvatarURL:      u.AvatarURL,
	}
}

// ConnectionUser is the compact user shape returned by connection listings.
type ConnectionUser struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Profession string `json:"profession"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// AlumniLike records that one user liked an alumnus profile.
type AlumniLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	LikerID   uint      `gorm:"not null;uniqueIndex:idx_alumni_like_pair" json:"liker_id"`
	LikedID   uint      `gorm:"not null;uniqueIndex:idx_alumni_like_pair;index" json:"liked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (AlumniLike) TableName() string {
	return "alumni_likes"
}

// DepartmentRanking is the most-liked alumni of one department.
type DepartmentRanking struct {
	Department string          `json:"department"`
	Alumni     []PublicProfile `json:"alumni"`
}

// UserFilter narrows the admin user listing.
type UserFilter struct {
	Search          string
	IncludeInactive bool
	Limit           int
	Offset          int
}
