package models

import (
	"strings"
	"time"
)

// ItemType is the closed set of moderated content kinds.
type ItemType string

const (
	ItemTypeJob        ItemType = "job"
	ItemTypeInternship ItemType = "internship"
	ItemTypeCareerFair ItemType = "career_fair"
	ItemTypeHackathon  ItemType = "hackathon"
)

// ItemTypes lists every moderated content kind in display order.
var ItemTypes = []ItemType{ItemTypeJob, ItemTypeInternship, ItemTypeCareerFair, ItemTypeHackathon}

// ParseItemType accepts singular or plural names with '-' or '_' separators.
func ParseItemType(raw string) (ItemType, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.TrimSuffix(s, "s")
	switch ItemType(s) {
	case ItemTypeJob, ItemTypeInternship, ItemTypeCareerFair, ItemTypeHackathon:
		return ItemType(s), nil
	}
	return "", NewInvalidTypeError(raw)
}

// Plural returns the collection name used in routes and notifications.
func (t ItemType) Plural() string {
	return string(t) + "s"
}

// NotificationType is the notification type announcing a new verified item.
func (t ItemType) NotificationType() string {
	return "new_" + string(t)
}

// SubmissionStatus is the moderation state of an unverified item.
type SubmissionStatus string

const (
	// SubmissionStatusPending indicates the item awaits admin review.
	SubmissionStatusPending SubmissionStatus = "pending"
	// SubmissionStatusApproved indicates the item was promoted. Terminal.
	SubmissionStatusApproved SubmissionStatus = "approved"
	// SubmissionStatusRejected indicates the item was declined. Terminal.
	SubmissionStatusRejected SubmissionStatus = "rejected"
)

// Submission is the moderation metadata shared by every unverified item.
type Submission struct {
	SubmittedByUserID uint             `gorm:"not null;index" json:"submitted_by_user_id"`
	SubmittedAt       time.Time        `gorm:"not null;index" json:"submitted_at"`
	Status            SubmissionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ReviewedByUserID  *uint            `json:"reviewed_by_user_id,omitempty"`
}

// VerifiedItem is a published listing of any type.
type VerifiedItem interface {
	ItemType() ItemType
	ItemID() uint
	DisplayName() string
}

// UnverifiedItem is a pending or reviewed submission of any type.
type UnverifiedItem interface {
	ItemType() ItemType
	ItemID() uint
	DisplayName() string
	Meta() *Submission
	// Promote copies the domain fields into a new verified row.
	Promote() VerifiedItem
}

// JobFields are the domain fields of a job posting.
type JobFields struct {
	Title       string `gorm:"size:200;not null;index" json:"title" validate:"required,max=200"`
	Company     string `gorm:"size:200" json:"company" validate:"max=200"`
	Location    string `gorm:"size:200" json:"location" validate:"max=200"`
	Description string `gorm:"type:text" json:"description" validate:"max=10000"`
	Salary      string `gorm:"size:100" json:"salary" validate:"max=100"`
	DatePosted  Date   `gorm:"index" json:"date_posted"`
	Type        string `gorm:"size:50" json:"type" validate:"max=50"`
	Experience  string `gorm:"size:100" json:"experience" validate:"max=100"`
	ImageURL    string `gorm:"size:500" json:"image_url" validate:"omitempty,url,max=500"`
	URL         string `gorm:"size:500" json:"url" validate:"omitempty,url,max=500"`
}

// Job is a verified job posting.
type Job struct {
	ID uint `gorm:"primaryKey" json:"id"`
	JobFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Job) TableName() string { return "jobs" }
func (Job) ItemType() ItemType { return ItemTypeJob }
func (j *Job) ItemID() uint { return j.ID }
func (j *Job) DisplayName() string { return j.Title }

// UnverifiedJob is a job posting awaiting review.
type UnverifiedJob struct {
	ID uint `gorm:"primaryKey" json:"id"`
	JobFields
	Submission
	UpdatedAt time.Time `json:"updated_at"`
}

func (UnverifiedJob) TableName() string { return "unverified_jobs" }
func (UnverifiedJob) ItemType() ItemType { return ItemTypeJob }
func (u *UnverifiedJob) ItemID() uint { return u.ID }
func (u *UnverifiedJob) DisplayName() string { return u.Title }
func (u *UnverifiedJob) Meta() *Submission { return &u.Submission }
func (u *UnverifiedJob) Promote() VerifiedItem { return &Job{JobFields: u.JobFields} }

// InternshipFields are the domain fields of an internship.
type InternshipFields struct {
	Title       string `gorm:"size:200;not null;index" json:"title" validate:"required,max=200"`
	Company     string `gorm:"size:200" json:"company" validate:"max=200"`
	StartDate   *Date  `gorm:"index" json:"start_date"`
	EndDate     *Date  `json:"end_date"`
	Description string `gorm:"type:text" json:"description" validate:"max=10000"`
	URL         string `gorm:"size:500" json:"url" validate:"omitempty,url,max=500"`
}

// Internship is a verified internship.
type Internship struct {
	ID uint `gorm:"primaryKey" json:"id"`
	InternshipFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Internship) TableName() string { return "internships" }
func (Internship) ItemType() ItemType { return ItemTypeInternship }
func (i *Internship) ItemID() uint { return i.ID }
func (i *Internship) DisplayName() string { return i.Title }

// UnverifiedInternship is an internship awaiting review.
type UnverifiedInternship struct {
	ID uint `gorm:"primaryKey" json:"id"`
	InternshipFields
	Submission
	UpdatedAt time.Time `json:"updated_at"`
}

func (UnverifiedInternship) TableName() string { return "unverified_internships" }
func (UnverifiedInternship) ItemType() ItemType { return ItemTypeInternship }
func (u *UnverifiedInternship) ItemID() uint { return u.ID }
func (u *UnverifiedInternship) DisplayName() string { return u.Title }
func (u *UnverifiedInternship) Meta() *Submission { return &u.Submission }
func (u *UnverifiedInternship) Promote() VerifiedItem { return &Internship{InternshipFields: u.InternshipFields} }

// CareerFairFields are the domain fields of a career fair.
type CareerFairFields struct {
	Name        string `gorm:"size:200;not null;index" json:"name" validate:"required,max=200"`
	StartDate   Date   `gorm:"index" json:"start_date" validate:"required"`
	Location    string `gorm:"size:200" json:"location" validate:"max=200"`
	Description string `gorm:"type:text" json:"description" validate:"max=10000"`
	URL         string `gorm:"size:500" json:"url" validate:"omitempty,url,max=500"`
}

// CareerFair is a verified career fair.
type CareerFair struct {
	ID uint `gorm:"primaryKey" json:"id"`
	CareerFairFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CareerFair) TableName() string { return "career_fairs" }
func (CareerFair) ItemType() ItemType { return ItemTypeCareerFair }
func (f *CareerFair) ItemID() uint { return f.ID }
func (f *CareerFair) DisplayName() string { return f.Name }

// UnverifiedCareerFair is a career fair awaiting review.
type UnverifiedCareerFair struct {
	ID uint `gorm:"primaryKey" json:"id"`
	CareerFairFields
	Submission
	UpdatedAt time.Time `json:"updated_at"`
}

func (UnverifiedCareerFair) TableName() string { return "unverified_career_fairs" }
func (UnverifiedCareerFair) ItemType() ItemType { return ItemTypeCareerFair }
func (u *UnverifiedCareerFair) ItemID() uint { return u.ID }
func (u *UnverifiedCareerFair) DisplayName() string { return u.Name }
func (u *UnverifiedCareerFair) Meta() *Submission { return &u.Submission }
func (u *UnverifiedCareerFair) Promote() VerifiedItem { return &CareerFair{CareerFairFields: u.CareerFairFields} }

// HackathonFields are the domain fields of a hackathon.
type HackathonFields struct {
	Name        string `gorm:"size:200;not null;index" json:"name" validate:"required,max=200"`
	StartDate   Date   `gorm:"index" json:"start_date" validate:"required"`
	Location    string `gorm:"size:200" json:"location" validate:"max=200"`
	Description string `gorm:"type:text" json:"description" validate:"max=10000"`
	Theme       string `gorm:"size:200" json:"theme" validate:"max=200"`
	PrizePool   string `gorm:"size:100" json:"prize_pool" validate:"max=100"`
	URL         string `gorm:"size:500" json:"url" validate:"omitempty,url,max=500"`
}

// Hackathon is a verified hackathon.
type Hackathon struct {
	ID uint `gorm:"primaryKey" json:"id"`
	HackathonFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Hackathon) TableName() string { return "hackathons" }
func (Hackathon) ItemType() ItemType { return ItemTypeHackathon }
func (h *Hackathon) ItemID() uint { return h.ID }
func (h *Hackathon) DisplayName() string { return h.Name }

// UnverifiedHackathon is a hackathon awaiting review.
type UnverifiedHackathon struct {
	ID uint `gorm:"primaryKey" json:"id"`
	HackathonFields
	Submission
	UpdatedAt time.Time `json:"updated_at"`
}

func (UnverifiedHackathon) TableName() string { return "unverified_hackathons" }
func (UnverifiedHackathon) ItemType() ItemType { return ItemTypeHackathon }
func (u *UnverifiedHackathon) ItemID() uint { return u.ID }
func (u *UnverifiedHackathon) DisplayName() string { return u.Name }
func (u *UnverifiedHackathon) Meta() *Submission { return &u.Submission }
func (u *UnverifiedHackathon) Promote() VerifiedItem { return &Hackathon{HackathonFields: u.HackathonFields} }

// NewUnverifiedItem returns an empty submission row of type t.
func NewUnverifiedItem(t ItemType) (UnverifiedItem, error) {
	switch t {
	case ItemTypeJob:
		return &UnverifiedJob{}, nil
	case ItemTypeInternship:
		return &UnverifiedInternship{}, nil
	case ItemTypeCareerFair:
		return &UnverifiedCareerFair{}, nil
	case ItemTypeHackathon:
		return &UnverifiedHackathon{}, nil
	}
	return nil, NewInvalidTypeError(string(t))
}

// NewVerifiedItem returns an empty published row of type t.
func NewVerifiedItem(t ItemType) (VerifiedItem, error) {
	switch t {
	case ItemTypeJob:
		return &Job{}, nil
	case ItemTypeInternship:
		return &Internship{}, nil
	case ItemTypeCareerFair:
		return &CareerFair{}, nil
	case ItemTypeHackathon:
		return &Hackathon{}, nil
	}
	return nil, NewInvalidTypeError(string(t))
}

// SubmissionSummary is one row of a user's cross-type submission history.
type SubmissionSummary struct {
	ID          uint             `json:"id"`
	Type        ItemType         `json:"type"`
	Name        string           `json:"name"`
	Status      SubmissionStatus `json:"status"`
	SubmittedAt time.Time        `json:"submitted_at"`
}

// FeedEvent is one entry of the mixed recent-listings feed.
type FeedEvent struct {
	Type    ItemType `json:"type"`
	ID      uint     `json:"id"`
	Title   string   `json:"title"`
	Date    *Date    `json:"date,omitempty"`
	Company string   `json:"company,omitempty"`
	URL     string   `json:"url,omitempty"`
}
