package models

import "time"

// IssueStatus is the triage state of a help request.
type IssueStatus string

const (
	IssueStatusPending       IssueStatus = "pending"
	IssueStatusInvestigating IssueStatus = "investigating"
	IssueStatusResolved      IssueStatus = "resolved"
	IssueStatusClosed        IssueStatus = "closed"
	IssueStatusCompleted     IssueStatus = "completed"
)

// Valid reports whether s is a known issue status.
func (s IssueStatus) Valid() bool {
	switch s {
	case IssueStatusPending, IssueStatusInvestigating, IssueStatusResolved, IssueStatusClosed, IssueStatusCompleted:
		return true
	}
	return false
}

// UserIssue is a help/feedback report, optionally tied to a signed-in user.
type UserIssue struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	UserID      *uint       `gorm:"index" json:"user_id,omitempty"`
	Name        string      `gorm:"size:120;not null" json:"name" validate:"required,max=120"`
	Email       string      `gorm:"size:255;not null" json:"email" validate:"required,email,max=255"`
	Message     string      `gorm:"type:text;not null" json:"message" validate:"required,max=5000"`
	Status      IssueStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	SubmittedAt time.Time   `gorm:"index" json:"submitted_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (UserIssue) TableName() string {
	return "user_issues"
}
