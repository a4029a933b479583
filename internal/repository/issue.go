package repository

import (
	"context"
	"time"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// IssueRepository defines persistence operations for help requests.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.UserIssue) error
	List(ctx context.Context, status models.IssueStatus) ([]models.UserIssue, error)
	UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, now time.Time) (*models.UserIssue, error)
}

type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository returns a new IssueRepository implementation.
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.UserIssue) error {
	if err := r.db.WithContext(ctx).Create(issue).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// List returns issues newest first, optionally narrowed to one status.
func (r *issueRepository) List(ctx context.Context, status models.IssueStatus) ([]models.UserIssue, error) {
	q := r.db.WithContext(ctx)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	out := []models.UserIssue{}
	if err := q.Order("submitted_at DESC, id DESC").Find(&out).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return out, nil
}

func (r *issueRepository) UpdateStatus(ctx context.Context, id uint, status models.IssueStatus, now time.Time) (*models.UserIssue, error) {
	var issue models.UserIssue
	if err := r.db.WithContext(ctx).First(&issue, id).Error; err != nil {
		return nil, notFoundOr(err, "Issue", id)
	}
	if err := r.db.WithContext(ctx).Model(&issue).
		Updates(map[string]interface{}{"status": status, "updated_at": now}).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	issue.Status = status
	issue.UpdatedAt = now
	return &issue, nil
}
