package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"alumnet/internal/models"

	"gorm.io/gorm"
)

// ModerationRepository stores submissions awaiting review and promotes them on approval.
type ModerationRepository interface {
	Submit(ctx context.Context, item models.UnverifiedItem) error
	ListPending(ctx context.Context, itemType models.ItemType) ([]models.UnverifiedItem, error)
	Approve(ctx context.Context, itemType models.ItemType, id, adminID uint, now time.Time) (models.VerifiedItem, error)
	Reject(ctx context.Context, itemType models.ItemType, id, adminID uint, now time.Time) (models.UnverifiedItem, error)
	ListBySubmitter(ctx context.Context, userID uint) ([]models.SubmissionSummary, error)
}

type moderationRepository struct {
	db *gorm.DB
}

// NewModerationRepository returns a new ModerationRepository implementation.
func NewModerationRepository(db *gorm.DB) ModerationRepository {
	return &moderationRepository{db: db}
}

type unverifiedPtr[U any] interface {
	*U
	models.UnverifiedItem
}

// submissionTables maps each type to its unverified table and display column.
var submissionTables = map[models.ItemType]struct{ table, nameColumn string }{
	models.ItemTypeJob:        {"unverified_jobs", "title"},
	models.ItemTypeInternship: {"unverified_internships", "title"},
	models.ItemTypeCareerFair: {"unverified_career_fairs", "name"},
	models.ItemTypeHackathon:  {"unverified_hackathons", "name"},
}

func (r *moderationRepository) Submit(ctx context.Context, item models.UnverifiedItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *moderationRepository) ListPending(ctx context.Context, itemType models.ItemType) ([]models.UnverifiedItem, error) {
	db := r.db.WithContext(ctx)
	switch itemType {
	case models.ItemTypeJob:
		return listPending[models.UnverifiedJob](db)
	case models.ItemTypeInternship:
		return listPending[models.UnverifiedInternship](db)
	case models.ItemTypeCareerFair:
		return listPending[models.UnverifiedCareerFair](db)
	case models.ItemTypeHackathon:
		return listPending[models.UnverifiedHackathon](db)
	}
	return nil, models.NewInvalidTypeError(string(itemType))
}

func listPending[U any, PU unverifiedPtr[U]](db *gorm.DB) ([]models.UnverifiedItem, error) {
	var rows []U
	if err := db.Where("status = ?", models.SubmissionStatusPending).
		Order("submitted_at DESC, id DESC").
		Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	out := make([]models.UnverifiedItem, 0, len(rows))
	for i := range rows {
		out = append(out, PU(&rows[i]))
	}
	return out, nil
}

// Approve promotes a pending submission. Both the conditional status update and
// the verified insert run in one transaction; a row that is no longer pending
// reports NotFound, and any storage failure rolls back and reports ApprovalFailed.
func (r *moderationRepository) Approve(ctx context.Context, itemType models.ItemType, id, adminID uint, now time.Time) (models.VerifiedItem, error) {
	var verified models.VerifiedItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.decide(tx, itemType, id, adminID, models.SubmissionStatusApproved, now)
		if err != nil {
			return err
		}
		verified = row.Promote()
		if err := tx.Create(verified).Error; err != nil {
			return models.NewApprovalFailedError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return verified, nil
}

func (r *moderationRepository) Reject(ctx context.Context, itemType models.ItemType, id, adminID uint, now time.Time) (models.UnverifiedItem, error) {
	var rejected models.UnverifiedItem
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := r.decide(tx, itemType, id, adminID, models.SubmissionStatusRejected, now)
		if err != nil {
			return err
		}
		rejected = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// decide loads the pending row and moves it to status, guarded by status = pending.
func (r *moderationRepository) decide(tx *gorm.DB, itemType models.ItemType, id, adminID uint, status models.SubmissionStatus, now time.Time) (models.UnverifiedItem, error) {
	row, err := models.NewUnverifiedItem(itemType)
	if err != nil {
		return nil, err
	}
	if err := tx.Where("id = ? AND status = ?", id, models.SubmissionStatusPending).First(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Pending "+string(itemType), id)
		}
		return nil, decisionError(status, err)
	}

	res := tx.Model(row).
		Where("status = ?", models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":              status,
			"reviewed_by_user_id": adminID,
			"updated_at":          now,
		})
	if res.Error != nil {
		return nil, decisionError(status, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.NewNotFoundError("Pending "+string(itemType), id)
	}

	meta := row.Meta()
	meta.Status = status
	meta.ReviewedByUserID = &adminID
	return row, nil
}

func decisionError(status models.SubmissionStatus, err error) error {
	if status == models.SubmissionStatusApproved {
		return models.NewApprovalFailedError(err)
	}
	return models.NewInternalError(err)
}

// ListBySubmitter returns the user's submissions across every type, newest first.
func (r *moderationRepository) ListBySubmitter(ctx context.Context, userID uint) ([]models.SubmissionSummary, error) {
	out := []models.SubmissionSummary{}
	for _, t := range models.ItemTypes {
		src := submissionTables[t]
		var rows []models.SubmissionSummary
		if err := r.db.WithContext(ctx).
			Table(src.table).
			Select("id, "+src.nameColumn+" AS name, status, submitted_at").
			Where("submitted_by_user_id = ?", userID).
			Scan(&rows).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		for i := range rows {
			rows[i].Type = t
		}
		out = append(out, rows...)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}
