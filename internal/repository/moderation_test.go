package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func submitJob(t *testing.T, repo ModerationRepository, submitter uint, title string, at time.Time) *models.UnverifiedJob {
	t.Helper()
	job := &models.UnverifiedJob{
		JobFields: models.JobFields{
			Title:      title,
			Company:    "Acme",
			Location:   "Remote",
			DatePosted: models.MustParseDate("2025-02-01"),
		},
		Submission: models.Submission{
			SubmittedByUserID: submitter,
			SubmittedAt:       at,
			Status:            models.SubmissionStatusPending,
		},
	}
	require.NoError(t, repo.Submit(context.Background(), job))
	return job
}

func TestModerationRepository_ListPendingNewestFirst(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	submitJob(t, repo, alice.ID, "Older", base)
	submitJob(t, repo, alice.ID, "Newer", base.Add(time.Hour))

	items, err := repo.ListPending(ctx, models.ItemTypeJob)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Newer", items[0].DisplayName())
	assert.Equal(t, "Older", items[1].DisplayName())

	other, err := repo.ListPending(ctx, models.ItemTypeHackathon)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.ListPending(ctx, models.ItemType("webinar"))
	assert.True(t, models.HasCode(err, models.CodeInvalidType))
}

func TestModerationRepository_ApprovePromotesOnce(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	admin := createUser(t, db, "admin", asAdmin)
	sub := submitJob(t, repo, alice.ID, "Go Developer", time.Now())

	verified, err := repo.Approve(ctx, models.ItemTypeJob, sub.ID, admin.ID, time.Now())
	require.NoError(t, err)
	job, ok := verified.(*models.Job)
	require.True(t, ok)
	assert.NotZero(t, job.ID)
	assert.Equal(t, sub.JobFields.Title, job.Title)
	assert.Equal(t, sub.JobFields.Company, job.Company)
	assert.Equal(t, "2025-02-01", job.DatePosted.String())

	var stored models.UnverifiedJob
	require.NoError(t, db.First(&stored, sub.ID).Error)
	assert.Equal(t, models.SubmissionStatusApproved, stored.Status)
	require.NotNil(t, stored.ReviewedByUserID)
	assert.Equal(t, admin.ID, *stored.ReviewedByUserID)

	_, err = repo.Approve(ctx, models.ItemTypeJob, sub.ID, admin.ID, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	_, err = repo.Reject(ctx, models.ItemTypeJob, sub.ID, admin.ID, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	var jobs int64
	require.NoError(t, db.Model(&models.Job{}).Count(&jobs).Error)
	assert.Equal(t, int64(1), jobs)

	pending, err := repo.ListPending(ctx, models.ItemTypeJob)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestModerationRepository_RejectCreatesNothing(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	sub := submitJob(t, repo, alice.ID, "Spam", time.Now())

	rejected, err := repo.Reject(ctx, models.ItemTypeJob, sub.ID, 99, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusRejected, rejected.Meta().Status)

	var jobs int64
	require.NoError(t, db.Model(&models.Job{}).Count(&jobs).Error)
	assert.Zero(t, jobs)

	_, err = repo.Approve(ctx, models.ItemTypeJob, sub.ID, 99, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestModerationRepository_ApproveWrongTypeIsNotFound(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	alice := createUser(t, db, "alice")
	sub := submitJob(t, repo, alice.ID, "Go Developer", time.Now())

	_, err := repo.Approve(context.Background(), models.ItemTypeHackathon, sub.ID, 1, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestModerationRepository_ApproveHackathon(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")

	sub := &models.UnverifiedHackathon{
		HackathonFields: models.HackathonFields{Name: "AI Sprint", StartDate: models.MustParseDate("2025-03-01")},
		Submission:      models.Submission{SubmittedByUserID: alice.ID, SubmittedAt: time.Now(), Status: models.SubmissionStatusPending},
	}
	require.NoError(t, repo.Submit(ctx, sub))

	verified, err := repo.Approve(ctx, models.ItemTypeHackathon, sub.ID, 1, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.ItemTypeHackathon, verified.ItemType())
	assert.Equal(t, "AI Sprint", verified.DisplayName())

	var h models.Hackathon
	require.NoError(t, db.First(&h, verified.ItemID()).Error)
	assert.Equal(t, "2025-03-01", h.StartDate.String())
}

func TestModerationRepository_ListBySubmitter(t *testing.T) {
	db := newTestDB(t)
	repo := NewModerationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	base := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	submitJob(t, repo, alice.ID, "Job A", base)
	submitJob(t, repo, bob.ID, "Job B", base)
	fair := &models.UnverifiedCareerFair{
		CareerFairFields: models.CareerFairFields{Name: "Spring Fair", StartDate: models.MustParseDate("2025-04-10")},
		Submission:       models.Submission{SubmittedByUserID: alice.ID, SubmittedAt: base.Add(time.Hour), Status: models.SubmissionStatusPending},
	}
	require.NoError(t, repo.Submit(ctx, fair))
	_, err := repo.Reject(ctx, models.ItemTypeCareerFair, fair.ID, 1, time.Now())
	require.NoError(t, err)

	subs, err := repo.ListBySubmitter(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, models.ItemTypeCareerFair, subs[0].Type)
	assert.Equal(t, "Spring Fair", subs[0].Name)
	assert.Equal(t, models.SubmissionStatusRejected, subs[0].Status)
	assert.Equal(t, models.ItemTypeJob, subs[1].Type)
	assert.Equal(t, "Job A", subs[1].Name)
}

func TestModerationRepository_ApproveInsertFailureRollsBack(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewModerationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "unverified_jobs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status", "submitted_by_user_id"}).
			AddRow(7, "Go Developer", "pending", 3))
	mock.ExpectExec(`UPDATE "unverified_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "jobs"`).
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), models.ItemTypeJob, 7, 1, time.Now())
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.CodeApprovalFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModerationRepository_ApproveLostRaceIsNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewModerationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "unverified_jobs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "status"}).AddRow(7, "Go Developer", "pending"))
	// another transaction committed first; the guarded update matches nothing
	mock.ExpectExec(`UPDATE "unverified_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := repo.Approve(context.Background(), models.ItemTypeJob, 7, 1, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
