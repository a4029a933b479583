package repository

import (
	"context"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationRepository_ListAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	repo := NewNotificationRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	batch := []models.Notification{
		{UserID: alice.ID, Message: "first", Type: "new_job", CreatedAt: base},
		{UserID: alice.ID, Message: "second", Type: "new_job", CreatedAt: base.Add(time.Minute)},
		{UserID: bob.ID, Message: "bob's", Type: "new_job", CreatedAt: base},
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	list, err := repo.ListForUser(ctx, alice.ID, false, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Message)

	count, err := repo.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// bob's id is ignored: updates are scoped to the caller
	updated, err := repo.MarkRead(ctx, alice.ID, []uint{list[0].ID, batch[2].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	unread, err := repo.ListForUser(ctx, alice.ID, true, 50)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, "first", unread[0].Message)

	bobCount, err := repo.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bobCount)

	none, err := repo.MarkRead(ctx, alice.ID, nil)
	require.NoError(t, err)
	assert.Zero(t, none)
}

func TestIssueRepository_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	repo := NewIssueRepository(db)
	ctx := context.Background()

	issue := &models.UserIssue{Name: "Ann", Email: "ann@example.com", Message: "Broken link", Status: models.IssueStatusPending, SubmittedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, issue))

	updated, err := repo.UpdateStatus(ctx, issue.ID, models.IssueStatusResolved, time.Now())
	require.NoError(t, err)
	assert.Equal(t, models.IssueStatusResolved, updated.Status)

	resolved, err := repo.List(ctx, models.IssueStatusResolved)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	pending, err := repo.List(ctx, models.IssueStatusPending)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = repo.UpdateStatus(ctx, 999, models.IssueStatusClosed, time.Now())
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
