package repository

import (
	"context"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionRepository_PopularWithAnswers(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice", asAlumnus("CS"))
	bob := createUser(t, db, "bob")

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := &models.Question{UserID: bob.ID, QuestionText: "How do I prepare for on-call?", CreatedAt: base}
	newer := &models.Question{UserID: bob.ID, QuestionText: "Which electives matter?", CreatedAt: base.Add(time.Hour)}
	liked := &models.Question{UserID: alice.ID, QuestionText: "Remote or office?", Likes: 3, CreatedAt: base}
	for _, q := range []*models.Question{older, newer, liked} {
		require.NoError(t, repo.Create(ctx, q))
	}
	require.NoError(t, repo.CreateAnswer(ctx, &models.ExpertAnswer{QuestionID: older.ID, UserID: alice.ID, AnswerText: "Read the runbooks", IsAlumniAnswer: true}))

	popular, err := repo.Popular(ctx, 10)
	require.NoError(t, err)
	require.Len(t, popular, 3)
	assert.Equal(t, []uint{liked.ID, newer.ID, older.ID}, []uint{popular[0].ID, popular[1].ID, popular[2].ID})
	assert.Equal(t, "alice", popular[0].Username)
	assert.Empty(t, popular[1].Answers)

	require.Len(t, popular[2].Answers, 1)
	assert.Equal(t, "alice", popular[2].Answers[0].Username)
	assert.True(t, popular[2].Answers[0].IsAlumniAnswer)

	top, err := repo.Popular(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)

	mine, err := repo.ListByUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)
}

func TestQuestionRepository_LikeOncePerUser(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	q := &models.Question{UserID: alice.ID, QuestionText: "Is a master's worth it?"}
	require.NoError(t, repo.Create(ctx, q))

	likes, err := repo.Like(ctx, bob.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, likes)

	_, err = repo.Like(ctx, bob.ID, q.ID)
	assert.True(t, models.HasCode(err, models.CodeConflict))

	likes, err = repo.Like(ctx, alice.ID, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, likes)

	_, err = repo.Like(ctx, bob.ID, q.ID+100)
	assert.True(t, models.HasCode(err, models.CodeNotFound))

	stored, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.Likes)
	assert.Equal(t, "alice", stored.Username)

	var rows int64
	require.NoError(t, db.Model(&models.QuestionLike{}).Count(&rows).Error)
	assert.Equal(t, int64(2), rows)
}
