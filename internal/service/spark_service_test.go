package service

import (
	"context"
	"testing"
	"time"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkService_PostQuestion(t *testing.T) {
	t.Parallel()
	var awarded []int
	var stored *models.DailySparkQuestion
	users := &userRepoStub{
		addActivityFn: func(_ context.Context, _ uint, delta int) error {
			awarded = append(awarded, delta)
			return nil
		},
	}
	svc := NewSparkService(&sparkRepoStub{
		createQuestionFn: func(_ context.Context, q *models.DailySparkQuestion) error {
			if stored != nil && stored.PostedByUserID == q.PostedByUserID && stored.PostedDate.Equal(q.PostedDate.Time) {
				return models.NewConflictError("duplicate")
			}
			stored = q
			return nil
		},
	}, users)
	svc.SetClock(fixedClock(time.Date(2025, 3, 1, 23, 59, 0, 0, time.UTC)))
	ctx := context.Background()

	_, err := svc.PostQuestion(ctx, bob, QuestionInput{Question: "Why Go?"})
	assertCode(t, err, models.CodeForbidden)

	_, err = svc.PostQuestion(ctx, alice, QuestionInput{Question: "   "})
	assertCode(t, err, models.CodeValidation)

	q, err := svc.PostQuestion(ctx, alice, QuestionInput{Company: " Acme ", Question: "Design a rate limiter"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", q.Company)
	assert.Equal(t, "2025-03-01", q.PostedDate.String())
	assert.Equal(t, []int{5}, awarded)

	_, err = svc.PostQuestion(ctx, alice, QuestionInput{Question: "Another one"})
	assertCode(t, err, models.CodeConflict)
	assert.Equal(t, []int{5}, awarded)
}

func TestSparkService_SubmitAnswerNeedsAQuestion(t *testing.T) {
	t.Parallel()
	svc := NewSparkService(&sparkRepoStub{}, &userRepoStub{})

	_, err := svc.SubmitAnswer(context.Background(), 2, "use a token bucket")
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.SubmitAnswer(context.Background(), 2, "")
	assertCode(t, err, models.CodeValidation)
}

func TestSparkService_SubmitAnswerAndVote(t *testing.T) {
	t.Parallel()
	var answer *models.DailySparkAnswer
	var awarded int
	svc := NewSparkService(&sparkRepoStub{
		latestFn: func(context.Context) (*models.DailySparkQuestion, error) {
			return &models.DailySparkQuestion{ID: 8}, nil
		},
		createAnswerFn: func(_ context.Context, a *models.DailySparkAnswer) error {
			answer = a
			return nil
		},
		voteFn: func(_ context.Context, _ uint, delta int) (int, error) { return 10 + delta, nil },
	}, &userRepoStub{
		addActivityFn: func(_ context.Context, _ uint, delta int) error {
			awarded += delta
			return assert.AnError
		},
	})

	a, err := svc.SubmitAnswer(context.Background(), 2, "  use a token bucket ")
	require.NoError(t, err, "activity award failures are logged, not returned")
	assert.Same(t, answer, a)
	assert.Equal(t, uint(8), a.QuestionID)
	assert.Equal(t, "use a token bucket", a.Text)
	assert.Equal(t, 1, awarded)

	score, err := svc.Vote(context.Background(), a.ID, true)
	require.NoError(t, err)
	assert.Equal(t, 11, score)
	score, err = svc.Vote(context.Background(), a.ID, false)
	require.NoError(t, err)
	assert.Equal(t, 9, score)
}
