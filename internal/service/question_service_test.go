package service

import (
	"context"
	"strings"
	"testing"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newQuestionFixture() (*QuestionService, *questionRepoStub, *notifRepoStub, *recordingPublisher) {
	questions := &questionRepoStub{}
	notifs := &notifRepoStub{}
	pub := &recordingPublisher{}
	users := usersByName(alice, bob, carol)
	return NewQuestionService(questions, users, NewNotificationService(notifs, users, pub)), questions, notifs, pub
}

func TestQuestionService_Ask(t *testing.T) {
	t.Parallel()
	svc, questions, _, _ := newQuestionFixture()
	ctx := context.Background()

	_, err := svc.Ask(ctx, bob, AskInput{QuestionText: "   "})
	assertCode(t, err, models.CodeValidation)

	_, err = svc.Ask(ctx, bob, AskInput{QuestionText: strings.Repeat("x", 2001)})
	assertCode(t, err, models.CodeValidation)

	q, err := svc.Ask(ctx, bob, AskInput{QuestionText: "  How do I get a referral?  "})
	require.NoError(t, err)
	assert.Equal(t, "How do I get a referral?", q.QuestionText)
	assert.Equal(t, "bob", q.Username)
	assert.NotNil(t, q.Answers)
	assert.Len(t, questions.questions, 1)
}

func TestQuestionService_AnswerNotifiesAsker(t *testing.T) {
	t.Parallel()
	svc, _, notifs, pub := newQuestionFixture()
	ctx := context.Background()

	q, err := svc.Ask(ctx, bob, AskInput{QuestionText: "Is open source experience valued?"})
	require.NoError(t, err)

	a, err := svc.Answer(ctx, alice, q.ID, AnswerInput{AnswerText: "Very much"})
	require.NoError(t, err)
	assert.True(t, a.IsAlumniAnswer)
	assert.Equal(t, "alice", a.Username)

	require.Len(t, notifs.created, 1)
	n := notifs.created[0]
	assert.Equal(t, bob.ID, n.UserID)
	assert.Equal(t, models.NotificationQuestionAnswered, n.Type)
	require.NotNil(t, n.RelatedID)
	assert.Equal(t, q.ID, *n.RelatedID)
	require.Len(t, pub.events, 1)
	assert.Equal(t, EventQuestionAnswered, pub.events[0].Type)

	// answering your own question stores the answer without a notification
	own, err := svc.Answer(ctx, bob, q.ID, AnswerInput{AnswerText: "Thanks!"})
	require.NoError(t, err)
	assert.False(t, own.IsAlumniAnswer)
	assert.Len(t, notifs.created, 1)

	_, err = svc.Answer(ctx, alice, q.ID+10, AnswerInput{AnswerText: "Hello?"})
	assertCode(t, err, models.CodeNotFound)

	_, err = svc.Answer(ctx, alice, q.ID, AnswerInput{AnswerText: ""})
	assertCode(t, err, models.CodeValidation)
}

func TestQuestionService_AnswerSurvivesNotificationFailure(t *testing.T) {
	t.Parallel()
	svc, questions, notifs, _ := newQuestionFixture()
	notifs.createErr = assert.AnError
	ctx := context.Background()

	q, err := svc.Ask(ctx, bob, AskInput{QuestionText: "Best first language?"})
	require.NoError(t, err)
	_, err = svc.Answer(ctx, alice, q.ID, AnswerInput{AnswerText: "Go"})
	require.NoError(t, err)
	assert.Len(t, questions.answers, 1)
}

func TestQuestionService_ByUserAndPopular(t *testing.T) {
	t.Parallel()
	svc, _, _, _ := newQuestionFixture()
	ctx := context.Background()

	_, err := svc.Ask(ctx, bob, AskInput{QuestionText: "One"})
	require.NoError(t, err)
	_, err = svc.Ask(ctx, alice, AskInput{QuestionText: "Two"})
	require.NoError(t, err)

	mine, err := svc.ByUser(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "One", mine[0].QuestionText)

	_, err = svc.ByUser(ctx, "nobody")
	assertCode(t, err, models.CodeNotFound)
	_, err = svc.ByUser(ctx, "carol")
	assertCode(t, err, models.CodeNotFound)

	popular, err := svc.Popular(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, popular, 2)
}

func TestQuestionService_LikePassesThrough(t *testing.T) {
	t.Parallel()
	var gotUser, gotQuestion uint
	svc := NewQuestionService(&questionRepoStub{
		likeFn: func(_ context.Context, userID, questionID uint) (int, error) {
			gotUser, gotQuestion = userID, questionID
			return 7, nil
		},
	}, &userRepoStub{}, NewNotificationService(&notifRepoStub{}, &userRepoStub{}, nil))

	likes, err := svc.Like(context.Background(), 2, 9)
	require.NoError(t, err)
	assert.Equal(t, 7, likes)
	assert.Equal(t, uint(2), gotUser)
	assert.Equal(t, uint(9), gotQuestion)
}
