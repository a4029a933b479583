package service

import (
	"context"
	"strings"
	"testing"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchService_Search(t *testing.T) {
	t.Parallel()
	var searched []string
	var history []string
	svc := NewSearchService(&searchRepoStub{
		searchFn: func(_ context.Context, term string, perType int) ([]models.SearchResult, error) {
			searched = append(searched, term)
			assert.Equal(t, 5, perType)
			return nil, nil
		},
		addHistoryFn: func(_ context.Context, _ uint, term string) error {
			history = append(history, term)
			return nil
		},
	})
	ctx := context.Background()

	out, err := svc.Search(ctx, 1, " a ")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.NotNil(t, out)
	assert.Empty(t, searched)

	_, err = svc.Search(ctx, 1, strings.Repeat("q", 101))
	assertCode(t, err, models.CodeValidation)

	out, err = svc.Search(ctx, 1, " hack ")
	require.NoError(t, err)
	assert.NotNil(t, out)
	assert.Equal(t, []string{"hack"}, searched)
	assert.Equal(t, []string{"hack"}, history)

	_, err = svc.Search(ctx, 0, "fair")
	require.NoError(t, err)
	assert.Equal(t, []string{"hack"}, history, "anonymous searches are not recorded")
}

func TestIssueService(t *testing.T) {
	t.Parallel()
	repo := &issueRepoStub{}
	svc := NewIssueService(repo)
	ctx := context.Background()

	_, err := svc.Submit(ctx, 0, IssueInput{Name: "Ann", Email: "bad", Message: "help"})
	assertCode(t, err, models.CodeValidation)

	issue, err := svc.Submit(ctx, 0, IssueInput{Name: " Ann ", Email: "Ann@Example.com", Message: "cannot log in"})
	require.NoError(t, err)
	assert.Nil(t, issue.UserID)
	assert.Equal(t, "ann@example.com", issue.Email)
	assert.Equal(t, models.IssueStatusPending, issue.Status)

	issue, err = svc.Submit(ctx, 7, IssueInput{Name: "Bo", Email: "bo@example.com", Message: "typo"})
	require.NoError(t, err)
	require.NotNil(t, issue.UserID)
	assert.Equal(t, uint(7), *issue.UserID)

	_, err = svc.List(ctx, "archived")
	assertCode(t, err, models.CodeValidation)
	_, err = svc.UpdateStatus(ctx, 1, "")
	assertCode(t, err, models.CodeValidation)
}
