package server

import (
	"fmt"
	"net/http"
	"testing"

	"alumnet/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpertQA(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.createUser("alice", alumnus)
	_, bobToken := ts.createUser("bob", student)

	resp := ts.do(http.MethodPost, "/api/questions", "", map[string]string{"question_text": "Anyone?"})
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = ts.do(http.MethodPost, "/api/questions", bobToken, map[string]string{"question_text": " "})
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodPost, "/api/questions", bobToken, map[string]string{"question_text": "How early should I apply for internships?"})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var asked models.Question
	resp.decode(t, &asked)
	assert.Equal(t, "bob", asked.Username)

	resp = ts.do(http.MethodPost, "/api/questions", bobToken, map[string]string{"question_text": "Is a portfolio needed?"})
	require.Equal(t, http.StatusCreated, resp.Status)

	resp = ts.do(http.MethodPost, fmt.Sprintf("/api/questions/%d/answers", asked.ID), aliceToken, map[string]string{"answer_text": "Autumn of the year before"})
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))
	var answer models.ExpertAnswer
	resp.decode(t, &answer)
	assert.True(t, answer.IsAlumniAnswer)

	var notes []models.Notification
	ts.do(http.MethodGet, "/api/notifications", bobToken, nil).decode(t, &notes)
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotificationQuestionAnswered, notes[0].Type)

	like := fmt.Sprintf("/api/questions/%d/like", asked.ID)
	resp = ts.do(http.MethodPost, like, aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var liked struct {
		Likes int `json:"likes"`
	}
	resp.decode(t, &liked)
	assert.Equal(t, 1, liked.Likes)

	resp = ts.do(http.MethodPost, like, aliceToken, nil)
	assert.Equal(t, http.StatusConflict, resp.Status)
	assert.Equal(t, models.CodeConflict, resp.errorCode(t))

	resp = ts.do(http.MethodPost, "/api/questions/999/like", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp = ts.do(http.MethodPost, "/api/questions/abc/like", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, resp.Status)

	resp = ts.do(http.MethodGet, "/api/questions/popular?limit=5", "", nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var popular []models.Question
	resp.decode(t, &popular)
	require.Len(t, popular, 2)
	assert.Equal(t, asked.ID, popular[0].ID)
	require.Len(t, popular[0].Answers, 1)
	assert.Equal(t, "alice", popular[0].Answers[0].Username)

	resp = ts.do(http.MethodGet, "/api/users/bob/questions", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	var bobs []models.Question
	resp.decode(t, &bobs)
	assert.Len(t, bobs, 2)

	resp = ts.do(http.MethodGet, "/api/users/alice/questions", aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status)
	assert.JSONEq(t, "[]", string(resp.Body))

	resp = ts.do(http.MethodGet, "/api/users/nobody/questions", aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestGetAlumnus(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.createUser("alice", alumnus)
	bob, _ := ts.createUser("bob", student)
	ghost, _ := ts.createUser("ghost", alumnus, inactive)

	resp := ts.do(http.MethodGet, fmt.Sprintf("/api/alumni/%d", alice.ID), "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.Status)

	resp = ts.do(http.MethodGet, fmt.Sprintf("/api/alumni/%d", alice.ID), aliceToken, nil)
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var profile models.PublicProfile
	resp.decode(t, &profile)
	assert.Equal(t, "alice", profile.Username)
	assert.NotContains(t, string(resp.Body), "alice@example.com")

	for _, id := range []uint{bob.ID, ghost.ID, 999} {
		resp = ts.do(http.MethodGet, fmt.Sprintf("/api/alumni/%d", id), aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, resp.Status, "id %d", id)
	}

	// the static route still wins over the id route
	resp = ts.do(http.MethodGet, "/api/alumni/top-liked", "", nil)
	assert.Equal(t, http.StatusOK, resp.Status)
}

func TestExpertQA_FeatureFlagOff(t *testing.T) {
	ts := newTestServer(t, withFeatureFlags("questions=off"))
	_, token := ts.createUser("alice", alumnus)

	resp := ts.do(http.MethodGet, "/api/questions/popular", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp = ts.do(http.MethodPost, "/api/questions", token, map[string]string{"question_text": "Hello?"})
	assert.Equal(t, http.StatusNotFound, resp.Status)
	resp = ts.do(http.MethodGet, "/api/users/alice/questions", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}
